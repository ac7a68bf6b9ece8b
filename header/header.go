// Package header implements the KDBX 3.1 outer header: the signature bytes
// and the TLV field stream that follows them. Every field is read and
// written through a logio wrapper so the exact header bytes can be captured
// for the header_hash check performed once the payload is decrypted.
package header

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-i2p/kdbxgo/logio"
)

// BaseSignature is the fixed 4-byte KDBX file signature.
var BaseSignature = [4]byte{0x03, 0xD9, 0xA2, 0x9A}

// KDBX3Signature identifies a KDBX 2.x/3.1-family container, the only
// variant signature this codec reads and writes.
var KDBX3Signature = [4]byte{0x67, 0xFB, 0x4B, 0xB5}

// KDBX1Signature identifies a legacy KDBX v1 container; recognized only so
// it can be rejected with a typed UnhandledDbType error instead of the
// generic InvalidDbSignature.
var KDBX1Signature = [4]byte{0x65, 0xFB, 0x4B, 0xB5}

// Field IDs within the KDBX 3.1 TLV header stream.
const (
	fieldEnd                 = 0
	fieldComment             = 1
	fieldCipherID            = 2
	fieldCompressionFlags    = 3
	fieldMasterSeed          = 4
	fieldTransformSeed       = 5
	fieldTransformRounds     = 6
	fieldEncryptionIV        = 7
	fieldProtectedStreamKey  = 8
	fieldStreamStartBytes    = 9
	fieldInnerRandomStreamID = 10
)

// Compression identifies the payload compression algorithm.
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionGZip Compression = 1
)

// MasterCipher identifies the payload block cipher. KDBX 3.1 only defines
// AES-256.
type MasterCipher int

const MasterCipherAES256 MasterCipher = 0

// aesCipherID is the 16-byte UUID KDBX uses to name the AES-256 cipher.
var aesCipherID = []byte{
	0x31, 0xC1, 0xF2, 0xE6, 0xBF, 0x71, 0x43, 0x50,
	0xBE, 0x58, 0x05, 0x21, 0x6A, 0xFC, 0x5A, 0xFF,
}

// StreamCipher identifies the inner protected-value stream cipher.
type StreamCipher uint32

const (
	StreamCipherNone    StreamCipher = 0
	StreamCipherARC4    StreamCipher = 1
	StreamCipherSalsa20 StreamCipher = 2
)

// Version is the file format version recorded in the signature.
type Version struct {
	Major uint16
	Minor uint16
}

// Header holds the full outer header of a KDBX 3.1 container.
type Header struct {
	Version Version

	Comment            []byte
	MasterCipher       MasterCipher
	Compression        Compression
	MasterSeed         []byte
	TransformSeed      []byte
	TransformRounds    uint64
	MasterIV           []byte
	ProtectedStreamKey []byte
	StreamStartBytes   []byte
	StreamCipher       StreamCipher
}

// New returns a Header populated with the defaults a freshly created
// database uses (caller still needs to fill in random seeds/IV/keys).
func New() *Header {
	return &Header{
		Version:         Version{Major: 3, Minor: 1},
		MasterCipher:    MasterCipherAES256,
		Compression:     CompressionGZip,
		TransformRounds: 10000,
		StreamCipher:    StreamCipherSalsa20,
	}
}

// Read parses the signature and TLV field stream from r, returning the
// parsed Header and the exact raw bytes the header occupied (for
// header_hash verification). r is wrapped internally in a logio.Reader so
// every byte consumed, including the signature, is captured.
func Read(r io.Reader) (*Header, []byte, error) {
	lr := logio.NewReader(r)

	var sig [4]byte
	if _, err := io.ReadFull(lr, sig[:]); err != nil {
		return nil, nil, fmt.Errorf("header: read signature: %w", err)
	}
	if sig != BaseSignature {
		return nil, nil, InvalidDbSignature{Got: sig}
	}

	var secondary [4]byte
	if _, err := io.ReadFull(lr, secondary[:]); err != nil {
		return nil, nil, fmt.Errorf("header: read secondary signature: %w", err)
	}
	if secondary == KDBX1Signature {
		return nil, nil, UnhandledDbType{Got: secondary}
	}
	if secondary != KDBX3Signature {
		return nil, nil, InvalidDbSignature{Got: secondary}
	}

	h := &Header{}
	var minor, major uint16
	if err := binary.Read(lr, binary.LittleEndian, &minor); err != nil {
		return nil, nil, fmt.Errorf("header: read minor version: %w", err)
	}
	if err := binary.Read(lr, binary.LittleEndian, &major); err != nil {
		return nil, nil, fmt.Errorf("header: read major version: %w", err)
	}
	h.Version = Version{Major: major, Minor: minor}

	for {
		done, err := readField(lr, h)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
	}

	if err := h.validateComplete(); err != nil {
		return nil, nil, err
	}

	return h, lr.Logged(), nil
}

func readField(lr *logio.Reader, h *Header) (done bool, err error) {
	var id uint8
	if err := binary.Read(lr, binary.LittleEndian, &id); err != nil {
		return false, fmt.Errorf("header: read field id: %w", err)
	}
	var size uint16
	if err := binary.Read(lr, binary.LittleEndian, &size); err != nil {
		return false, fmt.Errorf("header: read field size: %w", err)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(lr, data); err != nil {
		return false, fmt.Errorf("header: read field %d data: %w", id, err)
	}

	switch id {
	case fieldEnd:
		return true, nil
	case fieldComment:
		h.Comment = data
	case fieldCipherID:
		if len(data) != 16 {
			return false, InvalidHeaderSize{ID: id, Expected: 16, Actual: len(data)}
		}
		if !bytesEqual(data, aesCipherID) {
			return false, UnhandledMasterCipher{}
		}
		h.MasterCipher = MasterCipherAES256
	case fieldCompressionFlags:
		if len(data) != 4 {
			return false, InvalidHeaderSize{ID: id, Expected: 4, Actual: len(data)}
		}
		flag := binary.LittleEndian.Uint32(data)
		switch Compression(flag) {
		case CompressionNone, CompressionGZip:
			h.Compression = Compression(flag)
		default:
			return false, UnhandledCompression{}
		}
	case fieldMasterSeed:
		if len(data) != 32 {
			return false, InvalidHeaderSize{ID: id, Expected: 32, Actual: len(data)}
		}
		h.MasterSeed = data
	case fieldTransformSeed:
		if len(data) != 32 {
			return false, InvalidHeaderSize{ID: id, Expected: 32, Actual: len(data)}
		}
		h.TransformSeed = data
	case fieldTransformRounds:
		if len(data) != 8 {
			return false, InvalidHeaderSize{ID: id, Expected: 8, Actual: len(data)}
		}
		h.TransformRounds = binary.LittleEndian.Uint64(data)
	case fieldEncryptionIV:
		if len(data) != 16 {
			return false, InvalidHeaderSize{ID: id, Expected: 16, Actual: len(data)}
		}
		h.MasterIV = data
	case fieldProtectedStreamKey:
		if len(data) != 32 {
			return false, InvalidHeaderSize{ID: id, Expected: 32, Actual: len(data)}
		}
		h.ProtectedStreamKey = data
	case fieldStreamStartBytes:
		if len(data) != 32 {
			return false, InvalidHeaderSize{ID: id, Expected: 32, Actual: len(data)}
		}
		h.StreamStartBytes = data
	case fieldInnerRandomStreamID:
		if len(data) != 4 {
			return false, InvalidHeaderSize{ID: id, Expected: 4, Actual: len(data)}
		}
		cipherID := StreamCipher(binary.LittleEndian.Uint32(data))
		if cipherID != StreamCipherSalsa20 {
			return false, UnhandledStreamCipher{}
		}
		h.StreamCipher = cipherID
	default:
		return false, UnhandledHeader{ID: id}
	}
	return false, nil
}

// validateComplete ensures every mandatory field arrived before the
// terminator; a KDBX 3.1 header with any of these absent cannot be decrypted.
func (h *Header) validateComplete() error {
	if h.MasterSeed == nil {
		return MissingHeader{ID: fieldMasterSeed}
	}
	if h.TransformSeed == nil {
		return MissingHeader{ID: fieldTransformSeed}
	}
	if h.MasterIV == nil {
		return MissingHeader{ID: fieldEncryptionIV}
	}
	if h.ProtectedStreamKey == nil {
		return MissingHeader{ID: fieldProtectedStreamKey}
	}
	if h.StreamStartBytes == nil {
		return MissingHeader{ID: fieldStreamStartBytes}
	}
	return nil
}

// Write serializes the signature and TLV field stream to w in the fixed
// field order the format requires, returning the exact bytes written (for
// header_hash computation on save).
func Write(w io.Writer, h *Header) ([]byte, error) {
	lw := logio.NewWriter(w)

	if _, err := lw.Write(BaseSignature[:]); err != nil {
		return nil, fmt.Errorf("header: write signature: %w", err)
	}
	if _, err := lw.Write(KDBX3Signature[:]); err != nil {
		return nil, fmt.Errorf("header: write secondary signature: %w", err)
	}
	if err := binary.Write(lw, binary.LittleEndian, h.Version.Minor); err != nil {
		return nil, fmt.Errorf("header: write minor version: %w", err)
	}
	if err := binary.Write(lw, binary.LittleEndian, h.Version.Major); err != nil {
		return nil, fmt.Errorf("header: write major version: %w", err)
	}

	if len(h.Comment) > 0 {
		if err := writeField(lw, fieldComment, h.Comment); err != nil {
			return nil, err
		}
	}
	if err := writeField(lw, fieldCipherID, aesCipherID); err != nil {
		return nil, err
	}
	compressionBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(compressionBytes, uint32(h.Compression))
	if err := writeField(lw, fieldCompressionFlags, compressionBytes); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldMasterSeed, h.MasterSeed); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldTransformSeed, h.TransformSeed); err != nil {
		return nil, err
	}
	roundsBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(roundsBytes, h.TransformRounds)
	if err := writeField(lw, fieldTransformRounds, roundsBytes); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldEncryptionIV, h.MasterIV); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldProtectedStreamKey, h.ProtectedStreamKey); err != nil {
		return nil, err
	}
	streamCipherBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(streamCipherBytes, uint32(h.StreamCipher))
	if err := writeField(lw, fieldInnerRandomStreamID, streamCipherBytes); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldStreamStartBytes, h.StreamStartBytes); err != nil {
		return nil, err
	}
	if err := writeField(lw, fieldEnd, []byte{0x0D, 0x0A, 0x0D, 0x0A}); err != nil {
		return nil, err
	}

	return lw.Logged(), nil
}

func writeField(w io.Writer, id uint8, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, id); err != nil {
		return fmt.Errorf("header: write field %d id: %w", id, err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(data))); err != nil {
		return fmt.Errorf("header: write field %d size: %w", id, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("header: write field %d data: %w", id, err)
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
