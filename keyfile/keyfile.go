// Package keyfile reads and writes KeePass key files: the 32-byte binary
// form, the 64-character hex form, and the XML form
// (<KeyFile><Meta><Version>1.00</Version></Meta><Key><Data>base64</Data></Key></KeyFile>).
package keyfile

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/go-i2p/kdbxgo/secret"
)

// FileType names the on-disk encoding of a KeyFile.
type FileType int

const (
	Binary FileType = iota
	Hex
	XML
)

const (
	binaryKeyFileLen = 32
	hexKeyFileLen    = 64
)

// KeyFile is a key file's raw key bytes plus the encoding it was read from
// or should be written as.
type KeyFile struct {
	Key      *secret.Bytes
	FileType FileType
}

// New is an alias for NewXML, matching the default encoding KeePass itself
// uses when generating a new key file.
func New() (*KeyFile, error) {
	return NewXML()
}

// NewBinary generates a new 32-byte random key encoded as Binary.
func NewBinary() (*KeyFile, error) {
	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	return &KeyFile{Key: secret.New(key), FileType: Binary}, nil
}

// NewHex generates a new 32-byte random key encoded as Hex.
func NewHex() (*KeyFile, error) {
	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	return &KeyFile{Key: secret.New(key), FileType: Hex}, nil
}

// NewXML generates a new 32-byte random key encoded as XML.
func NewXML() (*KeyFile, error) {
	key, err := randomKey()
	if err != nil {
		return nil, err
	}
	return &KeyFile{Key: secret.New(key), FileType: XML}, nil
}

func randomKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keyfile: generate random key: %w", err)
	}
	return key, nil
}

// Open reads a key file from r, detecting its encoding: exactly 32 bytes is
// Binary, exactly 64 bytes is Hex, anything else is parsed as XML.
func Open(r io.Reader) (*KeyFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("keyfile: read: %w", err)
	}

	switch len(data) {
	case binaryKeyFileLen:
		return &KeyFile{Key: secret.New(data), FileType: Binary}, nil
	case hexKeyFileLen:
		key, err := decodeHex(data)
		if err != nil {
			return nil, InvalidKeyFile{Reason: err.Error()}
		}
		return &KeyFile{Key: secret.New(key), FileType: Hex}, nil
	default:
		return readXML(data)
	}
}

// Save writes the key file in its FileType's encoding to w.
func (k *KeyFile) Save(w io.Writer) error {
	switch k.FileType {
	case Binary:
		_, err := w.Write(k.Key.Expose())
		return err
	case Hex:
		_, err := w.Write(encodeHex(k.Key.Expose()))
		return err
	case XML:
		return writeXML(w, k.Key.Expose())
	default:
		return fmt.Errorf("keyfile: unknown file type %d", k.FileType)
	}
}

// InvalidKeyFile is returned when a key file's contents cannot be parsed as
// the encoding its length implies.
type InvalidKeyFile struct {
	Reason string
}

func (e InvalidKeyFile) Error() string {
	return fmt.Sprintf("keyfile: invalid key file: %s", e.Reason)
}
