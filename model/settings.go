package model

// Compression identifies the payload compression algorithm recorded in a
// database's outer header.
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionGZip Compression = 1
)

// MasterCipher identifies the payload block cipher. KDBX 3.1 defines only
// AES-256.
type MasterCipher int

const MasterCipherAES256 MasterCipher = 0

// StreamCipher identifies the inner protected-value stream cipher. The
// numeric value matches the header's InnerRandomStreamID encoding.
type StreamCipher uint32

const StreamCipherSalsa20 StreamCipher = 2

// Version is the file format version recorded after the signature bytes.
type Version struct {
	Major uint16
	Minor uint16
}

// Settings holds the codec parameters a database is saved with. They are
// populated from the outer header on open and honored again on save, so a
// database opened with, say, compression disabled stays uncompressed across
// a round trip. Random material (seeds, IV, stream key) is NOT part of
// Settings: it is regenerated on every save.
type Settings struct {
	Compression     Compression
	MasterCipher    MasterCipher
	StreamCipher    StreamCipher
	TransformRounds uint64
	Version         Version
}

// DefaultSettings returns the parameters a freshly created database uses:
// GZip compression, AES-256, Salsa20, 10000 transform rounds, format
// version 3.1.
func DefaultSettings() Settings {
	return Settings{
		Compression:     CompressionGZip,
		MasterCipher:    MasterCipherAES256,
		StreamCipher:    StreamCipherSalsa20,
		TransformRounds: 10000,
		Version:         Version{Major: 3, Minor: 1},
	}
}
