package header

import "fmt"

// InvalidDbSignature is returned when the first 4 bytes of a container are
// not the fixed KDBX base signature.
type InvalidDbSignature struct {
	Got [4]byte
}

func (e InvalidDbSignature) Error() string {
	return fmt.Sprintf("header: invalid database signature: got % x", e.Got)
}

// UnhandledDbType is returned when the base signature matches but the
// secondary signature names the legacy KDBX v1 container, which this codec
// recognizes only to reject.
type UnhandledDbType struct {
	Got [4]byte
}

func (e UnhandledDbType) Error() string {
	return fmt.Sprintf("header: unhandled database type: secondary signature % x", e.Got)
}

// UnhandledHeader is returned when a TLV header field carries an id this
// codec does not recognize.
type UnhandledHeader struct {
	ID uint8
}

func (e UnhandledHeader) Error() string {
	return fmt.Sprintf("header: unhandled header field id %d", e.ID)
}

// InvalidHeaderSize is returned when a known header field's declared size
// does not match the fixed size that field requires.
type InvalidHeaderSize struct {
	ID       uint8
	Expected int
	Actual   int
}

func (e InvalidHeaderSize) Error() string {
	return fmt.Sprintf("header: field %d has invalid size: expected %d, got %d", e.ID, e.Expected, e.Actual)
}

// MissingHeader is returned when the terminator field arrives before a
// mandatory field has been seen.
type MissingHeader struct {
	ID uint8
}

func (e MissingHeader) Error() string {
	return fmt.Sprintf("header: missing mandatory field %d", e.ID)
}

// UnhandledCompression is returned when the compression flags field names
// an algorithm other than None or GZip.
type UnhandledCompression struct{}

func (e UnhandledCompression) Error() string {
	return "header: unhandled compression algorithm"
}

// UnhandledMasterCipher is returned when the cipher id field names a cipher
// other than AES-256.
type UnhandledMasterCipher struct{}

func (e UnhandledMasterCipher) Error() string {
	return "header: unhandled master cipher"
}

// UnhandledStreamCipher is returned when the inner random stream id field
// names a cipher other than Salsa20.
type UnhandledStreamCipher struct{}

func (e UnhandledStreamCipher) Error() string {
	return "header: unhandled inner stream cipher"
}
