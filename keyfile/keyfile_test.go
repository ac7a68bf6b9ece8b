package keyfile

import (
	"bytes"
	"testing"
)

func TestNewReturnsXMLInstance(t *testing.T) {
	k, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if k.FileType != XML {
		t.Fatalf("FileType = %v, want XML", k.FileType)
	}
}

func TestNewBinaryProducesDistinctKeys(t *testing.T) {
	a, err := NewBinary()
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	b, err := NewBinary()
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	if a.Key.Equal(b.Key) {
		t.Fatal("two NewBinary() calls produced identical keys")
	}
	if a.FileType != Binary || b.FileType != Binary {
		t.Fatal("FileType should be Binary")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	k, err := NewBinary()
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	var buf bytes.Buffer
	if err := k.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if buf.Len() != 32 {
		t.Fatalf("saved binary key file length = %d, want 32", buf.Len())
	}

	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.FileType != Binary {
		t.Fatalf("FileType = %v, want Binary", got.FileType)
	}
	if !got.Key.Equal(k.Key) {
		t.Fatal("round trip key mismatch")
	}
}

func TestHexRoundTrip(t *testing.T) {
	k, err := NewHex()
	if err != nil {
		t.Fatalf("NewHex: %v", err)
	}
	var buf bytes.Buffer
	if err := k.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if buf.Len() != 64 {
		t.Fatalf("saved hex key file length = %d, want 64", buf.Len())
	}

	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.FileType != Hex {
		t.Fatalf("FileType = %v, want Hex", got.FileType)
	}
	if !got.Key.Equal(k.Key) {
		t.Fatal("round trip key mismatch")
	}
}

func TestXMLRoundTrip(t *testing.T) {
	k, err := NewXML()
	if err != nil {
		t.Fatalf("NewXML: %v", err)
	}
	var buf bytes.Buffer
	if err := k.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.FileType != XML {
		t.Fatalf("FileType = %v, want XML", got.FileType)
	}
	if !got.Key.Equal(k.Key) {
		t.Fatal("round trip key mismatch")
	}
}

func TestHexKeyFileDecodesASCIIDigits(t *testing.T) {
	hexKey := []byte("31a8aad92d78ac14d32e6bd6d28808b1e5e56ef9a4f86d0e767424001a63be18")
	if len(hexKey) != 64 {
		t.Fatalf("fixture length = %d, want 64", len(hexKey))
	}

	got, err := Open(bytes.NewReader(hexKey))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.FileType != Hex {
		t.Fatalf("FileType = %v, want Hex", got.FileType)
	}
	key := got.Key.Expose()
	if len(key) != 32 {
		t.Fatalf("key length = %d, want 32", len(key))
	}
	if key[0] != 0x31 || key[1] != 0xa8 || key[2] != 0xaa || key[3] != 0xd9 {
		t.Fatalf("key prefix = % x, want 31 a8 aa d9", key[:4])
	}
	if key[31] != 0x18 {
		t.Fatalf("key[31] = %#x, want 0x18", key[31])
	}

	var buf bytes.Buffer
	if err := got.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), hexKey) {
		t.Fatalf("re-saved hex key file = %q, want %q", buf.Bytes(), hexKey)
	}
}

func TestOpenRejectsUnsupportedXMLVersion(t *testing.T) {
	if _, err := Open(bytes.NewReader([]byte("<KeyFile><Meta><Version>9.99</Version></Meta><Key><Data>abc</Data></Key></KeyFile>"))); err == nil {
		t.Fatal("expected error for unsupported key file version")
	}
}

func TestOpenRejectsInvalidHex(t *testing.T) {
	// Exactly 64 bytes but not valid hex digits.
	bad := bytes.Repeat([]byte("z"), 64)
	if _, err := Open(bytes.NewReader(bad)); err == nil {
		t.Fatal("expected error for invalid hex key file")
	}
}
