package payload

import (
	"bytes"
	"testing"
)

func TestWriteReadBlocksRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 500)
	var buf bytes.Buffer
	if err := WriteBlocks(&buf, data, 1024); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	got, err := ReadBlocks(&buf)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round trip data mismatch")
	}
}

func TestWriteReadBlocksEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBlocks(&buf, nil, 1024); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	got, err := ReadBlocks(&buf)
	if err != nil {
		t.Fatalf("ReadBlocks: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d bytes, want 0", len(got))
	}
}

func TestReadBlocksDetectsCorruption(t *testing.T) {
	data := []byte("some payload data that spans a whole block and then some")
	var buf bytes.Buffer
	if err := WriteBlocks(&buf, data, 16); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	raw := buf.Bytes()
	raw[len(raw)-41] ^= 0xFF // corrupt the last byte of the last data block (the 40-byte terminator follows it)

	if _, err := ReadBlocks(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected hash mismatch error")
	}
}

func TestReadBlocksRejectsOutOfOrderIndex(t *testing.T) {
	var first bytes.Buffer
	if err := WriteBlocks(&first, []byte("block zero data"), 1024); err != nil {
		t.Fatalf("WriteBlocks: %v", err)
	}
	raw := first.Bytes()

	// The stream holds block 0 followed by terminator block 1. Renumber the
	// terminator to 7 so the reader sees 7 where it expects 1.
	termOff := 4 + 32 + 4 + len("block zero data")
	raw[termOff] = 7

	_, err := ReadBlocks(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected InvalidBlockID error")
	}
	bad, ok := err.(InvalidBlockID)
	if !ok {
		t.Fatalf("expected InvalidBlockID, got %T: %v", err, err)
	}
	if bad.Actual != 7 || bad.Expected != 1 {
		t.Fatalf("InvalidBlockID = %+v, want {Expected:1 Actual:7}", bad)
	}
}

func TestReadBlocksRejectsBadFinalHash(t *testing.T) {
	var buf bytes.Buffer
	binaryWriteBlockWithBadFinalHash(t, &buf)
	if _, err := ReadBlocks(&buf); err == nil {
		t.Fatal("expected InvalidFinalBlockHash error")
	} else if _, ok := err.(InvalidFinalBlockHash); !ok {
		t.Fatalf("expected InvalidFinalBlockHash, got %T: %v", err, err)
	}
}

func binaryWriteBlockWithBadFinalHash(t *testing.T, buf *bytes.Buffer) {
	t.Helper()
	// index=0
	buf.Write([]byte{0, 0, 0, 0})
	// hash: 32 non-zero bytes (invalid for a size-0 terminator)
	buf.Write(bytes.Repeat([]byte{0x01}, 32))
	// size=0
	buf.Write([]byte{0, 0, 0, 0})
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := []byte("<KeePassFile><Meta/><Root/></KeePassFile>")
	compressed, err := Compress(data)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if bytes.Equal(compressed, data) {
		t.Fatal("compressed output equals input")
	}
	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("decompressed data does not match original")
	}
}
