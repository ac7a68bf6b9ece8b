// Package payload implements the KDBX 3.1 hash-verified block stream that
// carries the (optionally gzip-compressed) XML document once the outer
// header and AES-256-CBC decryption have been peeled away.
//
// Each block is framed as: a little-endian uint32 block index, a 32-byte
// SHA-256 hash of the block's data, a little-endian uint32 data size, and
// the raw data itself. The stream ends with a zero-size, all-zero-hash
// terminator block.
package payload

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// DefaultBlockSize is the block size used when writing a new payload stream.
const DefaultBlockSize = 1024 * 1024

// ReadBlocks reads the full hash-verified block stream from r and returns
// the concatenated data of every block, after verifying each block's hash
// against its declared data.
func ReadBlocks(r io.Reader) ([]byte, error) {
	var out bytes.Buffer
	expectedIndex := uint32(0)

	for {
		var index uint32
		if err := binary.Read(r, binary.LittleEndian, &index); err != nil {
			return nil, fmt.Errorf("payload: read block index: %w", err)
		}
		if index != expectedIndex {
			return nil, InvalidBlockID{Expected: expectedIndex, Actual: index}
		}

		var hash [32]byte
		if _, err := io.ReadFull(r, hash[:]); err != nil {
			return nil, fmt.Errorf("payload: read block hash: %w", err)
		}

		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("payload: read block size: %w", err)
		}

		if size == 0 {
			if hash != [32]byte{} {
				return nil, InvalidFinalBlockHash{}
			}
			break
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("payload: read block data: %w", err)
		}

		if sha256.Sum256(data) != hash {
			return nil, InvalidBlockHash{Index: index}
		}

		out.Write(data)
		expectedIndex++
	}

	return out.Bytes(), nil
}

// WriteBlocks splits data into blockSize chunks (DefaultBlockSize if
// blockSize is 0) and writes the hash-verified block stream, followed by the
// zero-size terminator block.
func WriteBlocks(w io.Writer, data []byte, blockSize int) error {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	index := uint32(0)
	for off := 0; off < len(data); off += blockSize {
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]
		if err := writeBlock(w, index, chunk); err != nil {
			return err
		}
		index++
	}
	return writeBlock(w, index, nil)
}

func writeBlock(w io.Writer, index uint32, data []byte) error {
	if err := binary.Write(w, binary.LittleEndian, index); err != nil {
		return fmt.Errorf("payload: write block index: %w", err)
	}
	var hash [32]byte
	if len(data) > 0 {
		hash = sha256.Sum256(data)
	}
	if _, err := w.Write(hash[:]); err != nil {
		return fmt.Errorf("payload: write block hash: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("payload: write block size: %w", err)
	}
	if len(data) > 0 {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("payload: write block data: %w", err)
		}
	}
	return nil
}

// Decompress gunzips data. Callers only invoke this when the header's
// compression flag names GZip; uncompressed databases pass their payload
// through unchanged.
func Decompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("payload: open gzip reader: %w", err)
	}
	defer gr.Close()
	out, err := io.ReadAll(gr)
	if err != nil {
		return nil, fmt.Errorf("payload: read gzip stream: %w", err)
	}
	return out, nil
}

// Compress gzips data for storage in a GZip-compressed database.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("payload: write gzip stream: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("payload: close gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}
