package dbcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"sync"
)

// TransformKey runs the KDBX rounds-based AES-ECB key transform: composite
// is split into two 16-byte halves, each half is raw-ECB-encrypted under
// transformSeed for rounds iterations (the two halves are independent, so
// they run on separate goroutines), and the two transformed halves are
// concatenated and SHA-256 hashed.
//
// composite must be 32 bytes; transformSeed is the full 32-byte AES-256
// key for the ECB rounds.
func TransformKey(composite, transformSeed []byte, rounds uint64) ([]byte, error) {
	if len(composite) != 32 {
		return nil, fmt.Errorf("dbcrypto: composite key must be 32 bytes, got %d", len(composite))
	}
	block, err := aes.NewCipher(transformSeed)
	if err != nil {
		return nil, fmt.Errorf("dbcrypto: transform seed cipher: %w", err)
	}

	left := make([]byte, 16)
	right := make([]byte, 16)
	copy(left, composite[:16])
	copy(right, composite[16:])

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		transformHalf(block, left, rounds)
	}()
	go func() {
		defer wg.Done()
		transformHalf(block, right, rounds)
	}()
	wg.Wait()

	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil), nil
}

func transformHalf(block cipher.Block, half []byte, rounds uint64) {
	for i := uint64(0); i < rounds; i++ {
		ecbEncryptBlock(block, half, half)
	}
}

// MasterKey derives the AES-256-CBC payload key from the master seed and the
// transformed key: SHA256(masterSeed ‖ transformedKey).
func MasterKey(masterSeed, transformedKey []byte) []byte {
	h := sha256.New()
	h.Write(masterSeed)
	h.Write(transformedKey)
	return h.Sum(nil)
}

// StreamKey derives the Salsa20 inner-cipher key from the header's
// ProtectedStreamKey field: SHA256(protectedStreamKey).
func StreamKey(protectedStreamKey []byte) []byte {
	h := sha256.New()
	h.Write(protectedStreamKey)
	return h.Sum(nil)
}

// Hash computes SHA-256 over the concatenation of chunks.
func Hash(chunks ...[]byte) [32]byte {
	h := sha256.New()
	for _, c := range chunks {
		h.Write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
