package dbcrypto

import (
	"fmt"

	"golang.org/x/crypto/salsa20/salsa"
)

// InnerNonce is the fixed 8-byte Salsa20 nonce KDBX uses for the inner
// protected-value stream cipher.
var InnerNonce = [8]byte{0xE8, 0x30, 0x09, 0x4B, 0x97, 0x20, 0x5D, 0x2A}

// InnerCipher is a Salsa20 keystream generator advanced across successive
// Process calls. A single InnerCipher must be threaded through an entire
// database's XML traversal (reader or writer) in document pre-order; callers
// must never rewind or share one across goroutines.
type InnerCipher struct {
	key       [32]byte
	nonce     [8]byte
	counter   uint64
	remainder []byte // unused keystream bytes left over from the last 64-byte block
}

// NewInnerCipher constructs a stream-cipher state keyed by key (normally
// dbcrypto.StreamKey's output) using the fixed KDBX inner nonce.
func NewInnerCipher(key []byte) (*InnerCipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("dbcrypto: salsa20 key must be 32 bytes, got %d", len(key))
	}
	c := &InnerCipher{nonce: InnerNonce}
	copy(c.key[:], key)
	return c, nil
}

// Process XORs in with the next len(in) keystream bytes and returns the
// result in a new slice, advancing the cipher's internal state. An empty in
// consumes zero keystream bytes, matching the protected-value rule that an
// empty protected field never perturbs the shared stream position.
func (c *InnerCipher) Process(in []byte) []byte {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	off := 0

	if len(c.remainder) > 0 {
		n := copy(out, xorBytes(in[:min(len(in), len(c.remainder))], c.remainder))
		c.remainder = c.remainder[n:]
		off = n
	}

	for off < len(in) {
		var block [64]byte
		var nonceCounter [16]byte
		copy(nonceCounter[:8], c.nonce[:])
		putUint64LE(nonceCounter[8:], c.counter)
		salsa.XORKeyStream(block[:], block[:], &nonceCounter, &c.key)
		c.counter++

		n := copy(out[off:], xorBytes(in[off:min(len(in), off+64)], block[:]))
		if n < 64 {
			c.remainder = block[n:]
		}
		off += n
	}
	return out
}

func xorBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
