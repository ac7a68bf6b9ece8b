package dbcrypto

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes draws n cryptographically secure random bytes from the OS
// CSPRNG. Used for master seeds, transform seeds, master IVs, protected
// stream keys, and stream start bytes when saving a database.
func RandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("dbcrypto: read random bytes: %w", err)
	}
	return buf, nil
}
