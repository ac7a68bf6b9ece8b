package dbcrypto

import "crypto/sha256"

// CompositeKeyFromPassword returns SHA256(SHA256(password)), the composite
// key used when the database is protected by a password alone.
func CompositeKeyFromPassword(password string) []byte {
	first := sha256.Sum256([]byte(password))
	second := sha256.Sum256(first[:])
	return second[:]
}

// CompositeKeyFromKeyFile returns SHA256(keyBytes), the composite key used
// when the database is protected by a key file alone.
func CompositeKeyFromKeyFile(keyBytes []byte) []byte {
	sum := sha256.Sum256(keyBytes)
	return sum[:]
}

// CompositeKeyFromBoth returns SHA256(SHA256(password) ‖ keyBytes), the
// composite key used when the database requires both a password and a key
// file.
func CompositeKeyFromBoth(password string, keyBytes []byte) []byte {
	first := sha256.Sum256([]byte(password))
	h := sha256.New()
	h.Write(first[:])
	h.Write(keyBytes)
	return h.Sum(nil)
}
