// Package secret provides a zeroing byte container for passwords, derived
// keys, and protected field plaintexts that must never appear in a log line,
// a panic trace, or a %v-formatted struct dump.
package secret

// Bytes is an owned buffer of sensitive data. The zero value is an empty,
// usable secret. Bytes must not be copied by value after New; copy the
// result of Expose instead if a caller genuinely needs an independent slice.
type Bytes struct {
	data []byte
}

// New takes ownership of b and wraps it. The caller must not retain or
// mutate b after calling New.
func New(b []byte) *Bytes {
	return &Bytes{data: b}
}

// Expose returns the underlying bytes. The returned slice aliases internal
// storage; callers must not retain it past the next call to Clear.
func (s *Bytes) Expose() []byte {
	if s == nil {
		return nil
	}
	return s.data
}

// Len reports the number of bytes currently held.
func (s *Bytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}

// Equal reports whether s and other hold identical bytes. Not constant-time;
// callers comparing attacker-influenced secrets against a fixed value must
// not rely on it for timing safety.
func (s *Bytes) Equal(other *Bytes) bool {
	a, b := s.Expose(), other.Expose()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clear zeroes the buffer in place and drops the reference to it. Safe to
// call more than once and on a nil receiver.
func (s *Bytes) Clear() {
	if s == nil {
		return
	}
	for i := range s.data {
		s.data[i] = 0
	}
	s.data = nil
}

// String deliberately does not return the secret's content; fmt falls back
// to this when a *Bytes is formatted with %v, %s, or printed via log.
func (s *Bytes) String() string {
	return "secret.Bytes(REDACTED)"
}
