package model

import "github.com/google/uuid"

// UUID identifies a Group, Entry, or custom icon. KDBX stores these as
// base64-encoded 16-byte values in XML; the xmlkdbx package handles that
// encoding, this type just carries the parsed value.
type UUID = uuid.UUID

// NewUUID generates a random (version 4) UUID for a newly created Group or
// Entry.
func NewUUID() UUID {
	return uuid.New()
}

// ZeroUUID is the all-zero UUID, used as a sentinel for "no group/entry
// selected" fields in Database metadata.
var ZeroUUID UUID
