package model

import (
	"strings"
	"time"
)

// Meta holds the database-wide configuration and bookkeeping fields stored
// in the KDBX XML Meta element, alongside the crypto parameters that live in
// the outer header (see the header package for those).
type Meta struct {
	Generator           string
	DatabaseName        string
	DatabaseNameChanged time.Time

	Description        string
	DescriptionChanged time.Time

	DefaultUserName        string
	DefaultUserNameChanged time.Time

	MaintenanceHistoryDays int64
	Color                  *Color

	MasterKeyChanged     time.Time
	MasterKeyChangeRec   int64
	MasterKeyChangeForce int64

	MemoryProtection MemoryProtection

	CustomIcons []CustomIcon

	RecycleBinEnabled bool
	RecycleBinUUID    UUID
	RecycleBinChanged time.Time

	EntryTemplatesGroup        UUID
	EntryTemplatesGroupChanged time.Time

	HistoryMaxItems int64
	HistoryMaxSize  int64

	LastSelectedGroup   UUID
	LastTopVisibleGroup UUID

	CustomData map[string]string
}

// MemoryProtection records which well-known string fields are protected
// in-memory (and therefore encrypted on the wire) by default for newly
// created entries.
type MemoryProtection struct {
	ProtectTitle    bool
	ProtectUserName bool
	ProtectPassword bool
	ProtectURL      bool
	ProtectNotes    bool
}

// CustomIcon is a user-supplied icon image stored once in Meta and
// referenced by UUID from Group.CustomIconUUID / Entry.CustomIconUUID.
type CustomIcon struct {
	UUID UUID
	Data []byte
}

// NewMeta returns the Meta defaults KeePass 2 uses for a freshly created
// KDBX 3.1 file.
func NewMeta(name string) Meta {
	now := time.Now().UTC()
	return Meta{
		Generator:              "kdbxgo",
		DatabaseName:           name,
		DatabaseNameChanged:    now,
		DescriptionChanged:     now,
		DefaultUserNameChanged: now,
		MaintenanceHistoryDays: 365,
		MasterKeyChanged:       now,
		MasterKeyChangeRec:     -1,
		MasterKeyChangeForce:   -1,
		MemoryProtection: MemoryProtection{
			ProtectPassword: true,
		},
		RecycleBinEnabled:          true,
		RecycleBinUUID:             ZeroUUID,
		RecycleBinChanged:          now,
		EntryTemplatesGroupChanged: now,
		HistoryMaxItems:            10,
		HistoryMaxSize:             6291456,
		CustomData:                 make(map[string]string),
	}
}

// Database is the in-memory representation of an opened or to-be-saved KDBX
// 3.1 container: its codec Settings, metadata, and the owned group/entry
// tree rooted at Root. Random header material (seeds, IV, protected stream
// key) is never stored here; it lives in a header.Header managed by the
// kdbx package for the duration of one Open/Save call and is regenerated on
// every save.
type Database struct {
	Settings Settings
	Meta     Meta
	Root     Group
	Binaries *BinariesMap
}

// New returns a Database with a single empty root group named name,
// default codec settings, and default metadata.
func New(name string) *Database {
	return &Database{
		Settings: DefaultSettings(),
		Meta:     NewMeta(name),
		Root:     NewGroup(name),
		Binaries: NewBinariesMap(),
	}
}

// FindGroups returns every group in the tree for which pred returns true.
func (d *Database) FindGroups(pred func(*Group) bool) []*Group {
	return d.Root.FindGroups(pred)
}

// FindEntries returns every entry in the tree for which pred returns true.
func (d *Database) FindEntries(pred func(*Entry) bool) []*Entry {
	return d.Root.FindEntries(pred)
}

// SearchEntries returns every entry with an unprotected string value
// containing text, case-insensitively. Protected values are never
// substring-scanned.
func (d *Database) SearchEntries(text string) []*Entry {
	needle := strings.ToLower(text)
	return d.FindEntries(func(e *Entry) bool {
		for _, f := range e.Strings.Fields() {
			if f.Protected {
				continue
			}
			if strings.Contains(strings.ToLower(f.Value), needle) {
				return true
			}
		}
		return false
	})
}

// SearchGroups returns every group whose name contains name,
// case-insensitively.
func (d *Database) SearchGroups(name string) []*Group {
	needle := strings.ToLower(name)
	return d.FindGroups(func(g *Group) bool {
		return strings.Contains(strings.ToLower(g.Name), needle)
	})
}

// GetGroup returns the group with the given UUID, or nil if none matches.
func (d *Database) GetGroup(id UUID) *Group {
	return d.Root.GetGroup(id)
}

// GetEntry returns the entry with the given UUID, or nil if none matches.
func (d *Database) GetEntry(id UUID) *Entry {
	return d.Root.GetEntry(id)
}
