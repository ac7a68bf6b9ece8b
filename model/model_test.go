package model

import "testing"

func TestIconValidRange(t *testing.T) {
	for id := int32(0); id <= int32(MaxIcon); id++ {
		if _, err := NewIcon(id); err != nil {
			t.Fatalf("NewIcon(%d) returned error %v, want nil", id, err)
		}
	}
}

func TestIconOutOfRange(t *testing.T) {
	cases := []int32{-1, int32(MaxIcon) + 1, 1000}
	for _, id := range cases {
		if _, err := NewIcon(id); err == nil {
			t.Fatalf("NewIcon(%d) = nil error, want InvalidIconID", id)
		} else if _, ok := err.(InvalidIconID); !ok {
			t.Fatalf("NewIcon(%d) error type = %T, want InvalidIconID", id, err)
		}
	}
}

func TestColorRoundTrip(t *testing.T) {
	c, err := ColorFromHexString("#1a2b3c")
	if err != nil {
		t.Fatalf("ColorFromHexString: %v", err)
	}
	if c.Red != 0x1a || c.Green != 0x2b || c.Blue != 0x3c {
		t.Fatalf("Color = %+v, want {1a 2b 3c}", c)
	}
	if got := c.ToHexString(); got != "#1a2b3c" {
		t.Fatalf("ToHexString() = %q, want #1a2b3c", got)
	}
}

func TestColorErrors(t *testing.T) {
	cases := map[string]interface{}{
		"#1a2b3":   HexStringTooShort{},
		"#1a2b3cd": HexStringTooLong{},
		"01a2b3c":  HexStringNoHashSign{},
		"#zz2b3c":  InvalidRedValue{},
		"#1azz3c":  InvalidGreenValue{},
		"#1a2bzz":  InvalidBlueValue{},
	}
	for input, wantType := range cases {
		_, err := ColorFromHexString(input)
		if err == nil {
			t.Fatalf("ColorFromHexString(%q) = nil error, want %T", input, wantType)
		}
	}
}

func TestStringsMapWellKnownAccessors(t *testing.T) {
	e := NewEntry()
	e.Strings.Set("Title", "example.com", false)
	e.Strings.Set("UserName", "alice", false)
	e.Strings.Set("Password", "hunter2", true)

	if got := e.Strings.Title(); got != "example.com" {
		t.Fatalf("Title() = %q, want example.com", got)
	}
	if got := e.Strings.UserName(); got != "alice" {
		t.Fatalf("UserName() = %q, want alice", got)
	}
	if _, protected, _ := e.Strings.Get("Password"); !protected {
		t.Fatal("Password field should be protected")
	}
}

func TestBinariesMapAddGet(t *testing.T) {
	m := NewBinariesMap()
	id := m.Add([]byte("payload"))
	got, ok := m.Get(id)
	if !ok {
		t.Fatal("Get returned ok=false for just-added id")
	}
	if string(got) != "payload" {
		t.Fatalf("Get = %q, want payload", got)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestGroupTreeFindAndGet(t *testing.T) {
	db := New("test")
	child := NewGroup("child")
	entry := NewEntry()
	entry.Strings.Set("Title", "target", false)
	child.Entries = append(child.Entries, entry)
	db.Root.Groups = append(db.Root.Groups, child)

	found := db.FindEntries(func(e *Entry) bool { return e.Strings.Title() == "target" })
	if len(found) != 1 {
		t.Fatalf("FindEntries found %d entries, want 1", len(found))
	}

	if got := db.GetEntry(entry.UUID); got == nil || got.UUID != entry.UUID {
		t.Fatal("GetEntry did not find the entry by UUID")
	}

	if got := db.GetGroup(child.UUID); got == nil || got.Name != "child" {
		t.Fatal("GetGroup did not find the child group by UUID")
	}
}

func TestAddRemoveGroupAndEntry(t *testing.T) {
	db := New("test")
	child := db.Root.AddGroup(NewGroup("child"))
	entry := child.AddEntry(NewEntry())
	entryID := entry.UUID
	childID := child.UUID

	if db.GetEntry(entryID) == nil {
		t.Fatal("GetEntry did not find the added entry")
	}
	if !db.Root.RemoveEntry(entryID) {
		t.Fatal("RemoveEntry did not find the entry")
	}
	if db.GetEntry(entryID) != nil {
		t.Fatal("entry still present after RemoveEntry")
	}
	if db.Root.RemoveEntry(entryID) {
		t.Fatal("RemoveEntry reported success for an already-removed entry")
	}

	if !db.Root.RemoveGroup(childID) {
		t.Fatal("RemoveGroup did not find the child group")
	}
	if db.GetGroup(childID) != nil {
		t.Fatal("group still present after RemoveGroup")
	}
}

func TestSearchEntriesSkipsProtectedValues(t *testing.T) {
	db := New("test")
	e := NewEntry()
	e.Strings.Set("Title", "Bank Login", false)
	e.Strings.Set("Password", "needle-in-password", true)
	db.Root.AddEntry(e)

	if got := db.SearchEntries("bank"); len(got) != 1 {
		t.Fatalf("SearchEntries(bank) found %d entries, want 1", len(got))
	}
	if got := db.SearchEntries("needle"); len(got) != 0 {
		t.Fatalf("SearchEntries over a protected value found %d entries, want 0", len(got))
	}
}

func TestSearchGroupsByName(t *testing.T) {
	db := New("test")
	db.Root.AddGroup(NewGroup("Work Accounts"))
	db.Root.AddGroup(NewGroup("Personal"))

	if got := db.SearchGroups("work"); len(got) != 1 {
		t.Fatalf("SearchGroups(work) found %d groups, want 1", len(got))
	}
}

func TestEntryHistoryPushAndTrim(t *testing.T) {
	e := NewEntry()
	for i := 0; i < 5; i++ {
		e.PushHistory()
	}
	if len(e.History) != 5 {
		t.Fatalf("len(History) = %d, want 5", len(e.History))
	}
	e.TrimHistory(3, 0)
	if len(e.History) != 3 {
		t.Fatalf("len(History) after TrimHistory(3, 0) = %d, want 3", len(e.History))
	}
}

func TestNewDatabaseDefaults(t *testing.T) {
	db := New("vault")
	if db.Meta.DatabaseName != "vault" {
		t.Fatalf("DatabaseName = %q, want vault", db.Meta.DatabaseName)
	}
	if !db.Meta.MemoryProtection.ProtectPassword {
		t.Fatal("ProtectPassword should default to true")
	}
	if db.Meta.HistoryMaxItems != 10 {
		t.Fatalf("HistoryMaxItems = %d, want 10", db.Meta.HistoryMaxItems)
	}
	if db.Meta.HistoryMaxSize != 6291456 {
		t.Fatalf("HistoryMaxSize = %d, want 6291456", db.Meta.HistoryMaxSize)
	}
	if !db.Meta.RecycleBinEnabled {
		t.Fatal("RecycleBinEnabled should default to true")
	}
	if db.Settings.Compression != CompressionGZip {
		t.Fatalf("Settings.Compression = %v, want CompressionGZip", db.Settings.Compression)
	}
	if db.Settings.TransformRounds != 10000 {
		t.Fatalf("Settings.TransformRounds = %d, want 10000", db.Settings.TransformRounds)
	}
	if db.Settings.StreamCipher != StreamCipherSalsa20 {
		t.Fatalf("Settings.StreamCipher = %v, want StreamCipherSalsa20", db.Settings.StreamCipher)
	}
	if db.Settings.Version != (Version{Major: 3, Minor: 1}) {
		t.Fatalf("Settings.Version = %+v, want {3 1}", db.Settings.Version)
	}
}
