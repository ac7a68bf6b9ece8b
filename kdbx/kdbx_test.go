package kdbx

import (
	"bytes"
	"testing"

	"github.com/go-i2p/kdbxgo/keyfile"
	"github.com/go-i2p/kdbxgo/model"
)

func buildTestDatabase() *model.Database {
	db := model.New("my vault")
	group := model.NewGroup("Web")
	entry := model.NewEntry()
	entry.Strings.Set("Title", "example.com", false)
	entry.Strings.Set("UserName", "alice", false)
	entry.Strings.Set("Password", "hunter2", true)
	entry.Strings.Set("Notes", "line1\nline2", true)
	id := db.Binaries.Add([]byte("attachment"))
	entry.Binaries = append(entry.Binaries, model.BinaryRef{Key: "a.txt", ID: id})
	group.Entries = append(group.Entries, entry)
	db.Root.Groups = append(db.Root.Groups, group)
	return db
}

func TestSaveOpenRoundTrip(t *testing.T) {
	db := buildTestDatabase()
	key := CompositeKeyFromPassword("correct horse battery staple")

	var buf bytes.Buffer
	if err := Save(db, &buf, key); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromPassword("correct horse battery staple"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got.Meta.DatabaseName != "my vault" {
		t.Fatalf("DatabaseName = %q, want %q", got.Meta.DatabaseName, "my vault")
	}
	if len(got.Root.Groups) != 1 || got.Root.Groups[0].Name != "Web" {
		t.Fatalf("Root.Groups = %+v", got.Root.Groups)
	}
	entry := got.Root.Groups[0].Entries[0]
	if entry.Strings.Password() != "hunter2" {
		t.Fatalf("Password() = %q, want hunter2", entry.Strings.Password())
	}
	if entry.Strings.Notes() != "line1\nline2" {
		t.Fatalf("Notes() = %q, want the multi-line protected value", entry.Strings.Notes())
	}
	data, ok := got.Binaries.Get(entry.Binaries[0].ID)
	if !ok || string(data) != "attachment" {
		t.Fatalf("Binaries.Get = (%q, %v), want (attachment, true)", data, ok)
	}
}

func TestEmptyDatabaseRoundTrip(t *testing.T) {
	db := model.New("empty")
	key := CompositeKeyFromPassword("pw")

	var buf bytes.Buffer
	if err := Save(db, &buf, key); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromPassword("pw"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Meta.DatabaseName != "empty" {
		t.Fatalf("DatabaseName = %q, want empty", got.Meta.DatabaseName)
	}
	if len(got.Root.Groups) != 0 || len(got.Root.Entries) != 0 {
		t.Fatalf("expected an empty root group, got %+v", got.Root)
	}
}

func TestOpenWrongPasswordRejected(t *testing.T) {
	db := buildTestDatabase()
	var buf bytes.Buffer
	if err := Save(db, &buf, CompositeKeyFromPassword("right")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromPassword("wrong"))
	if err == nil {
		t.Fatal("Open with wrong password: got nil error, want InvalidCredentials")
	}
	if _, ok := err.(InvalidCredentials); !ok {
		t.Fatalf("Open with wrong password: error type = %T, want InvalidCredentials", err)
	}
}

func TestKeyFileRoundTrip(t *testing.T) {
	kf, err := keyfile.NewBinary()
	if err != nil {
		t.Fatalf("NewBinary: %v", err)
	}
	db := buildTestDatabase()
	key := CompositeKeyFromKeyFile(kf)

	var buf bytes.Buffer
	if err := Save(db, &buf, key); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromKeyFile(kf))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Meta.DatabaseName != db.Meta.DatabaseName {
		t.Fatalf("DatabaseName = %q, want %q", got.Meta.DatabaseName, db.Meta.DatabaseName)
	}
}

func TestCompositeKeyFromBothRequiresSameInputs(t *testing.T) {
	kf, err := keyfile.NewHex()
	if err != nil {
		t.Fatalf("NewHex: %v", err)
	}
	db := buildTestDatabase()

	var buf bytes.Buffer
	if err := Save(db, &buf, CompositeKeyFromBoth("pw", kf)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromPassword("pw")); err == nil {
		t.Fatal("Open with password-only key against a password+keyfile database: got nil error, want failure")
	}

	got, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromBoth("pw", kf))
	if err != nil {
		t.Fatalf("Open with matching password+keyfile: %v", err)
	}
	if got.Meta.DatabaseName != db.Meta.DatabaseName {
		t.Fatalf("DatabaseName = %q, want %q", got.Meta.DatabaseName, db.Meta.DatabaseName)
	}
}

func TestSettingsPreservedAcrossRoundTrip(t *testing.T) {
	db := buildTestDatabase()
	db.Settings.Compression = model.CompressionNone
	db.Settings.TransformRounds = 600

	var buf bytes.Buffer
	if err := Save(db, &buf, CompositeKeyFromPassword("pw")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Open(bytes.NewReader(buf.Bytes()), CompositeKeyFromPassword("pw"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Settings.Compression != model.CompressionNone {
		t.Fatalf("Compression = %v, want CompressionNone", got.Settings.Compression)
	}
	if got.Settings.TransformRounds != 600 {
		t.Fatalf("TransformRounds = %d, want 600", got.Settings.TransformRounds)
	}
	if got.Settings.Version != (model.Version{Major: 3, Minor: 1}) {
		t.Fatalf("Version = %+v, want {3 1}", got.Settings.Version)
	}
}

func TestSaveRejectsDanglingBinaryRef(t *testing.T) {
	db := buildTestDatabase()
	entry := &db.Root.Groups[0].Entries[0]
	entry.Binaries = append(entry.Binaries, model.BinaryRef{Key: "ghost.bin", ID: 999})

	var buf bytes.Buffer
	if err := Save(db, &buf, CompositeKeyFromPassword("pw")); err == nil {
		t.Fatal("Save with a binary ref outside the pool: got nil error, want failure")
	}
}

func TestTamperedPayloadBlockDetected(t *testing.T) {
	db := buildTestDatabase()
	var buf bytes.Buffer
	if err := Save(db, &buf, CompositeKeyFromPassword("pw")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tampered := buf.Bytes()
	// Flip a byte near the end of the file, inside the encrypted payload.
	tampered[len(tampered)-1] ^= 0xFF

	_, err := Open(bytes.NewReader(tampered), CompositeKeyFromPassword("pw"))
	if err == nil {
		t.Fatal("Open with tampered ciphertext: got nil error, want a decode failure")
	}
}
