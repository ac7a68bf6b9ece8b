package model

// StringField is one key/value pair from an Entry's String collection. The
// well-known keys are Title, UserName, Password, URL, and Notes, but any
// custom key is allowed.
type StringField struct {
	Key       string
	Value     string
	Protected bool
}

// StringsMap holds an Entry's String fields, preserving the well-known keys
// as named accessors while still allowing arbitrary custom fields.
type StringsMap struct {
	fields []StringField
}

// Get returns the value and protected flag for key, or ("", false, false) if
// key is not present.
func (m *StringsMap) Get(key string) (value string, protected bool, ok bool) {
	for _, f := range m.fields {
		if f.Key == key {
			return f.Value, f.Protected, true
		}
	}
	return "", false, false
}

// Set inserts or replaces the field named key.
func (m *StringsMap) Set(key, value string, protected bool) {
	for i, f := range m.fields {
		if f.Key == key {
			m.fields[i] = StringField{Key: key, Value: value, Protected: protected}
			return
		}
	}
	m.fields = append(m.fields, StringField{Key: key, Value: value, Protected: protected})
}

// Remove deletes the field named key, if present.
func (m *StringsMap) Remove(key string) {
	for i, f := range m.fields {
		if f.Key == key {
			m.fields = append(m.fields[:i], m.fields[i+1:]...)
			return
		}
	}
}

// Fields returns every field in insertion order. Callers must not mutate the
// returned slice's backing array.
func (m *StringsMap) Fields() []StringField {
	return m.fields
}

// Title returns the Entry's Title field.
func (m *StringsMap) Title() string { v, _, _ := m.Get("Title"); return v }

// UserName returns the Entry's UserName field.
func (m *StringsMap) UserName() string { v, _, _ := m.Get("UserName"); return v }

// Password returns the Entry's Password field.
func (m *StringsMap) Password() string { v, _, _ := m.Get("Password"); return v }

// URL returns the Entry's URL field.
func (m *StringsMap) URL() string { v, _, _ := m.Get("URL"); return v }

// Notes returns the Entry's Notes field.
func (m *StringsMap) Notes() string { v, _, _ := m.Get("Notes"); return v }

// BinaryID identifies a binary payload stored once in the database's
// Binaries pool and referenced by this id from one or more entries.
type BinaryID uint32

// BinaryRef is one Entry Binary association: a display key and the id of the
// actual payload in the database's binary pool.
type BinaryRef struct {
	Key string
	ID  BinaryID
}

// BinariesMap holds the database-wide pool of unique binary payloads,
// indexed by BinaryID and shared across entries by reference.
type BinariesMap struct {
	data map[BinaryID][]byte
	next BinaryID
}

// NewBinariesMap returns an empty binary pool.
func NewBinariesMap() *BinariesMap {
	return &BinariesMap{data: make(map[BinaryID][]byte)}
}

// Add inserts data as a new pool entry and returns its id.
func (m *BinariesMap) Add(data []byte) BinaryID {
	id := m.next
	m.data[id] = data
	m.next++
	return id
}

// Get returns the payload stored under id.
func (m *BinariesMap) Get(id BinaryID) ([]byte, bool) {
	v, ok := m.data[id]
	return v, ok
}

// Set stores data under an explicit id, used when reading a database whose
// binary ids were assigned by another program.
func (m *BinariesMap) Set(id BinaryID, data []byte) {
	m.data[id] = data
	if id >= m.next {
		m.next = id + 1
	}
}

// Len returns the number of distinct binary payloads in the pool.
func (m *BinariesMap) Len() int {
	return len(m.data)
}

// IDs returns every id currently in the pool, in no particular order.
func (m *BinariesMap) IDs() []BinaryID {
	ids := make([]BinaryID, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids
}
