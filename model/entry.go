package model

// Entry is a single credential record. Its History slice holds prior
// revisions of this same entry (each a full Entry snapshot with its own
// Times); callers enforce the database's history_max_items/history_max_size
// limits through TrimHistory.
type Entry struct {
	UUID            UUID
	IconID          Icon
	CustomIconUUID  UUID
	ForegroundColor *Color
	BackgroundColor *Color
	OverrideURL     string
	Tags            string
	Times           Times
	Strings         StringsMap
	Binaries        []BinaryRef
	AutoType        AutoType
	History         []Entry
}

// NewEntry returns an Entry with the defaults a freshly created entry uses:
// a random UUID, the Key icon, and a Password field marked protected.
func NewEntry() Entry {
	e := Entry{
		UUID:     NewUUID(),
		IconID:   IconKey,
		Times:    NewTimes(),
		AutoType: NewAutoType(),
	}
	e.Strings.Set("Title", "", false)
	e.Strings.Set("UserName", "", false)
	e.Strings.Set("Password", "", true)
	e.Strings.Set("URL", "", false)
	e.Strings.Set("Notes", "", false)
	return e
}

// PushHistory appends a snapshot of the entry's current state (without its
// own history, matching the KDBX rule that history entries never nest) to
// History.
func (e *Entry) PushHistory() {
	snapshot := *e
	snapshot.History = nil
	e.History = append(e.History, snapshot)
}

// TrimHistory drops the oldest history entries until at most maxItems remain
// (a non-positive maxItems means unlimited) and until the total serialized
// size of the remaining entries' string values is at most
// maxSizeBytes (a non-positive maxSizeBytes means unlimited).
func (e *Entry) TrimHistory(maxItems int, maxSizeBytes int64) {
	if maxItems > 0 && len(e.History) > maxItems {
		e.History = e.History[len(e.History)-maxItems:]
	}
	if maxSizeBytes <= 0 {
		return
	}
	for historySize(e.History) > maxSizeBytes && len(e.History) > 0 {
		e.History = e.History[1:]
	}
}

// historySize approximates a history entry's footprint by its string field
// values; binary payloads live in the database's shared pool and are not
// duplicated per history entry, so they don't count toward this budget.
func historySize(history []Entry) int64 {
	var total int64
	for _, h := range history {
		for _, f := range h.Strings.Fields() {
			total += int64(len(f.Value))
		}
	}
	return total
}
