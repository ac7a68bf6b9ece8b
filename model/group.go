package model

// Group is a container in the database's tree: it owns its child groups and
// entries directly (no parent back-reference, no flattened uuid-keyed
// lookup table). Traversal and search always walk down from Database.Root.
type Group struct {
	UUID                UUID
	Name                string
	Notes               string
	IconID              Icon
	CustomIconUUID      UUID
	Times               Times
	IsExpanded          bool
	DefaultAutoTypeSeq  string
	EnableAutoType      *bool
	EnableSearching     *bool
	LastTopVisibleEntry UUID
	Groups              []Group
	Entries             []Entry
}

// NewGroup returns a Group with the defaults a freshly created group uses.
func NewGroup(name string) Group {
	return Group{
		UUID:       NewUUID(),
		Name:       name,
		IconID:     IconFolder,
		Times:      NewTimes(),
		IsExpanded: true,
	}
}

// AddGroup appends child to g's child groups and returns a pointer to the
// stored copy. The pointer is invalidated by any later append to g.Groups.
func (g *Group) AddGroup(child Group) *Group {
	g.Groups = append(g.Groups, child)
	return &g.Groups[len(g.Groups)-1]
}

// AddEntry appends e to g's entries and returns a pointer to the stored
// copy. The pointer is invalidated by any later append to g.Entries.
func (g *Group) AddEntry(e Entry) *Entry {
	g.Entries = append(g.Entries, e)
	return &g.Entries[len(g.Entries)-1]
}

// RemoveGroup removes the first descendant group whose UUID equals id,
// reporting whether one was found. g itself is never removed.
func (g *Group) RemoveGroup(id UUID) bool {
	for i := range g.Groups {
		if g.Groups[i].UUID == id {
			g.Groups = append(g.Groups[:i], g.Groups[i+1:]...)
			return true
		}
		if g.Groups[i].RemoveGroup(id) {
			return true
		}
	}
	return false
}

// RemoveEntry removes the first entry in g or any descendant group whose
// UUID equals id, reporting whether one was found.
func (g *Group) RemoveEntry(id UUID) bool {
	for i := range g.Entries {
		if g.Entries[i].UUID == id {
			g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
			return true
		}
	}
	for i := range g.Groups {
		if g.Groups[i].RemoveEntry(id) {
			return true
		}
	}
	return false
}

// FindGroups returns every descendant group (including g itself) for which
// pred returns true, walking the tree in pre-order.
func (g *Group) FindGroups(pred func(*Group) bool) []*Group {
	var out []*Group
	if pred(g) {
		out = append(out, g)
	}
	for i := range g.Groups {
		out = append(out, g.Groups[i].FindGroups(pred)...)
	}
	return out
}

// FindEntries returns every entry in g or any descendant group for which
// pred returns true, walking the tree in pre-order.
func (g *Group) FindEntries(pred func(*Entry) bool) []*Entry {
	var out []*Entry
	for i := range g.Entries {
		if pred(&g.Entries[i]) {
			out = append(out, &g.Entries[i])
		}
	}
	for i := range g.Groups {
		out = append(out, g.Groups[i].FindEntries(pred)...)
	}
	return out
}

// GetGroup returns the first descendant group (including g itself) whose
// UUID equals id, or nil if none matches.
func (g *Group) GetGroup(id UUID) *Group {
	if g.UUID == id {
		return g
	}
	for i := range g.Groups {
		if found := g.Groups[i].GetGroup(id); found != nil {
			return found
		}
	}
	return nil
}

// GetEntry returns the first entry in g or any descendant group whose UUID
// equals id, or nil if none matches.
func (g *Group) GetEntry(id UUID) *Entry {
	for i := range g.Entries {
		if g.Entries[i].UUID == id {
			return &g.Entries[i]
		}
	}
	for i := range g.Groups {
		if found := g.Groups[i].GetEntry(id); found != nil {
			return found
		}
	}
	return nil
}
