// Package vaultstats tracks open/view counters and an icon-ID histogram for
// a served vault, and persists them to a JSON file. All exported methods are
// safe for concurrent use.
package vaultstats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
)

// Stats tracks how many times a vault has been opened and viewed, plus a
// histogram of how many entries use each icon ID. All exported methods are
// safe for concurrent use: reads hold a shared read-lock while writes hold
// the exclusive write-lock.
type Stats struct {
	// mu protects the fields below. It must not be copied after first use.
	mu         sync.RWMutex
	Opens      int
	Views      int
	IconCounts map[int]int
	StateFile  string
}

// RecordOpen records one successful database open. Safe to call on a
// zero-value Stats.
func (s *Stats) RecordOpen() {
	s.mu.Lock()
	s.Opens++
	s.mu.Unlock()
}

// RecordView records one stats/summary view over HTTP.
func (s *Stats) RecordView() {
	s.mu.Lock()
	s.Views++
	s.mu.Unlock()
}

// SetIconHistogram replaces the icon-ID histogram wholesale, as computed by
// walking a freshly opened database's group/entry tree.
func (s *Stats) SetIconHistogram(counts map[int]int) {
	s.mu.Lock()
	s.IconCounts = counts
	s.mu.Unlock()
}

// snapshot is the JSON-serializable view of Stats used by both Save/Load and
// the JSON HTTP endpoint.
type snapshot struct {
	Opens      int         `json:"opens"`
	Views      int         `json:"views"`
	IconCounts map[int]int `json:"icon_counts"`
}

// WriteJSON writes the current counters and histogram to rw as JSON.
func (s *Stats) WriteJSON(rw http.ResponseWriter) error {
	s.mu.RLock()
	snap := snapshot{Opens: s.Opens, Views: s.Views, IconCounts: s.IconCounts}
	s.mu.RUnlock()

	rw.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(rw).Encode(snap)
}

// Graph renders a bar chart of the icon-ID histogram as SVG into rw. It
// buffers the entire SVG into memory before writing to rw so that a render
// failure does not commit a partial or empty body with a 200 status code.
func (s *Stats) Graph(rw http.ResponseWriter) error {
	s.mu.RLock()
	var bars []chart.Value
	total := 0
	for icon, count := range s.IconCounts {
		total += count
		bars = append(bars, chart.Value{Value: float64(count), Label: "icon " + strconv.Itoa(icon)})
	}
	s.mu.RUnlock()

	// go-chart fails with "invalid data range; cannot be zero" when every
	// bar value is 0 (i.e. no entries have been counted yet). Return a
	// minimal valid SVG placeholder so the stats page renders correctly on
	// a freshly opened vault rather than propagating an error.
	if total == 0 {
		const noDataSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="256">` +
			`<text x="200" y="128" text-anchor="middle" font-size="16">No entries yet</text>` +
			`</svg>`
		_, err := fmt.Fprint(rw, noDataSVG)
		return err
	}

	graph := chart.BarChart{
		Title: "Entries by icon",
		Background: chart.Style{
			Padding: chart.Box{
				Top:   40,
				Left:  10,
				Right: 10,
			},
		},
		Height:   256,
		BarWidth: 20,
		Bars:     bars,
	}
	// Render into an in-memory buffer. Only copy to rw when rendering
	// succeeds so that a failure cannot produce a 200 OK with a partial or
	// empty SVG body.
	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return fmt.Errorf("Graph: render: %w", err)
	}
	_, err := rw.Write(buf.Bytes())
	return err
}

// Save persists the current counters and histogram to StateFile as JSON.
// Safe for concurrent use: it holds a read lock while serialising.
func (s *Stats) Save() error {
	s.mu.RLock()
	snap := snapshot{Opens: s.Opens, Views: s.Views, IconCounts: s.IconCounts}
	s.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return os.WriteFile(s.StateFile, data, 0o644)
}

// Load reads persisted stats from StateFile. It is safe under all failure
// modes: missing file, malformed JSON, and a file containing the JSON value
// "null" for icon_counts. In each case IconCounts is left as an empty,
// non-nil map.
func (s *Stats) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.StateFile)
	if err != nil {
		s.IconCounts = make(map[int]int)
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.IconCounts = make(map[int]int)
		return
	}
	s.Opens = snap.Opens
	s.Views = snap.Views
	s.IconCounts = snap.IconCounts
	if s.IconCounts == nil {
		s.IconCounts = make(map[int]int)
	}
}
