// Package vaultserver provides an http.Handler that serves read-only summary
// statistics about a single opened, in-memory vault.
package vaultserver

import (
	"log"
	"net/http"

	"github.com/go-i2p/kdbxgo/model"
	"github.com/go-i2p/kdbxgo/vaultstats"
)

// Server is an http.Handler serving a JSON snapshot at /stats.json and an
// icon-histogram SVG bar chart at /stats.svg for a single opened Database.
// The database itself is never exposed over HTTP, only aggregate counts.
type Server struct {
	DB    *model.Database
	Stats *vaultstats.Stats
}

// New constructs a Server for db, loading any previously persisted counters
// from statsFile, computing the initial icon histogram from db's tree, and
// recording one open.
func New(db *model.Database, statsFile string) *Server {
	s := &Server{
		DB:    db,
		Stats: &vaultstats.Stats{StateFile: statsFile},
	}
	s.Stats.Load()
	s.Stats.SetIconHistogram(iconHistogram(db))
	s.Stats.RecordOpen()
	return s
}

// iconHistogram counts how many entries use each icon ID across the whole
// group/entry tree.
func iconHistogram(db *model.Database) map[int]int {
	counts := make(map[int]int)
	var walk func(g *model.Group)
	walk = func(g *model.Group) {
		for i := range g.Entries {
			counts[int(g.Entries[i].IconID)]++
		}
		for i := range g.Groups {
			walk(&g.Groups[i])
		}
	}
	walk(&db.Root)
	return counts
}

// ServeHTTP implements http.Handler, routing exactly two paths: /stats.json
// and /stats.svg. There is no on-disk directory to traverse and no vault
// content reachable from any route, so the fixed two-entry table is the
// entire attack surface.
func (s *Server) ServeHTTP(rw http.ResponseWriter, rq *http.Request) {
	s.Stats.RecordView()
	switch rq.URL.Path {
	case "/stats.json":
		if err := s.Stats.WriteJSON(rw); err != nil {
			log.Printf("ServeHTTP: stats json: %v", err)
			http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		}
	case "/stats.svg":
		rw.Header().Set("Content-Type", "image/svg+xml")
		if err := s.Stats.Graph(rw); err != nil {
			log.Printf("ServeHTTP: stats graph: %v", err)
			http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
		}
	default:
		http.NotFound(rw, rq)
	}
}
