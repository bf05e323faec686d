package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"
)

// Store keeps titles of previously emitted items for cross-run dedup.
// Membership is an exact, case-sensitive title match. Insertion order is
// tracked alongside the lookup set so eviction can drop the oldest titles
// first once the cap is exceeded.
//
// A store is owned by a single run: loaded once at the start, mutated in
// memory, persisted once at the end. Not safe for concurrent use.
type Store struct {
	path   string
	limit  int
	titles []string // insertion order, oldest first
	seen   map[string]struct{}
}

// record is the durable JSON shape of the store
type record struct {
	Titles      []string  `json:"titles"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Load reads the history document from path. A missing or unreadable file
// degrades to an empty store with a warning, never a failure: losing history
// only means previously seen items may reappear once.
func Load(path string, limit int) *Store {
	s := &Store{path: path, limit: limit, seen: map[string]struct{}{}}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read history %s, starting empty: %v", path, err)
		}
		return s
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		lgr.Printf("[WARN] corrupt history %s, starting empty: %v", path, err)
		return s
	}

	for _, title := range rec.Titles {
		s.add(title)
	}
	return s
}

// Contains reports whether the exact title was seen in a previous run
func (s *Store) Contains(title string) bool {
	_, ok := s.seen[title]
	return ok
}

// RecordSeen adds titles to the in-memory set. Does not persist.
func (s *Store) RecordSeen(titles []string) {
	for _, title := range titles {
		s.add(title)
	}
}

// Len returns the number of distinct titles currently tracked
func (s *Store) Len() int {
	return len(s.titles)
}

// Persist writes the store back to disk, evicting the oldest titles beyond
// the cap. The caller decides how to treat a failure; by design it is
// non-fatal to the run, at the cost of possibly re-emitting items next time.
func (s *Store) Persist() error {
	if s.limit > 0 && len(s.titles) > s.limit {
		evicted := s.titles[:len(s.titles)-s.limit]
		for _, title := range evicted {
			delete(s.seen, title)
		}
		s.titles = s.titles[len(s.titles)-s.limit:]
	}

	data, err := json.MarshalIndent(record{Titles: s.titles, LastUpdated: time.Now()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) add(title string) {
	if title == "" {
		return
	}
	if _, ok := s.seen[title]; ok {
		return
	}
	s.seen[title] = struct{}{}
	s.titles = append(s.titles, title)
}
