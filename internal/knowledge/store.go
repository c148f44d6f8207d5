// Package knowledge holds the in-memory document set the agent reasons over.
//
// The set is published as an immutable Snapshot. Every update builds a new
// snapshot and swaps the pointer, so a query keeps the snapshot it started
// with no matter what uploads happen while it runs.
package knowledge

import (
	"sync"
	"sync/atomic"
)

// Snapshot is an immutable view of the document set.
type Snapshot struct {
	titles  []string
	content map[string]string
	version uint64
}

// Titles returns document titles in insertion order.
func (s *Snapshot) Titles() []string {
	out := make([]string, len(s.titles))
	copy(out, s.titles)
	return out
}

// Get returns the content for title.
func (s *Snapshot) Get(title string) (string, bool) {
	c, ok := s.content[title]
	return c, ok
}

// Len returns the number of documents.
func (s *Snapshot) Len() int { return len(s.titles) }

// Version identifies the swap that produced this snapshot.
func (s *Snapshot) Version() uint64 { return s.version }

// Each calls fn for every document in insertion order until fn returns false.
func (s *Snapshot) Each(fn func(title, content string) bool) {
	for _, t := range s.titles {
		if !fn(t, s.content[t]) {
			return
		}
	}
}

// Entry is a titled document used to build a snapshot.
type Entry struct {
	Title   string
	Content string
}

// Store publishes document snapshots.
type Store struct {
	current atomic.Pointer[Snapshot]
	// writeMu serializes writers; readers never take it.
	writeMu sync.Mutex
}

// NewStore returns a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{content: map[string]string{}})
	return s
}

// Snapshot returns the current document set.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Version returns the version of the current snapshot.
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// Replace swaps in a snapshot built from entries. A later entry with a
// duplicate title replaces the earlier one in place.
func (s *Store) Replace(entries []Entry) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := &Snapshot{
		titles:  make([]string, 0, len(entries)),
		content: make(map[string]string, len(entries)),
		version: s.current.Load().version + 1,
	}
	for _, e := range entries {
		if _, ok := next.content[e.Title]; !ok {
			next.titles = append(next.titles, e.Title)
		}
		next.content[e.Title] = e.Content
	}
	s.current.Store(next)
}

// Put adds or replaces a single document.
func (s *Store) Put(title, content string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.current.Load()
	next := prev.clone()
	if _, ok := next.content[title]; !ok {
		next.titles = append(next.titles, title)
	}
	next.content[title] = content
	s.current.Store(next)
}

// Delete removes a document and reports whether it was present.
func (s *Store) Delete(title string) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.current.Load()
	if _, ok := prev.content[title]; !ok {
		return false
	}
	next := prev.clone()
	delete(next.content, title)
	titles := next.titles[:0]
	for _, t := range next.titles {
		if t != title {
			titles = append(titles, t)
		}
	}
	next.titles = titles
	s.current.Store(next)
	return true
}

func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		titles:  make([]string, len(s.titles), len(s.titles)+1),
		content: make(map[string]string, len(s.content)+1),
		version: s.version + 1,
	}
	copy(next.titles, s.titles)
	for k, v := range s.content {
		next.content[k] = v
	}
	return next
}
