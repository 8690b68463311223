// Package catalog holds the priority-tagged master list of locations that
// availability is computed against.
package catalog

import "strings"

// Entry is one location in the master list.
type Entry struct {
	Name     string   `json:"location"`
	Priority Priority `json:"priority"`
}

// Store is the master list for a single render cycle. It is rebuilt from
// the fixed rank lists and then edited with Add and Remove.
//
// A Store is not safe for concurrent use; each render owns its own copy.
type Store struct {
	entries []Entry
}

// Rebuild returns a fresh Store holding every Top location, then every
// Middle location, then every Low location, each in source order.
func Rebuild() *Store {
	n := len(topLocations) + len(middleLocations) + len(lowLocations)
	s := &Store{entries: make([]Entry, 0, n)}
	s.appendRank(topLocations, Top)
	s.appendRank(middleLocations, Middle)
	s.appendRank(lowLocations, Low)
	return s
}

// BaseSize is the number of entries a freshly rebuilt Store holds.
func BaseSize() int {
	return len(topLocations) + len(middleLocations) + len(lowLocations)
}

func (s *Store) appendRank(names []string, p Priority) {
	for _, name := range names {
		s.entries = append(s.entries, Entry{Name: name, Priority: p})
	}
}

// Add appends name under p after trimming surrounding whitespace, then drops
// exact duplicate rows (same name and priority), keeping the first one.
// An empty trimmed name is a no-op. Add reports whether the list changed.
//
// The same name may still be present under a different priority.
func (s *Store) Add(name string, p Priority) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	before := len(s.entries)
	s.entries = append(s.entries, Entry{Name: name, Priority: p})
	s.dedupe()
	return len(s.entries) != before
}

// dedupe removes exact duplicate rows, keeping first occurrences in order.
func (s *Store) dedupe() {
	seen := make(map[Entry]struct{}, len(s.entries))
	kept := s.entries[:0]
	for _, e := range s.entries {
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		kept = append(kept, e)
	}
	s.entries = kept
}

// Remove drops every entry named exactly name, whatever its priority.
// It returns the number of entries removed.
func (s *Store) Remove(name string) int {
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.Name == name {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

// Entries returns a copy of the current list in store order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Names returns every entry name in store order. A name listed under two
// priorities appears twice.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Name)
	}
	return out
}

// Count returns how many entries are named exactly name.
func (s *Store) Count(name string) int {
	n := 0
	for _, e := range s.entries {
		if e.Name == name {
			n++
		}
	}
	return n
}
