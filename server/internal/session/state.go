// Package session keeps per-browser edits to the master list between
// requests. Edits live only in memory and are lost on restart.
package session

import (
	"strings"
	"sync"

	"github.com/locavail/locavail/server/internal/catalog"
)

// Op is the kind of master-list edit.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Mutation is one add or remove command issued from the sidebar.
type Mutation struct {
	Op       Op               `json:"op"`
	Name     string           `json:"name"`
	Priority catalog.Priority `json:"priority,omitempty"`
}

// State is the edit log of one session. Every render rebuilds the master
// list and replays the log on top, so edits stay visible across renders.
type State struct {
	ID string

	mu  sync.Mutex
	log []Mutation
}

func newState(id string) *State {
	return &State{ID: id}
}

// Apply records m. An add whose trimmed name is empty and a remove with no
// name are ignored; Apply reports whether m was recorded.
func (s *State) Apply(m Mutation) bool {
	switch m.Op {
	case OpAdd:
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return false
		}
	case OpRemove:
		if m.Name == "" {
			return false
		}
	default:
		return false
	}
	s.mu.Lock()
	s.log = append(s.log, m)
	s.mu.Unlock()
	return true
}

// Catalog rebuilds the master list and replays the session's edits.
func (s *State) Catalog() *catalog.Store {
	s.mu.Lock()
	log := make([]Mutation, len(s.log))
	copy(log, s.log)
	s.mu.Unlock()

	store := catalog.Rebuild()
	for _, m := range log {
		switch m.Op {
		case OpAdd:
			store.Add(m.Name, m.Priority)
		case OpRemove:
			store.Remove(m.Name)
		}
	}
	return store
}

// Mutations returns a copy of the edit log in the order it was applied.
func (s *State) Mutations() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mutation, len(s.log))
	copy(out, s.log)
	return out
}
