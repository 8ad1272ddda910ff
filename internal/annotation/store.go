package annotation

import (
	"sync"
	"weak"
)

// Store maps keys to weakly held annotations so that at most one live object
// exists per key. It never keeps an annotation alive: once the map surface drops
// an object the entry is dead until Refresh prunes it.
type Store struct {
	mu      sync.Mutex
	entries map[Identity]weak.Pointer[Annotation]
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Identity]weak.Pointer[Annotation]),
	}
}

// Create returns the live annotation for key, creating one if needed.
func (s *Store) Create(key Key) *Annotation {
	id := key.Identity()

	s.mu.Lock()
	defer s.mu.Unlock()

	if wp, ok := s.entries[id]; ok {
		if a := wp.Value(); a != nil {
			return a
		}
	}

	a := New(key)
	s.entries[id] = weak.Make(a)
	return a
}

// Existing returns the live annotation for key or nil.
func (s *Store) Existing(key Key) *Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wp, ok := s.entries[key.Identity()]; ok {
		return wp.Value()
	}
	return nil
}

// Refresh drops entries whose annotation was collected and returns how many.
func (s *Store) Refresh() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, wp := range s.entries {
		if wp.Value() == nil {
			delete(s.entries, id)
			pruned++
		}
	}
	return pruned
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
