package web

import (
	"sync"

	"conprog/internal/model"
)

// Store holds the current normalized dataset. A refresh either fully
// succeeds and replaces the snapshot, or fails and readers keep seeing the
// previous one.
type Store struct {
	mu  sync.RWMutex
	cur *model.Dataset
}

// Current returns the latest successfully built dataset, or nil before the
// first successful refresh.
func (s *Store) Current() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Replace installs a freshly built dataset.
func (s *Store) Replace(d *model.Dataset) {
	s.mu.Lock()
	s.cur = d
	s.mu.Unlock()
}
