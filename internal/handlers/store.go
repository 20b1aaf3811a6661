// Package handlers implements the HTTP surface: timetable submission,
// CRUD over previously-computed timetables, and a health check, wired the
// way the teacher's handlers package composes services behind a thin
// router layer.
package handlers

import (
	"sync"
	"time"

	"github.com/ska-sa/obssched/internal/driver"
	"github.com/ska-sa/obssched/internal/proposal"
)

// Timetable is one stored optimizer run, keyed by a monotonically
// increasing id per spec §6.
type Timetable struct {
	ID        int64
	Horizon   proposal.Horizon
	Result    *driver.Result
	CreatedAt time.Time
}

// Store is an in-memory, monotonically-keyed collection of computed
// timetables. The driver never touches this directly — it only produces
// driver.Result; the HTTP layer owns persistence.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*Timetable
	nextID  int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[int64]*Timetable)}
}

// Create assigns a fresh id to result and stores it, returning the
// created entry.
func (s *Store) Create(h proposal.Horizon, result *driver.Result) *Timetable {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t := &Timetable{ID: s.nextID, Horizon: h, Result: result, CreatedAt: time.Now()}
	s.entries[t.ID] = t
	return t
}

// Get returns the timetable for id, or (nil, false) if absent.
func (s *Store) Get(id int64) (*Timetable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.entries[id]
	return t, ok
}

// Update replaces the stored result for id in place, preserving its id
// and creation time. Returns false if id does not exist.
func (s *Store) Update(id int64, h proposal.Horizon, result *driver.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[id]
	if !ok {
		return false
	}
	existing.Horizon = h
	existing.Result = result
	return true
}

// Delete removes id from the store. Returns false if it did not exist.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// PruneOlderThan removes every entry created before cutoff and returns how
// many were removed. Handlers.PruneStore wraps it in the services.PruneFunc
// shape that a services.CleanupScheduler takes.
func (s *Store) PruneOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.entries {
		if t.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports how many timetables are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
