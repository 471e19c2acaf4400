// Package store holds the deduplicated, time-ordered comments of one
// watched thread.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/fragmede/livethread/internal/domain"
)

// DefaultLimit bounds the number of retained comments.
const DefaultLimit = 1000

// Store is safe for concurrent use. Merge and All may run from different
// goroutines.
type Store struct {
	mu    sync.RWMutex
	limit int
	items []domain.Comment
	index map[string]struct{}

	// Everything evicted is at or before floor. atFloor holds the IDs
	// evicted exactly at floor, so a dropped comment is never re-added
	// while memory stays bounded by the retained set.
	evicted bool
	floor   time.Time
	atFloor map[string]struct{}
}

// New returns an empty store retaining at most limit comments.
// A non-positive limit selects DefaultLimit.
func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:   limit,
		index:   make(map[string]struct{}),
		atFloor: make(map[string]struct{}),
	}
}

// Merge adds comments whose IDs have not been seen before and returns how
// many of them are retained. Existing entries are never updated. After a
// merge the contents are ordered by creation time, ties kept in arrival
// order, and trimmed to the most recent limit entries.
func (s *Store) Merge(batch []domain.Comment) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var incoming []string
	for _, c := range batch {
		if c.ID == "" || s.dropped(c) {
			continue
		}
		if _, ok := s.index[c.ID]; ok {
			continue
		}
		s.index[c.ID] = struct{}{}
		s.items = append(s.items, c)
		incoming = append(incoming, c.ID)
	}
	if len(incoming) == 0 {
		return 0
	}

	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].CreatedAt.Before(s.items[j].CreatedAt)
	})
	if over := len(s.items) - s.limit; over > 0 {
		for _, c := range s.items[:over] {
			s.evict(c)
		}
		s.items = append(s.items[:0:0], s.items[over:]...)
	}

	added := 0
	for _, id := range incoming {
		if _, ok := s.index[id]; ok {
			added++
		}
	}
	return added
}

// dropped reports whether c would fall below the retained window. Once
// anything has been evicted the store is full and never shrinks, so such
// a comment would be trimmed again immediately.
func (s *Store) dropped(c domain.Comment) bool {
	if !s.evicted {
		return false
	}
	if c.CreatedAt.Before(s.floor) {
		return true
	}
	_, ok := s.atFloor[c.ID]
	return ok && c.CreatedAt.Equal(s.floor)
}

// evict forgets c. Callers evict in ascending creation order.
func (s *Store) evict(c domain.Comment) {
	delete(s.index, c.ID)
	if !s.evicted || c.CreatedAt.After(s.floor) {
		s.evicted = true
		s.floor = c.CreatedAt
		clear(s.atFloor)
	}
	s.atFloor[c.ID] = struct{}{}
}

// All returns a snapshot of the contents, oldest first.
func (s *Store) All() []domain.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Comment, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports the number of retained comments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Contains reports whether a comment ID is retained.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// Limit reports the retention bound.
func (s *Store) Limit() int { return s.limit }
