// Package dedup records which notifications have already been sent.
package dedup

import (
	"sync"

	"github.com/lysyi3m/courtrss/app/metrics"
)

// Store is an append-only set of notification keys shared by all pollers.
type Store struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewStore() *Store {
	return &Store{
		seen: make(map[string]struct{}),
	}
}

// CheckAndMark records key and reports whether this call was the first to
// see it. Only one caller ever gets true for a given key.
func (s *Store) CheckAndMark(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	metrics.DedupKeys.Set(float64(len(s.seen)))

	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}
