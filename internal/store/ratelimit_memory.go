package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlist-go/internal/ratelimit"
)

// RateLimitMemoryStore keeps per-key request timestamps in process memory.
type RateLimitMemoryStore struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	live := prune(s.hits[key], now.Add(-window))
	live = append(live, now)
	s.hits[key] = live

	return int64(len(live)), nil
}

// Purge drops keys whose newest hit is older than maxWindow.
func (s *RateLimitMemoryStore) Purge(_ context.Context, maxWindow time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxWindow)
	removed := 0

	for key, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, key)
			removed++
		}
	}

	return removed
}

// prune drops leading timestamps at or before cutoff. hits is sorted ascending.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}

	return append(hits[:0:0], hits[i:]...)
}

// Compile-time check.
var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
