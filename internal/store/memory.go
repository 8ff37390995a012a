package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/shortlist-go/internal/shortlist"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-process implementation of shortlist.Store.
// Expired entries are dropped lazily on read or in bulk by Purge.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock creates an in-memory store that reads time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry

	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, shortlist.ErrNotFound
	}

	if entry.expired(m.now()) {
		m.mu.Lock()
		// Re-check: a concurrent Put may have replaced the entry.
		if current, ok := m.entries[key]; ok && current.expired(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()

		return nil, shortlist.ErrNotFound
	}

	return append([]byte(nil), entry.value...), nil
}

// Purge removes every expired entry and returns how many were dropped.
func (m *MemoryStore) Purge(_ context.Context) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64

	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}

	return removed, nil
}

// Len returns the number of entries currently held, including expired ones
// not yet purged.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Compile-time check.
var _ shortlist.Store = (*MemoryStore)(nil)
