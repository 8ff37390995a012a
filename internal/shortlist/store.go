package shortlist

import (
	"context"
	"time"
)

// Store is the key/value persistence port for shortlist records.
// Implementations must return ErrNotFound for absent keys.
type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
}
