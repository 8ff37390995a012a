package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key over a sliding window.
type Store interface {
	// Record registers a hit for key and returns the number of hits inside
	// the trailing window, including this one.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
