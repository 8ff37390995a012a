package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Purger removes expired entries from a store.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// PurgeFunc adapts a function to Purger.
type PurgeFunc func(ctx context.Context) (int64, error)

func (f PurgeFunc) Purge(ctx context.Context) (int64, error) {
	return f(ctx)
}

// Purgers purges each store in turn and reports the total removed.
type Purgers []Purger

func (p Purgers) Purge(ctx context.Context) (int64, error) {
	var (
		total int64
		errs  []error
	)

	for _, purger := range p {
		n, err := purger.Purge(ctx)
		total += n
		errs = append(errs, err)
	}

	return total, errors.Join(errs...)
}

// Sweeper periodically purges expired entries. Reads never depend on it:
// expiry is always re-checked when a record is loaded.
type Sweeper struct {
	purger   Purger
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a sweeper that runs every interval once started.
func NewSweeper(purger Purger, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		purger:   purger,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in the background. A sweeper with a
// non-positive interval never starts.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)

	go s.loop(ctx)
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.purger.Purge(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired shortlists", zap.Error(err))

		return
	}

	if removed > 0 {
		s.logger.Debug("purged expired shortlists", zap.Int64("removed", removed))
	}
}

// Shutdown stops the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Shutdown() error {
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done

	return nil
}
