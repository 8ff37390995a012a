package store

import (
	"context"

	"github.com/serroba/shortlist-go/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a logging-only analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveShortlistCreated(_ context.Context, event *analytics.ShortlistCreatedEvent) error {
	n.logger.Info("shortlist created event received",
		zap.String("event_id", event.EventID),
		zap.String("slug", event.Slug),
		zap.Int("count", len(event.ListingIDs)),
		zap.Time("expires_at", event.ExpiresAt),
	)

	return nil
}

func (n *Noop) SaveShortlistViewed(_ context.Context, event *analytics.ShortlistViewedEvent) error {
	n.logger.Info("shortlist viewed event received",
		zap.String("event_id", event.EventID),
		zap.String("slug", event.Slug),
		zap.Time("viewed_at", event.ViewedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
