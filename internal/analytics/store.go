package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveShortlistCreated(ctx context.Context, event *ShortlistCreatedEvent) error
	SaveShortlistViewed(ctx context.Context, event *ShortlistViewedEvent) error
}
