// Package analytics describes share lifecycle events and where they end up.
package analytics

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicShortlistCreated = "shortlist.created"
	TopicShortlistViewed  = "shortlist.viewed"
)

// ShortlistCreatedEvent is emitted after a shortlist has been stored.
type ShortlistCreatedEvent struct {
	EventID    string    `json:"eventId"`
	Slug       string    `json:"slug"`
	ListingIDs []string  `json:"listingIds"`
	TTLSeconds int64     `json:"ttlSeconds"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
}

// ShortlistViewedEvent is emitted when a stored shortlist is read.
type ShortlistViewedEvent struct {
	EventID   string    `json:"eventId"`
	Slug      string    `json:"slug"`
	Count     int       `json:"count"`
	ViewedAt  time.Time `json:"viewedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`
}

// NewEventID returns a random event identifier.
func NewEventID() string {
	return uuid.NewString()
}
