// Package shortlist creates and resolves shareable, time-limited collections of listings.
package shortlist

import (
	"net/url"
	"time"

	"github.com/serroba/shortlist-go/internal/catalog"
)

// MaxListings is the most listings a single shortlist may hold.
const MaxListings = 20

// DefaultTTL is how long a shared shortlist stays readable when no TTL is configured.
const DefaultTTL = 7 * 24 * time.Hour

// KeyPrefix namespaces shortlist records in the backing store.
const KeyPrefix = "shortlist:"

// Slug is the public identifier of a shared shortlist.
type Slug string

// Key returns the store key for the slug.
func (s Slug) Key() string {
	return KeyPrefix + string(s)
}

// ListingRef is a snapshot of a catalog entry taken when the shortlist was shared.
type ListingRef struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Type         string   `json:"type"`
	City         string   `json:"city"`
	Price        float64  `json:"price"`
	PriceDisplay *string  `json:"priceDisplay"`
	Address      string   `json:"address"`
	Details      string   `json:"details"`
	Cover        string   `json:"cover"`
	WebP         string   `json:"webp"`
	Gallery      []string `json:"gallery"`
	URL          string   `json:"url"`
}

// SnapshotOf copies the shareable attributes of a listing.
func SnapshotOf(l catalog.Listing) ListingRef {
	ref := ListingRef{
		ID:      l.ID,
		Title:   l.Title,
		Type:    l.Type,
		City:    l.City,
		Price:   l.Price,
		Address: l.Address,
		Details: l.Details,
		Cover:   l.Cover,
		WebP:    l.WebP,
		Gallery: make([]string, len(l.Gallery)),
		URL:     "/listings/" + url.PathEscape(l.ID) + "/",
	}

	copy(ref.Gallery, l.Gallery)

	if l.PriceDisplay != "" {
		display := l.PriceDisplay
		ref.PriceDisplay = &display
	}

	return ref
}

// Meta carries audit data about the share request.
type Meta struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// Record is the persisted form of a shared shortlist. Records are never
// modified after creation.
type Record struct {
	Slug       Slug         `json:"slug"`
	CreatedAt  time.Time    `json:"createdAt"`
	ExpiresAt  time.Time    `json:"expiresAt"`
	TTLSeconds int          `json:"ttlSeconds"`
	Listings   []ListingRef `json:"listings"`
	Meta       Meta         `json:"meta"`
}

// Expired reports whether the record is past its expiry at now.
// Records without an expiry never expire.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}
