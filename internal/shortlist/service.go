package shortlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shortlist-go/internal/catalog"
	"go.uber.org/zap"
)

// Catalog resolves listing ids to their current attributes.
type Catalog interface {
	Lookup(id string) (catalog.Listing, bool)
}

// Service shares shortlists and resolves them back by slug.
type Service struct {
	catalog      Catalog
	store        Store
	generateSlug SlugGenerator
	ttl          time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a shortlist service. A ttl under one second falls back to DefaultTTL.
func NewService(
	cat Catalog,
	store Store,
	generator SlugGenerator,
	ttl time.Duration,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if ttl < time.Second {
		ttl = DefaultTTL
	}

	s := &Service{
		catalog:      cat,
		store:        store,
		generateSlug: generator,
		ttl:          ttl,
		now:          time.Now,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// TTL returns the lifetime given to new shortlists.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Create validates the requested ids, snapshots the matching listings and
// persists a new record. Nothing is written unless every id is valid.
func (s *Service) Create(ctx context.Context, requested []string) (*Record, error) {
	ids, err := s.validate(requested)
	if err != nil {
		return nil, err
	}

	listings := make([]ListingRef, 0, len(ids))

	for _, id := range ids {
		l, _ := s.catalog.Lookup(id)
		listings = append(listings, SnapshotOf(l))
	}

	createdAt := s.now().UTC()
	record := &Record{
		Slug:       Slug(s.generateSlug()),
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(s.ttl),
		TTLSeconds: s.ttlSeconds(),
		Listings:   listings,
		Meta: Meta{
			Count: len(listings),
			IDs:   ids,
		},
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode shortlist: %w", err)
	}

	if err = s.store.Put(ctx, record.Slug.Key(), payload, s.ttl); err != nil {
		s.logger.Error("failed to persist shortlist",
			zap.String("slug", string(record.Slug)),
			zap.Int("count", len(listings)),
			zap.Error(err),
		)

		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return record, nil
}

// Get returns the live record for slug. Expired and unknown slugs both yield ErrNotFound.
func (s *Service) Get(ctx context.Context, slug string) (*Record, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrMissingSlug
	}

	payload, err := s.store.Get(ctx, Slug(slug).Key())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		s.logger.Error("failed to read shortlist", zap.String("slug", slug), zap.Error(err))

		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var record Record
	if err = json.Unmarshal(payload, &record); err != nil {
		s.logger.Error("failed to decode stored shortlist", zap.String("slug", slug), zap.Error(err))

		return nil, fmt.Errorf("%w: decode shortlist: %w", ErrUnavailable, err)
	}

	if record.Expired(s.now()) {
		return nil, ErrNotFound
	}

	if record.Slug == "" {
		record.Slug = Slug(slug)
	}

	if record.Listings == nil {
		record.Listings = []ListingRef{}
	}

	if record.TTLSeconds <= 0 {
		record.TTLSeconds = s.ttlSeconds()
	}

	return &record, nil
}

// validate applies the share rules in order and returns the deduplicated ids.
func (s *Service) validate(requested []string) ([]string, error) {
	trimmed := make([]string, 0, len(requested))

	for _, id := range requested {
		if id = strings.TrimSpace(id); id != "" {
			trimmed = append(trimmed, id)
		}
	}

	if len(trimmed) == 0 {
		return nil, invalid(MsgNoIDs)
	}

	// Checked before dedup: 21 copies of one id are still rejected.
	if len(trimmed) > MaxListings {
		return nil, invalid(MsgTooMany)
	}

	seen := make(map[string]struct{}, len(trimmed))
	ids := make([]string, 0, len(trimmed))

	for _, id := range trimmed {
		if _, dup := seen[id]; dup {
			continue
		}

		if _, ok := s.catalog.Lookup(id); !ok {
			return nil, invalid(MsgInvalidID + id)
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, invalid(MsgNoValidIDs)
	}

	return ids, nil
}

func (s *Service) ttlSeconds() int {
	return int(s.ttl / time.Second)
}
