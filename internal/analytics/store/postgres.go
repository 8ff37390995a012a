package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlist-go/internal/analytics"
)

const createEventTables = `
	CREATE TABLE IF NOT EXISTS shortlist_created_events (
		event_id    UUID PRIMARY KEY,
		slug        TEXT NOT NULL,
		listing_ids TEXT[] NOT NULL,
		ttl_seconds BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		client_ip   TEXT,
		user_agent  TEXT
	);
	CREATE TABLE IF NOT EXISTS shortlist_viewed_events (
		event_id   UUID PRIMARY KEY,
		slug       TEXT NOT NULL,
		count      INTEGER NOT NULL,
		viewed_at  TIMESTAMPTZ NOT NULL,
		client_ip  TEXT,
		user_agent TEXT,
		referrer   TEXT
	);
	CREATE INDEX IF NOT EXISTS shortlist_viewed_events_slug_idx ON shortlist_viewed_events (slug);
`

// Postgres persists analytics events. Inserts are idempotent on event_id so
// redelivered messages are harmless.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the event tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, createEventTables)

	return err
}

func (p *Postgres) SaveShortlistCreated(ctx context.Context, event *analytics.ShortlistCreatedEvent) error {
	query := `
		INSERT INTO shortlist_created_events
			(event_id, slug, listing_ids, ttl_seconds, created_at, expires_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Slug,
		event.ListingIDs,
		event.TTLSeconds,
		event.CreatedAt,
		event.ExpiresAt,
		event.ClientIP,
		event.UserAgent,
	)

	return err
}

func (p *Postgres) SaveShortlistViewed(ctx context.Context, event *analytics.ShortlistViewedEvent) error {
	query := `
		INSERT INTO shortlist_viewed_events
			(event_id, slug, count, viewed_at, client_ip, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Slug,
		event.Count,
		event.ViewedAt,
		event.ClientIP,
		event.UserAgent,
		event.Referrer,
	)

	return err
}

// ViewCount returns how many view events were recorded for slug.
func (p *Postgres) ViewCount(ctx context.Context, slug string) (int64, error) {
	var count int64

	err := p.pool.QueryRow(ctx,
		`SELECT count(*) FROM shortlist_viewed_events WHERE slug = $1`, slug,
	).Scan(&count)

	return count, err
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
