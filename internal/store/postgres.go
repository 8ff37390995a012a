package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlist-go/internal/shortlist"
)

const createEntriesTable = `
	CREATE TABLE IF NOT EXISTS shortlist_entries (
		key        TEXT PRIMARY KEY,
		value      JSON NOT NULL,
		expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS shortlist_entries_expires_at_idx ON shortlist_entries (expires_at);
`

// PostgresStore is a PostgreSQL implementation of shortlist.Store.
// Rows past expires_at are invisible to Get and removed by Purge.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the entries table if it does not exist.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, createEntriesTable)

	return err
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO shortlist_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`

	var expiresAt *time.Time

	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := p.pool.Exec(ctx, query, key, value, expiresAt)

	return err
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM shortlist_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())
	`

	var value []byte

	if err := p.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlist.ErrNotFound
		}

		return nil, err
	}

	return value, nil
}

// Purge deletes expired rows and returns how many were removed.
func (p *PostgresStore) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM shortlist_entries WHERE expires_at <= now()`)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Compile-time check.
var _ shortlist.Store = (*PostgresStore)(nil)
