package container

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/serroba/shortlist-go/internal/catalog"
	"github.com/serroba/shortlist-go/internal/health"
	"github.com/serroba/shortlist-go/internal/ratelimit"
	"github.com/serroba/shortlist-go/internal/shortlist"
	"github.com/serroba/shortlist-go/internal/store"
	"go.uber.org/zap"
)

// rateLimitRetention bounds how long idle in-memory rate limit counters are kept.
const rateLimitRetention = 24 * time.Hour

// Repository is the selected shortlist backend.
type Repository struct {
	Store shortlist.Store
	// Purger is nil when the backend expires entries natively.
	Purger store.Purger
	Checks map[string]health.Checker
}

// CatalogPackage provides the listing inventory.
func CatalogPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*catalog.Catalog, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			cat *catalog.Catalog
			err error
		)

		if opts.CatalogPath != "" {
			cat, err = catalog.LoadFile(opts.CatalogPath)
		} else {
			cat, err = catalog.Default()
		}

		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}

		logger.Info("catalog loaded", zap.Int("listings", cat.Len()))

		return cat, nil
	})
}

// RepositoryPackage provides the shortlist backend named by Options.Store.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch opts.Store {
		case BackendMemory:
			s := store.NewMemoryStore()

			return &Repository{Store: s, Purger: s, Checks: map[string]health.Checker{}}, nil

		case BackendRedis:
			client := do.MustInvoke[*RedisClient](i).Client

			return &Repository{
				Store:  store.NewRedisStore(client, ""),
				Checks: map[string]health.Checker{"redis": health.NewRedisChecker(client)},
			}, nil

		case BackendPostgres:
			pool := do.MustInvoke[*PostgresPool](i)
			pg := store.NewPostgresStore(pool.Pool)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := pg.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("ensure schema: %w", err)
			}

			if opts.CacheTTLSeconds <= 0 {
				return &Repository{Store: pg, Purger: pg, Checks: map[string]health.Checker{"postgres": pg}}, nil
			}

			client := do.MustInvoke[*RedisClient](i).Client
			cached := store.NewCachedStore(pg, client, time.Duration(opts.CacheTTLSeconds)*time.Second, logger)

			return &Repository{
				Store:  cached,
				Purger: cached,
				Checks: map[string]health.Checker{
					"postgres": pg,
					"redis":    health.NewRedisChecker(client),
				},
			}, nil

		default:
			return nil, fmt.Errorf("unknown store backend %q", opts.Store)
		}
	})
}

// ServicePackage provides the shortlist service.
func ServicePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortlist.Service, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		cat := do.MustInvoke[*catalog.Catalog](i)
		repo := do.MustInvoke[*Repository](i)

		generator := shortlist.NewSlugGenerator(opts.SlugLength, logger)

		return shortlist.NewService(cat, repo.Store, generator, opts.TTL(), logger), nil
	})
}

// SweeperPackage provides the background sweeper for stores that need
// explicit cleanup. It is started on first invocation.
func SweeperPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.Sweeper, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		repo := do.MustInvoke[*Repository](i)

		var purgers store.Purgers

		if repo.Purger != nil {
			purgers = append(purgers, repo.Purger)
		}

		if mem, ok := do.MustInvoke[ratelimit.Store](i).(*store.RateLimitMemoryStore); ok {
			purgers = append(purgers, store.PurgeFunc(func(ctx context.Context) (int64, error) {
				return int64(mem.Purge(ctx, rateLimitRetention)), nil
			}))
		}

		sweeper := store.NewSweeper(purgers, time.Duration(opts.SweepIntervalSeconds)*time.Second, logger)
		if len(purgers) > 0 {
			sweeper.Start(context.Background())
		}

		return sweeper, nil
	})
}
