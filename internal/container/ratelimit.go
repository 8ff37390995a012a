package container

import (
	"fmt"

	"github.com/samber/do"
	"github.com/serroba/shortlist-go/internal/ratelimit"
	"github.com/serroba/shortlist-go/internal/store"
)

// RateLimitPackage provides the rate limit counter store and policy limiter.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.RateLimitStore {
		case BackendMemory:
			return store.NewRateLimitMemoryStore(), nil
		case BackendRedis:
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisClient](i).Client), nil
		default:
			return nil, fmt.Errorf("unknown rate limit store %q", opts.RateLimitStore)
		}
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})
}
