// Package ratelimit throttles share traffic per client with sliding windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitConfig allows at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced for them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy is generous on reads and strict on writes: shortlist pages
// are opened far more often than they are shared.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {{Window: time.Minute, Max: 600}},
			ScopeRead:   {{Window: time.Minute, Max: 300}},
			ScopeWrite: {
				{Window: time.Minute, Max: 20},
				{Window: time.Hour, Max: 200},
			},
		},
	}
}

// LimitExceeded describes the limit that rejected a request.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

func (e *LimitExceeded) String() string {
	return fmt.Sprintf("%s scope, %d/%d requests in %s", e.Scope, e.Count, e.Config.Max, e.Config.Window)
}

// PolicyLimiter enforces a Policy against a Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against every limit of every scope and stops
// at the first one exceeded.
func (l *PolicyLimiter) Allow(ctx context.Context, client string, scopes []Scope) (*LimitExceeded, error) {
	for _, scope := range scopes {
		exceeded, err := l.check(ctx, client+":"+string(scope), scope, l.policy.Limits[scope])
		if err != nil || exceeded != nil {
			return exceeded, err
		}
	}

	return nil, nil
}

// AllowLimits applies explicit limits under the given operation key instead of the policy.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context, client, operation string, limits []LimitConfig,
) (*LimitExceeded, error) {
	return l.check(ctx, client+":route:"+operation, ScopeRoute, limits)
}

func (l *PolicyLimiter) check(
	ctx context.Context, prefix string, scope Scope, limits []LimitConfig,
) (*LimitExceeded, error) {
	for _, limit := range limits {
		key := fmt.Sprintf("%s:%d", prefix, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, key, limit.Window)
		if err != nil {
			return nil, err
		}

		if count > limit.Max {
			return &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return nil, nil
}
