package ratelimit

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Scope groups requests that share a limit.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeRead   Scope = "read"
	ScopeWrite  Scope = "write"
	// ScopeRoute tags limits declared directly on an operation.
	ScopeRoute Scope = "route"
)

// MetadataKey is the huma operation metadata key holding an EndpointConfig.
const MetadataKey = "rateLimit"

// EndpointConfig customizes rate limiting for one operation.
//
// When Limits is set, only those limits apply and Scope is ignored.
// Otherwise Scope, if set, replaces the method-derived scope.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// EndpointConfigFrom returns the operation's EndpointConfig, if any.
func EndpointConfigFrom(op *huma.Operation) (EndpointConfig, bool) {
	if op == nil || op.Metadata == nil {
		return EndpointConfig{}, false
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)

	return cfg, ok
}

// Scopes returns the scopes a request falls under: always global, plus
// read or write from the configured scope or the HTTP method.
func Scopes(ctx huma.Context) []Scope {
	if cfg, ok := EndpointConfigFrom(ctx.Operation()); ok && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	switch ctx.Method() {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}
