package middleware

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlist-go/internal/ratelimit"
	"go.uber.org/zap"
)

// PolicyRateLimiter returns a huma middleware enforcing rate limits per client.
//
// Operations may carry a ratelimit.EndpointConfig under ratelimit.MetadataKey to
// disable limiting, pin a scope, or declare their own limits. Limits declared
// on an operation are counted per operation, so a GET and a POST on the same
// path never share a counter.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		var (
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		key := clientKey(ctx)
		cfg, ok := ratelimit.EndpointConfigFrom(ctx.Operation())

		switch {
		case ok && cfg.Disabled:
			next(ctx)

			return
		case ok && len(cfg.Limits) > 0:
			exceeded, err = limiter.AllowLimits(ctx.Context(), key, operationKey(ctx.Operation()), cfg.Limits)
		default:
			exceeded, err = limiter.Allow(ctx.Context(), key, ratelimit.Scopes(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if exceeded != nil {
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(ctx)),
				zap.String("method", ctx.Method()),
				zap.String("scope", string(exceeded.Scope)),
				zap.Int64("count", exceeded.Count),
				zap.Int64("max", exceeded.Config.Max),
				zap.Duration("window", exceeded.Config.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", strconv.FormatInt(int64(exceeded.Config.Window.Seconds()), 10))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded: "+exceeded.String())

			return
		}

		next(ctx)
	}
}

// operationKey identifies an operation by its ID, or by method and path when it has none.
func operationKey(op *huma.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}

	return op.Method + " " + op.Path
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
