package container

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/do"
	"github.com/serroba/shortlist-go/internal/analytics"
	"github.com/serroba/shortlist-go/internal/handlers"
	"github.com/serroba/shortlist-go/internal/health"
	"github.com/serroba/shortlist-go/internal/middleware"
	"github.com/serroba/shortlist-go/internal/ratelimit"
	"github.com/serroba/shortlist-go/internal/shortlist"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		router.Use(
			chimw.RequestID,
			middleware.AccessLog(logger),
			chimw.Recoverer,
			cors.Handler(cors.Options{
				AllowedOrigins: opts.AllowedOrigins(),
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type"},
				ExposedHeaders: []string{"Location"},
				MaxAge:         300,
			}),
			chimw.SetHeader("Cache-Control", "no-store"),
		)
		router.MethodNotAllowed(handlers.MethodNotAllowed)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
		service := do.MustInvoke[*shortlist.Service](i)
		publishers := do.MustInvoke[analytics.Publishers](i)
		repo := do.MustInvoke[*Repository](i)

		api := humachi.New(router, huma.DefaultConfig("Shortlist Sharing", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(api, limiter, logger),
		)

		handler := handlers.NewShortlistHandler(service, opts.PublicBaseURL(), publishers, logger)
		handlers.RegisterRoutes(api, handler)
		handlers.RegisterContactRoutes(api, handlers.NewContactHandler(logger))
		health.RegisterRoutes(api, health.NewHandler(repo.Checks))

		return api, nil
	})
}
