package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlist-go/internal/ratelimit"
)

// RegisterRoutes registers the share endpoints with per-endpoint rate limits.
// A bare OPTIONS request on the share path is answered with 200.
func RegisterRoutes(api huma.API, h *ShortlistHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-shortlist",
		Method:        http.MethodPost,
		Path:          "/shortlist",
		Summary:       "Share a shortlist",
		Description:   "Snapshots up to 20 listings and returns a slug that resolves to them until it expires.",
		Tags:          []string{"Shortlists"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
				},
			},
		},
	}, h.CreateShortlist)

	huma.Register(api, huma.Operation{
		OperationID: "get-shortlist",
		Method:      http.MethodGet,
		Path:        "/shortlist",
		Summary:     "Get a shared shortlist",
		Description: "Returns the listing snapshots stored under a slug.",
		Tags:        []string{"Shortlists"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 300},
				},
			},
		},
	}, h.GetShortlist)

	huma.Register(api, huma.Operation{
		OperationID:   "shortlist-options",
		Method:        http.MethodOptions,
		Path:          "/shortlist",
		Summary:       "Shortlist options",
		Hidden:        true,
		DefaultStatus: http.StatusOK,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, func(context.Context, *struct{}) (*struct{}, error) {
		return &struct{}{}, nil
	})
}

// RegisterContactRoutes registers the contact form endpoint.
func RegisterContactRoutes(api huma.API, h *ContactHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "submit-contact",
		Method:      http.MethodPost,
		Path:        "/contact",
		Summary:     "Submit the contact form",
		Description: "Accepts name, email and message as JSON or form data.",
		Tags:        []string{"Contact"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 5},
					{Window: time.Hour, Max: 20},
				},
			},
		},
	}, h.SubmitContact)
}
