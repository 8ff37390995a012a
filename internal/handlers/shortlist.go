package handlers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/serroba/shortlist-go/internal/analytics"
	"github.com/serroba/shortlist-go/internal/messaging"
	"github.com/serroba/shortlist-go/internal/shortlist"
	"go.uber.org/zap"
)

// ShortlistService creates and resolves shared shortlists.
type ShortlistService interface {
	Create(ctx context.Context, requested []string) (*shortlist.Record, error)
	Get(ctx context.Context, slug string) (*shortlist.Record, error)
}

// ShortlistHandler serves the share endpoints.
type ShortlistHandler struct {
	service        ShortlistService
	baseURL        string
	publishCreated messaging.Publish[analytics.ShortlistCreatedEvent]
	publishViewed  messaging.Publish[analytics.ShortlistViewedEvent]
	now            func() time.Time
	logger         *zap.Logger
}

// NewShortlistHandler creates a handler. baseURL prefixes the Location header.
func NewShortlistHandler(
	service ShortlistService,
	baseURL string,
	publishers analytics.Publishers,
	logger *zap.Logger,
) *ShortlistHandler {
	return &ShortlistHandler{
		service:        service,
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishCreated: publishers.Created,
		publishViewed:  publishers.Viewed,
		now:            time.Now,
		logger:         logger,
	}
}

type requestMetaKey struct{}

// RequestMeta holds HTTP request metadata for analytics.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

func (h *ShortlistHandler) CreateShortlist(
	ctx context.Context, req *CreateShortlistRequest,
) (*CreateShortlistResponse, error) {
	record, err := h.service.Create(ctx, req.RequestedIDs())
	if err != nil {
		return nil, toAPIError(err, shortlist.MsgCreateFailed)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ShortlistCreatedEvent{
		EventID:    analytics.NewEventID(),
		Slug:       string(record.Slug),
		ListingIDs: record.Meta.IDs,
		TTLSeconds: int64(record.TTLSeconds),
		CreatedAt:  record.CreatedAt,
		ExpiresAt:  record.ExpiresAt,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}

	if err := h.publishCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("slug", event.Slug),
			zap.Error(err),
		)
	}

	resp := &CreateShortlistResponse{}
	resp.Location = h.shareURL(record.Slug)
	resp.Body.Success = true
	resp.Body.Slug = string(record.Slug)
	resp.Body.CreatedAt = record.CreatedAt
	resp.Body.ExpiresAt = record.ExpiresAt
	resp.Body.TTLSeconds = record.TTLSeconds

	return resp, nil
}

func (h *ShortlistHandler) GetShortlist(
	ctx context.Context, req *GetShortlistRequest,
) (*GetShortlistResponse, error) {
	record, err := h.service.Get(ctx, req.SlugParam())
	if err != nil {
		return nil, toAPIError(err, shortlist.MsgGetFailed)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.ShortlistViewedEvent{
		EventID:   analytics.NewEventID(),
		Slug:      string(record.Slug),
		Count:     len(record.Listings),
		ViewedAt:  h.now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publishViewed(ctx, event); err != nil {
		h.logger.Error("failed to publish view event",
			zap.String("slug", event.Slug),
			zap.Error(err),
		)
	}

	resp := &GetShortlistResponse{}
	resp.Body.Slug = string(record.Slug)
	resp.Body.CreatedAt = record.CreatedAt
	resp.Body.ExpiresAt = record.ExpiresAt
	resp.Body.TTLSeconds = record.TTLSeconds
	resp.Body.Count = len(record.Listings)
	resp.Body.Listings = record.Listings

	return resp, nil
}

func (h *ShortlistHandler) shareURL(slug shortlist.Slug) string {
	return h.baseURL + "/shortlist?id=" + url.QueryEscape(string(slug))
}
