package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlist-go/internal/analytics"
	"github.com/serroba/shortlist-go/internal/catalog"
	"github.com/serroba/shortlist-go/internal/handlers"
	"github.com/serroba/shortlist-go/internal/shortlist"
	"github.com/serroba/shortlist-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const baseURL = "http://localhost:8888"

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

type recordingPublishers struct {
	mu      sync.Mutex
	created []*analytics.ShortlistCreatedEvent
	viewed  []*analytics.ShortlistViewedEvent
	err     error
}

func (r *recordingPublishers) publishers() analytics.Publishers {
	return analytics.Publishers{
		Created: func(_ context.Context, e *analytics.ShortlistCreatedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.created = append(r.created, e)

			return r.err
		},
		Viewed: func(_ context.Context, e *analytics.ShortlistViewedEvent) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.viewed = append(r.viewed, e)

			return r.err
		},
	}
}

func newService(t *testing.T, s shortlist.Store) *shortlist.Service {
	t.Helper()

	cat, err := catalog.Default()
	require.NoError(t, err)

	return shortlist.NewService(
		cat, s, shortlist.NewSlugGenerator(shortlist.DefaultSlugLength, zap.NewNop()), 0, zap.NewNop(),
	)
}

func newRouter(h *handlers.ShortlistHandler) http.Handler {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	handlers.RegisterRoutes(api, h)

	return router
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestCreateShortlist(t *testing.T) {
	t.Run("stores the shortlist and returns the slug", func(t *testing.T) {
		pubs := &recordingPublishers{}
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL+"/", pubs.publishers(), zap.NewNop())
		router := newRouter(h)

		w := do(t, router, http.MethodPost, "/shortlist", `{"ids":["surrey-port-kells","white-rock-east-beach"]}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		body := decode(t, w)
		slug, _ := body["slug"].(string)

		assert.Equal(t, true, body["success"])
		assert.Len(t, slug, shortlist.DefaultSlugLength)
		assert.EqualValues(t, 604800, body["ttlSeconds"])
		assert.Equal(t, baseURL+"/shortlist?id="+slug, w.Header().Get("Location"))

		require.Len(t, pubs.created, 1)
		assert.Equal(t, slug, pubs.created[0].Slug)
		assert.Equal(t, []string{"surrey-port-kells", "white-rock-east-beach"}, pubs.created[0].ListingIDs)
	})

	t.Run("accepts listing references", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"listings":[{"id":"abbotsford-mill-lake"}]}`)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("accepts listing objects with extra properties", func(t *testing.T) {
		pubs := &recordingPublishers{}
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, pubs.publishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist",
			`{"listings":[{"id":"surrey-port-kells","title":"x","price":1200}],"source":"map"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.Len(t, pubs.created, 1)
		assert.Equal(t, []string{"surrey-port-kells"}, pubs.created[0].ListingIDs)
	})

	t.Run("ignores null and blank ids", func(t *testing.T) {
		pubs := &recordingPublishers{}
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, pubs.publishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":["surrey-port-kells",null,"  "]}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.Len(t, pubs.created, 1)
		assert.Equal(t, []string{"surrey-port-kells"}, pubs.created[0].ListingIDs)
	})

	t.Run("empty ids are not replaced by listings", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":[],"listings":[{"id":"surrey-port-kells"}]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shortlist.MsgNoIDs, decode(t, w)["error"])
	})

	t.Run("rejects unknown ids with the offending id", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":["surrey-port-kells","nope"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Invalid listing id: nope"}`, w.Body.String())
	})

	t.Run("rejects an empty request", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shortlist.MsgNoIDs, decode(t, w)["error"])
	})

	t.Run("reports an unavailable store", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, failingStore{}), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":["surrey-port-kells"]}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Shortlist sharing is temporarily unavailable."}`, w.Body.String())
	})

	t.Run("logs and ignores publish failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.ErrorLevel)
		pubs := &recordingPublishers{err: errors.New("stream down")}
		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, pubs.publishers(), zap.New(core))

		w := do(t, newRouter(h), http.MethodPost, "/shortlist", `{"ids":["surrey-port-kells"]}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, logs.FilterMessage("failed to publish analytics event").Len())
	})
}

func TestGetShortlist(t *testing.T) {
	setup := func(t *testing.T, pubs *recordingPublishers) (http.Handler, string) {
		t.Helper()

		h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, pubs.publishers(), zap.NewNop())
		router := newRouter(h)

		w := do(t, router, http.MethodPost, "/shortlist", `{"ids":["langley-willoughby-towncentre","surrey-port-kells"]}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		slug, _ := decode(t, w)["slug"].(string)

		return router, slug
	}

	t.Run("returns the stored listings in order", func(t *testing.T) {
		pubs := &recordingPublishers{}
		router, slug := setup(t, pubs)

		w := do(t, router, http.MethodGet, "/shortlist?id="+slug, "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Slug     string                 `json:"slug"`
			Count    int                    `json:"count"`
			Listings []shortlist.ListingRef `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		assert.Equal(t, slug, body.Slug)
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Listings, 2)
		assert.Equal(t, "langley-willoughby-towncentre", body.Listings[0].ID)
		assert.Equal(t, "surrey-port-kells", body.Listings[1].ID)

		require.Len(t, pubs.viewed, 1)
		assert.Equal(t, 2, pubs.viewed[0].Count)
	})

	t.Run("accepts the slug alias", func(t *testing.T) {
		router, slug := setup(t, &recordingPublishers{})

		w := do(t, router, http.MethodGet, "/shortlist?slug="+slug, "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("requires an id", func(t *testing.T) {
		router, _ := setup(t, &recordingPublishers{})

		w := do(t, router, http.MethodGet, "/shortlist", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Missing shortlist id."}`, w.Body.String())
	})

	t.Run("returns not found for unknown slugs", func(t *testing.T) {
		pubs := &recordingPublishers{}
		router, _ := setup(t, pubs)

		w := do(t, router, http.MethodGet, "/shortlist?id=doesnotexist0000", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shortlist.MsgNotFound, decode(t, w)["error"])
		assert.Empty(t, pubs.viewed)
	})

	t.Run("reports an unavailable store", func(t *testing.T) {
		h := handlers.NewShortlistHandler(newService(t, failingStore{}), baseURL, analytics.DiscardPublishers(), zap.NewNop())

		w := do(t, newRouter(h), http.MethodGet, "/shortlist?id=abc", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, shortlist.MsgGetFailed, decode(t, w)["error"])
	})
}

func TestRequestMetaFlowsIntoEvents(t *testing.T) {
	pubs := &recordingPublishers{}
	h := handlers.NewShortlistHandler(newService(t, store.NewMemoryStore()), baseURL, pubs.publishers(), zap.NewNop())

	ctx := handlers.ContextWithRequestMeta(context.Background(), handlers.RequestMeta{
		ClientIP:  "203.0.113.7",
		UserAgent: "TestAgent/1.0",
		Referrer:  "https://example.com/listings/",
	})

	req := &handlers.CreateShortlistRequest{}
	req.Body.IDs = []any{"surrey-port-kells"}

	created, err := h.CreateShortlist(ctx, req)
	require.NoError(t, err)

	_, err = h.GetShortlist(ctx, &handlers.GetShortlistRequest{ID: created.Body.Slug})
	require.NoError(t, err)

	require.Len(t, pubs.created, 1)
	assert.Equal(t, "203.0.113.7", pubs.created[0].ClientIP)
	require.Len(t, pubs.viewed, 1)
	assert.Equal(t, "https://example.com/listings/", pubs.viewed[0].Referrer)
}

func TestRequestMetaFromContext_Empty(t *testing.T) {
	assert.Equal(t, handlers.RequestMeta{}, handlers.RequestMetaFromContext(context.Background()))
}
