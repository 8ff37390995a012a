package container_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlist-go/internal/container"
	"github.com/serroba/shortlist-go/internal/ratelimit"
	"github.com/serroba/shortlist-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() *container.Options {
	return &container.Options{
		Port:                 8888,
		Store:                container.BackendMemory,
		TTLSeconds:           604800,
		SlugLength:           16,
		SweepIntervalSeconds: 60,
		RateLimitStore:       container.BackendMemory,
		LogFormat:            "console",
		LogLevel:             "error",
		CORSOrigins:          "*",
	}
}

func newInjector(t *testing.T, opts *container.Options) *do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.CatalogPackage(injector)
	container.RepositoryPackage(injector)
	container.ServicePackage(injector)
	container.SweeperPackage(injector)
	container.RateLimitPackage(injector)
	container.PublisherGroupPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func newServer(t *testing.T) http.Handler {
	t.Helper()

	injector := newInjector(t, testOptions())
	_ = do.MustInvoke[huma.API](injector)

	return do.MustInvoke[*chi.Mux](injector)
}

func TestHTTPPackage_ShareRoundTrip(t *testing.T) {
	router := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/shortlist",
		strings.NewReader(`{"ids":["surrey-port-kells","white-rock-east-beach","surrey-port-kells"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var created struct {
		Success bool   `json:"success"`
		Slug    string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, "http://localhost:8888/shortlist?id="+created.Slug, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shortlist?id="+created.Slug, nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Count    int `json:"count"`
		Listings []struct {
			ID string `json:"id"`
		} `json:"listings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "surrey-port-kells", got.Listings[0].ID)
	assert.Equal(t, "white-rock-east-beach", got.Listings[1].ID)
}

func TestHTTPPackage_Preflight(t *testing.T) {
	router := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/shortlist", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestHTTPPackage_BareOptions(t *testing.T) {
	router := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/shortlist", nil)
	req.Header.Set("Origin", "https://example.com")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHTTPPackage_Contact(t *testing.T) {
	router := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/contact",
		strings.NewReader("name=Ada&email=ada%40example.com&message=Hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/shortlist", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Method Not Allowed"}`, w.Body.String())
}

func TestHTTPPackage_CreateIsRateLimited(t *testing.T) {
	router := newServer(t)

	status := 0

	for range 11 {
		req := httptest.NewRequest(http.MethodPost, "/shortlist", strings.NewReader(`{"ids":["surrey-port-kells"]}`))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		status = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestHTTPPackage_ViewsDoNotBlockCreates(t *testing.T) {
	router := newServer(t)

	for range 12 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/shortlist?id=nope", nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/shortlist", strings.NewReader(`{"ids":["surrey-port-kells"]}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHTTPPackage_Health(t *testing.T) {
	router := newServer(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRepositoryPackage(t *testing.T) {
	t.Run("memory backend is swept", func(t *testing.T) {
		injector := newInjector(t, testOptions())

		repo := do.MustInvoke[*container.Repository](injector)

		assert.IsType(t, &store.MemoryStore{}, repo.Store)
		assert.NotNil(t, repo.Purger)
		assert.NotNil(t, do.MustInvoke[*store.Sweeper](injector))
	})

	t.Run("redis backends share one client", func(t *testing.T) {
		opts := testOptions()
		opts.Store = container.BackendRedis
		opts.RateLimitStore = container.BackendRedis
		opts.RedisAddr = "127.0.0.1:1"
		injector := do.New()
		do.ProvideValue(injector, opts)
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.RepositoryPackage(injector)
		container.RateLimitPackage(injector)

		repo := do.MustInvoke[*container.Repository](injector)
		limitStore := do.MustInvoke[ratelimit.Store](injector)

		assert.IsType(t, &store.RedisStore{}, repo.Store)
		assert.Contains(t, repo.Checks, "redis")
		assert.IsType(t, &store.RateLimitRedisStore{}, limitStore)
		assert.NoError(t, injector.Shutdown())
	})

	t.Run("unknown backend fails", func(t *testing.T) {
		opts := testOptions()
		opts.Store = "etcd"
		injector := newInjector(t, opts)

		_, err := do.Invoke[*container.Repository](injector)

		assert.ErrorContains(t, err, `unknown store backend "etcd"`)
	})
}

func TestOptions(t *testing.T) {
	opts := testOptions()

	assert.Equal(t, "http://localhost:8888", opts.PublicBaseURL())

	opts.BaseURL = "https://homes.example.com/"
	assert.Equal(t, "https://homes.example.com", opts.PublicBaseURL())

	opts.CORSOrigins = " https://a.example.com, ,https://b.example.com"
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, opts.AllowedOrigins())

	opts.CORSOrigins = ""
	assert.Equal(t, []string{"*"}, opts.AllowedOrigins())
}

func TestNewLogger(t *testing.T) {
	logger, err := container.NewLogger("json", "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = container.NewLogger("console", "loud")
	assert.Error(t, err)
}
