package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/shortlist-go/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newContactRouter(logger *zap.Logger) http.Handler {
	router := chi.NewMux()
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	handlers.RegisterContactRoutes(api, handlers.NewContactHandler(logger))

	return router
}

func postContact(router http.Handler, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestSubmitContact(t *testing.T) {
	t.Run("accepts a JSON submission and logs it", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		router := newContactRouter(zap.New(core))

		w := postContact(router, "application/json",
			`{"name":" Ada <b>Lovelace</b> ","email":"ada@example.com","message":"<script>x</script>Hello"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"success":true}`, w.Body.String())

		entries := logs.FilterMessage("contact form submission").All()
		require.Len(t, entries, 1)

		fields := entries[0].ContextMap()
		assert.Equal(t, "Ada Lovelace", fields["name"])
		assert.Equal(t, "ada@example.com", fields["email"])
		assert.Equal(t, "xHello", fields["message"])
	})

	t.Run("accepts a form encoded submission", func(t *testing.T) {
		router := newContactRouter(zap.NewNop())

		w := postContact(router, "application/x-www-form-urlencoded",
			"name=Ada&email=ada%40example.com&message=Hi+there")

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		router := newContactRouter(zap.NewNop())

		cases := map[string]string{
			"missing name":        `{"email":"ada@example.com","message":"Hi"}`,
			"markup only name":    `{"name":"<b></b>","email":"ada@example.com","message":"Hi"}`,
			"malformed email":     `{"name":"Ada","email":"ada@example","message":"Hi"}`,
			"email with a space":  `{"name":"Ada","email":"ada @example.com","message":"Hi"}`,
			"blank message":       `{"name":"Ada","email":"ada@example.com","message":"   "}`,
			"malformed json body": `{"name":`,
		}

		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				w := postContact(router, "application/json", body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.JSONEq(t, `{"success":false,"error":"Invalid input"}`, w.Body.String())
			})
		}
	})

	t.Run("other methods are not allowed", func(t *testing.T) {
		router := newContactRouter(zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"success":false,"error":"Method Not Allowed"}`, w.Body.String())
	})
}

func TestParseContactMessage(t *testing.T) {
	t.Run("reads JSON when the content type says so", func(t *testing.T) {
		msg, err := handlers.ParseContactMessage("application/json; charset=utf-8",
			[]byte(`{"name":"Ada","email":"ada@example.com","message":"Hi <i>there"}`))

		require.NoError(t, err)
		assert.Equal(t, handlers.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hi there"}, msg)
	})

	t.Run("reads form data otherwise", func(t *testing.T) {
		msg, err := handlers.ParseContactMessage("", []byte("name=Ada&email=ada%40example.com&message=Hi"))

		require.NoError(t, err)
		assert.Equal(t, handlers.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hi"}, msg)
	})

	t.Run("an empty JSON body has no fields", func(t *testing.T) {
		msg, err := handlers.ParseContactMessage("application/json", nil)

		require.NoError(t, err)
		assert.Equal(t, handlers.ContactMessage{}, msg)
	})
}
