package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/account"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/metrics"
	"bookcatalog/internal/testutil"
)

func newTestServer(t *testing.T, ready func(context.Context) error) (*book.MockRepository, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	bookRepo := book.NewMockRepository(ctrl)
	accountRepo := account.NewMockRepository(ctrl)

	cfg := &config.Config{
		Server:    config.ServerConfig{MaxBodyBytes: 1 << 20},
		Auth:      config.AuthConfig{JWTSecret: testutil.TestSecret},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	t.Cleanup(limiter.Stop)

	h := newRouter(cfg, limiter, ready,
		book.NewHTTPHandler(book.NewService(bookRepo, nil, book.DefaultWeights)),
		account.NewHTTPHandler(account.NewService(accountRepo, testutil.TestSecret, 0)),
	)
	return bookRepo, h
}

func okReady(context.Context) error { return nil }

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRouter_Health(t *testing.T) {
	_, h := newTestServer(t, okReady)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NotReady(t *testing.T) {
	_, h := newTestServer(t, func(context.Context) error { return errors.New("down") })

	w := serve(h, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	_, h := newTestServer(t, okReady)

	serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bookcatalog_http_requests_total")
}

func TestRouter_ClosedRoutesNeedToken(t *testing.T) {
	_, h := newTestServer(t, okReady)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/book/"},
		{http.MethodPost, "/book"},
		{http.MethodDelete, "/book/isbn?isbn=9780441172719"},
		{http.MethodPost, "/credentials/changePassword"},
		{http.MethodGet, "/jwt_test"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(h, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/jwt_test", nil, "garbage"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_OpenRoutesNeedNoToken(t *testing.T) {
	repo, h := newTestServer(t, okReady)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/book/isbn", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.EXPECT().AuthorIDs(gomock.Any(), "herbert").Return([]int{1}, nil)
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return([]book.Row{{ISBN13: 9780441172719, Title: "Dune"}}, nil)
	w = serve(h, httptest.NewRequest(http.MethodGet, "/book/herbert", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_PanicIsLoggedAndCounted(t *testing.T) {
	repo, h := newTestServer(t, okReady)
	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/book/isbn", "500")
	before := promtestutil.ToFloat64(counter)

	repo.EXPECT().GetByISBN(gomock.Any(), int64(9780441172719)).
		DoAndReturn(func(_ context.Context, _ int64) (book.Row, error) { panic("boom") })

	w := serve(h, httptest.NewRequest(http.MethodGet, "/book/isbn?isbn=9780441172719", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, httpx.MsgServerError, testutil.DecodeBody(w)["message"])
	assert.Equal(t, before+1, promtestutil.ToFloat64(counter))
}

func TestRouter_UnknownRoutesUseErrorEnvelope(t *testing.T) {
	_, h := newTestServer(t, okReady)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/nowhere/at/all", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", testutil.DecodeBody(w)["code"])

	w = serve(h, httptest.NewRequest(http.MethodPatch, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "METHOD_NOT_ALLOWED", testutil.DecodeBody(w)["code"])
}
