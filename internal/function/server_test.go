package function

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopee/internal/config"
	"shopee/internal/function/handlers"
	"shopee/internal/listing"
	"shopee/internal/logger"
	"shopee/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubProducts struct {
	userID    int64
	requestID string
}

func (s *stubProducts) ListProducts(ctx context.Context, req listing.ListRequest) (*listing.ListResult, error) {
	s.userID = req.UserID
	s.requestID = logger.RequestID(ctx)
	return &listing.ListResult{Products: []model.ProductRecord{}}, nil
}

func (s *stubProducts) CountByStatus(_ context.Context, userID int64, _ *int64) (map[string]int, error) {
	s.userID = userID
	return map[string]int{"NORMAL": 1}, nil
}

var _ handlers.ProductService = (*stubProducts)(nil)

func newTestServer(t *testing.T, products handlers.ProductService, log *zap.Logger) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Version = "test"
	return NewServerWithDeps(&config.ServerConfig{Mode: gin.TestMode}, log, &Dependencies{
		Config:   cfg,
		Logger:   log,
		Products: products,
	})
}

func TestServer_RequiresUser(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not a number", "abc", http.StatusUnauthorized},
		{"zero", "0", http.StatusUnauthorized},
		{"valid", "42", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := &stubProducts{}
			srv := newTestServer(t, products, zap.NewNop())

			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/status-counts", nil)
			if tt.header != "" {
				req.Header.Set(HeaderUserID, tt.header)
			}
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, int64(42), products.userID)
			} else {
				assert.Zero(t, products.userID)
			}
		})
	}
}

func TestServer_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	products := &stubProducts{}
	srv := newTestServer(t, products, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set(HeaderUserID, "7")
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-123", products.requestID)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestServer_GeneratesRequestID(t *testing.T) {
	srv := newTestServer(t, &stubProducts{}, zap.NewNop())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, &stubProducts{}, zap.NewNop())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "shopee_http_requests_total"))
}

func TestServer_WithoutProducts(t *testing.T) {
	srv := NewServer(&config.ServerConfig{Mode: gin.TestMode}, nil)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_StartStopDisabled(t *testing.T) {
	srv := NewServer(&config.ServerConfig{Enabled: false, Mode: gin.TestMode}, zap.NewNop())

	assert.NoError(t, srv.Start())
	assert.NoError(t, srv.Stop(context.Background()))
}

func TestServer_StartReportsListenError(t *testing.T) {
	srv := NewServer(&config.ServerConfig{Enabled: true, Host: "127.0.0.1", Port: -1, Mode: gin.TestMode}, zap.NewNop())

	assert.Error(t, srv.Start())
}

func TestWriteTimeoutFor(t *testing.T) {
	assert.Equal(t, readTimeout, writeTimeoutFor(nil))

	cfg := &config.Config{}
	cfg.Pipeline.DeadlineDuration = 30 * time.Second
	assert.Equal(t, 35*time.Second, writeTimeoutFor(&Dependencies{Config: cfg}))
}
