package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/infrastructure/metrics"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/routes"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
	"github.com/your-org/campus-delivery-backend/internal/pkg/logger"
)

type checkFunc func() error

func (f checkFunc) Health() error { return f() }

func newTestServer(t *testing.T, checks map[string]HealthChecker) (*Server, *metrics.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "campus-delivery", Version: "test", Environment: "test"},
		Server: config.ServerConfig{Port: "0"},
		JWT:    config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
	registry := metrics.NewRegistry()
	s := NewServer(cfg, logger.Discard(), Dependencies{
		Metrics:       registry,
		Checks:        checks,
		Handlers:      routes.Handlers{},
		Authenticator: auth.NewJWTManager(cfg),
	})
	return s, registry
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	healthy := checkFunc(func() error { return nil })

	s, _ := newTestServer(t, map[string]HealthChecker{"database": healthy, "redis": healthy})
	w := get(s, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, map[string]string{"database": "healthy", "redis": "healthy"}, body.Checks)

	s, _ = newTestServer(t, map[string]HealthChecker{
		"database": healthy,
		"redis":    checkFunc(func() error { return errors.New("connection refused") }),
	})
	w = get(s, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"unhealthy"`)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestReadyAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := get(s, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_request_duration_seconds"),
		"the /ready request above is recorded")
}

func TestStaffRoutesRequireToken(t *testing.T) {
	s, _ := newTestServer(t, nil)

	for _, path := range []string{"/api/orders", "/api/analytics/dashboard", "/api/admin/ledger/stats"} {
		w := get(s, path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
