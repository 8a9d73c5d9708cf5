package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getHealth(t *testing.T, h http.Handler) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthHandler_NoChecks(t *testing.T) {
	code, body := getHealth(t, HealthHandler(nil))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.NotContains(t, body, "checks")
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	checks := map[string]HealthCheck{
		"database": func(ctx context.Context) error { return errors.New("database health check failed: connection refused") },
		"redis":    func(ctx context.Context) error { return nil },
	}

	code, body := getHealth(t, HealthHandler(checks))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, map[string]interface{}{
		"database": "database health check failed: connection refused",
		"redis":    "ok",
	}, body["checks"])
}

func TestNewServer(t *testing.T) {
	called := false
	srv := NewServer(9090, map[string]HealthCheck{
		"database": func(ctx context.Context) error { called = true; return nil },
	})
	assert.Equal(t, ":9090", srv.Addr)

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)

	RecordRefresh("timberwolves", "success", 1.5)
	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nba_refresh_runs_total")
}
