package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricsRouter(m *Metrics) *chi.Mux {
	router := chi.NewRouter()
	router.Use(m.Middleware())
	router.Get("/metrics", m.Handler().ServeHTTP)
	return router
}

func TestMetricsRecordsRequests(t *testing.T) {
	metrics := NewMetrics()
	router := metricsRouter(metrics)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	ping := httptest.NewRequest("GET", "/health", nil)
	pw := httptest.NewRecorder()
	router.ServeHTTP(pw, ping)
	require.Equal(t, http.StatusOK, pw.Code)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "asset_tracker_http_requests_total")
	assert.Contains(t, body, "asset_tracker_http_request_duration_seconds")
	assert.Contains(t, body, `path="/health"`)
	assert.Contains(t, body, `status="200"`)
}

func TestMetricsStatusLabel(t *testing.T) {
	metrics := NewMetrics()
	router := metricsRouter(metrics)
	router.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	preq := httptest.NewRequest("GET", "/missing", nil)
	router.ServeHTTP(httptest.NewRecorder(), preq)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `status="404"`)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	metrics := NewMetrics()
	router := metricsRouter(metrics)
	router.Get("/devices/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("device"))
	})

	preq := httptest.NewRequest("GET", "/devices/123", nil)
	router.ServeHTTP(httptest.NewRecorder(), preq)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `path="/devices/{id}"`)
	assert.NotContains(t, body, `path="/devices/123"`)
}

func TestMetricsRegistryIsPrivate(t *testing.T) {
	// Two instances must register the same metric names without panicking.
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}
