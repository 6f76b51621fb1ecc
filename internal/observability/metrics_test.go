package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveDecision("manage_policies", true)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gouvernance_authz_decisions_total{permission="manage_policies",result="allowed"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `gouvernance_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `gouvernance_http_request_duration_seconds_bucket{route="/test"`)
}

func TestCacheAndCMSCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveCache("agents", true)
	metrics.ObserveCache("agents", false)
	metrics.ObserveCache("agents", false)
	metrics.ObserveCMS("ok")
	metrics.ObserveRenderFault()

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.queryCache.WithLabelValues("agents", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.queryCache.WithLabelValues("agents", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cmsRequests.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.renderFaults))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveDecision("view_traces", false)
	metrics.ObserveCache("traces", true)
	metrics.ObserveCMS("error")
	metrics.ObserveRenderFault()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Service Unavailable"))
}
