package middlewarectx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/billing-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/billing-admin/internal/metrics"
)

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	router := chi.NewRouter()
	router.Use(middlewarectx.MetricsMiddleware(m))
	router.Get("/clients/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/clients/"+id, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	expected := `
# HELP billing_http_requests_total HTTP requests by method, route and status.
# TYPE billing_http_requests_total counter
billing_http_requests_total{method="GET",route="/clients/{id}",status="404"} 2
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "billing_http_requests_total")
	assert.NoError(t, err)
}

func TestMetricsMiddleware_NilMetrics(t *testing.T) {
	handler := middlewarectx.MetricsMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
