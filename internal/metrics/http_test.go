package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/clients/42/edit", "/clients/{id}/edit"},
		{"/clients/42", "/clients/{id}"},
		{"/clients/42/delete", "/clients/{id}/delete"},
		{"/clients/550e8400-e29b-41d4-a716-446655440000", "/clients/{id}"},
		{"/clients/delete/status", "/clients/delete/status"},
		{"/sobre", "/sobre"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in), tt.in)
	}
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, unmatchedPath, routeLabel("/wp-admin/setup.php", http.StatusNotFound))
	assert.Equal(t, "/clients/{id}", routeLabel("/clients/9", http.StatusOK))
}

func TestMiddleware_PassesThroughStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/7", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_CountsRequests(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/clients/{id}/edit", "200")
	before := counterValue(t, counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clients/12/edit", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/clients/13/edit", nil))

	assert.Equal(t, before+2, counterValue(t, counter))
}

func TestMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/metrics", "200")
	before := counterValue(t, counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, before, counterValue(t, counter))
}
