package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)

	m.ObserveRequest(http.MethodPost, "/astronautduty", "201", 15*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/astronautduty", "201", 5*time.Millisecond)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodPost, "/astronautduty", "201")))
	assert.Equal(t, 1, promtestutil.CollectAndCount(m.RequestDuration))
}

func TestObserveRequest_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(http.MethodGet, "/person", "200", time.Millisecond)
}

func TestHandler_ExposesRegisteredCollectors(t *testing.T) {
	reg := NewRegistry()
	New(reg).ObserveRequest(http.MethodGet, "/person", "200", time.Millisecond)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "stargate_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
