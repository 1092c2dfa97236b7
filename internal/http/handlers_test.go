package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/metrics"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCycles struct {
	report *scheduler.CycleReport
}

func (f fakeCycles) LastCycle() (scheduler.CycleReport, bool) {
	if f.report == nil {
		return scheduler.CycleReport{}, false
	}
	return *f.report, true
}

// setupTestServer initializes a server backed by a fresh metrics registry.
func setupTestServer(t *testing.T, cycles CycleReporter) (*Server, *metrics.Service) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	return NewServer(metrics.NewMetricsHandler(reg), cycles), metricsSvc
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, fakeCycles{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestHealthCheckHandler_Verbose(t *testing.T) {
	server, _ := setupTestServer(t, fakeCycles{})

	req := httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	server, metricsSvc := setupTestServer(t, fakeCycles{})
	metricsSvc.IncCycles()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nuvla_scraper_cycles_total 1")
}

func TestStatusHandler_NoCycleYet(t *testing.T) {
	server, _ := setupTestServer(t, fakeCycles{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestStatusHandler(t *testing.T) {
	start := time.Date(2025, 7, 9, 18, 0, 0, 0, time.UTC)
	server, _ := setupTestServer(t, fakeCycles{report: &scheduler.CycleReport{
		ID:         "cycle-1",
		Start:      start,
		Elapsed:    1500 * time.Millisecond,
		Points:     13,
		Failures:   map[string]error{"pull-job-durations": errors.New("timeout")},
		PublishErr: errors.New("gateway down"),
	}})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "cycle-1", resp.CycleID)
	assert.True(t, start.Equal(resp.Start))
	assert.Equal(t, 1.5, resp.ElapsedSeconds)
	assert.Equal(t, 13, resp.Points)
	assert.Equal(t, map[string]string{"pull-job-durations": "timeout"}, resp.FailedOperations)
	assert.False(t, resp.Published)
	assert.Equal(t, "gateway down", resp.PublishError)
}

func TestUnknownRoute(t *testing.T) {
	server, _ := setupTestServer(t, fakeCycles{})

	req := httptest.NewRequest(http.MethodGet, "/fetch", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
