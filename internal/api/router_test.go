// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/dayloop/internal/health"
	"github.com/ManuGH/dayloop/internal/playback"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, st playback.Status, checkers ...health.Checker) http.Handler {
	t.Helper()
	hm := health.NewManager("v9.9.9")
	for _, c := range checkers {
		hm.RegisterChecker(c)
	}

	reg := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "dayloop_test_probe_total", Help: "test"})
	reg.MustRegister(probe)
	probe.Inc()

	h, err := NewRouter(Deps{
		Version:  "v9.9.9",
		Health:   hm,
		Status:   func() playback.Status { return st },
		Gatherer: reg,
	})
	require.NoError(t, err)
	return h
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouterRequiresDeps(t *testing.T) {
	_, err := NewRouter(Deps{Status: func() playback.Status { return playback.Status{} }})
	assert.ErrorIs(t, err, ErrMissingHealth)
	_, err = NewRouter(Deps{Health: health.NewManager("")})
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func TestStatusEndpoint(t *testing.T) {
	st := playback.Status{
		State:         playback.StateAttempting,
		Category:      "evening",
		CurrentVideo:  "/app/videos/evening/a.mp4",
		Iterations:    4,
		LastSuccessAt: time.Date(2025, 3, 1, 16, 0, 0, 0, time.UTC),
	}
	rec := get(t, newTestRouter(t, st), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "v9.9.9", body["version"])
	pb := body["playback"].(map[string]any)
	assert.Equal(t, "attempting", pb["state"])
	assert.Equal(t, "evening", pb["category"])
	assert.Equal(t, "/app/videos/evening/a.mp4", pb["current_video"])
}

func TestProbeEndpoints(t *testing.T) {
	degraded := health.NewPlaybackChecker(func() playback.Status {
		return playback.Status{Iterations: 1, State: playback.StateBackingOff}
	})
	h := newTestRouter(t, playback.Status{}, degraded)

	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/readyz").Code, "degraded stays ready")
	assert.Contains(t, get(t, h, "/readyz?verbose=true").Body.String(), `"degraded"`)
}

func TestReadyzUnhealthy(t *testing.T) {
	h := newTestRouter(t, playback.Status{}, health.NewEncoderBinaryChecker("definitely-not-an-encoder-binary"))
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/readyz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(t, playback.Status{}), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "dayloop_test_probe_total 1"))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newTestRouter(t, playback.Status{})
	assert.Equal(t, http.StatusNotFound, get(t, h, "/control/skip").Code)

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
