// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the read-only ops surface: probes, metrics and the
// playback status document.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/dayloop/internal/api/middleware"
	"github.com/ManuGH/dayloop/internal/health"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/playback"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrMissingHealth = errors.New("health manager is required")
	ErrMissingStatus = errors.New("status source is required")
)

// Deps are the collaborators of the ops router.
type Deps struct {
	Version  string
	Health   *health.Manager
	Status   func() playback.Status
	Gatherer prometheus.Gatherer // nil selects the default registry

	DisableRateLimit bool
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Version   string          `json:"version,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Playback  playback.Status `json:"playback"`
}

// NewRouter builds the ops handler.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, ErrMissingHealth
	}
	if deps.Status == nil {
		return nil, ErrMissingStatus
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:   true,
		EnableLogging:   true,
		EnableRateLimit: !deps.DisableRateLimit,
	})

	r.Get("/healthz", deps.Health.ServeHealth)
	r.Get("/readyz", deps.Health.ServeReady)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/status", handleStatus(deps.Version, deps.Status))

	return r, nil
}

func handleStatus(version string, status func() playback.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Version:   version,
			Timestamp: time.Now(),
			Playback:  status(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger := log.WithComponentFromContext(r.Context(), "ops")
			logger.Error().Err(err).Str(log.FieldEvent, "status.encode_error").Msg("failed to encode status response")
		}
	}
}
