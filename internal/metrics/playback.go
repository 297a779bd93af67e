// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes the Prometheus instruments of the playback daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaybackAttempts counts encoder attempts by category and outcome.
	PlaybackAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_playback_attempts_total",
		Help: "Total encoder playback attempts",
	}, []string{"category", "outcome"})

	// PlaybackAttemptDuration tracks wall time of a single attempt.
	PlaybackAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dayloop_playback_attempt_duration_seconds",
		Help:    "Duration of encoder playback attempts",
		Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600, 7200},
	}, []string{"outcome"})

	// EncoderFaults counts detected failures by trigger (keyword or "start").
	EncoderFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_encoder_faults_total",
		Help: "Total encoder failures by detection trigger",
	}, []string{"trigger"})

	// EncoderRunning is 1 while an encoder process is alive.
	EncoderRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dayloop_encoder_running",
		Help: "Whether an encoder process is currently running",
	})

	// HistoryResets counts exhaustion-cycle resets per category.
	HistoryResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_history_resets_total",
		Help: "Total play-history resets after a category was exhausted",
	}, []string{"category"})

	// CatalogBackoffs counts backoff sleeps caused by empty catalogs.
	CatalogBackoffs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_catalog_backoffs_total",
		Help: "Total backoffs caused by an empty category catalog",
	}, []string{"category"})

	// CatalogSize is the number of playable files found by the latest scan.
	CatalogSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dayloop_catalog_size",
		Help: "Playable files found in the latest catalog scan",
	}, []string{"category"})

	// CatalogUnplayed is the number of candidates left in the current cycle.
	CatalogUnplayed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dayloop_catalog_unplayed",
		Help: "Unplayed candidates left in the current exhaustion cycle",
	}, []string{"category"})

	// CategorySwitches counts transitions into a category.
	CategorySwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_category_switches_total",
		Help: "Total transitions into a category",
	}, []string{"category"})

	// SweepsFailed counts candidate sweeps where every attempt failed.
	SweepsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dayloop_sweeps_failed_total",
		Help: "Total candidate sweeps in which no video played successfully",
	}, []string{"category"})
)

// ObserveAttempt records one finished attempt.
func ObserveAttempt(category, outcome string, d time.Duration) {
	PlaybackAttempts.WithLabelValues(category, outcome).Inc()
	PlaybackAttemptDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// IncEncoderFault records a failure trigger.
func IncEncoderFault(trigger string) {
	EncoderFaults.WithLabelValues(trigger).Inc()
}

// SetEncoderRunning flips the encoder liveness gauge.
func SetEncoderRunning(running bool) {
	if running {
		EncoderRunning.Set(1)
		return
	}
	EncoderRunning.Set(0)
}

// IncHistoryReset records an exhaustion-cycle reset.
func IncHistoryReset(category string) {
	HistoryResets.WithLabelValues(category).Inc()
}

// IncCatalogBackoff records an empty-catalog backoff.
func IncCatalogBackoff(category string) {
	CatalogBackoffs.WithLabelValues(category).Inc()
}

// SetCatalog publishes catalog and unplayed sizes for category.
func SetCatalog(category string, size, unplayed int) {
	CatalogSize.WithLabelValues(category).Set(float64(size))
	CatalogUnplayed.WithLabelValues(category).Set(float64(unplayed))
}

// IncCategorySwitch records a transition into category.
func IncCategorySwitch(category string) {
	CategorySwitches.WithLabelValues(category).Inc()
}

// IncSweepFailed records a sweep without any successful attempt.
func IncSweepFailed(category string) {
	SweepsFailed.WithLabelValues(category).Inc()
}
