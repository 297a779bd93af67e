// SPDX-License-Identifier: MIT

package middleware

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// StackConfig configures the ops HTTP middleware stack.
type StackConfig struct {
	EnableMetrics   bool
	EnableLogging   bool
	EnableRateLimit bool
}

// NewRouter constructs a chi router with the middleware stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies the middleware stack to r, outermost first.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	if cfg.EnableMetrics {
		r.Use(Metrics())
	}
	if cfg.EnableLogging {
		r.Use(Logging())
	}
	if cfg.EnableRateLimit {
		r.Use(OpsRateLimit())
	}
}
