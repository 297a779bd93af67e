// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// Runner is a long-lived component that stops when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	// Logger is the structured logger for the daemon
	Logger zerolog.Logger

	// Loop is the playback loop
	Loop Runner

	// OpsListen is the ops listener address; empty disables it
	OpsListen string

	// OpsHandler serves probes, metrics and status
	OpsHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Loop == nil {
		return ErrMissingLoop
	}
	if d.OpsListen != "" && d.OpsHandler == nil {
		return ErrMissingOpsHandler
	}
	return nil
}
