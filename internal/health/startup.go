// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"os/exec"

	"github.com/ManuGH/dayloop/internal/config"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/validate"
)

// PerformStartupChecks logs environment problems before playback starts and
// returns them. None of them is fatal: a missing binary fails each attempt,
// a missing directory backs the category off.
func PerformStartupChecks(cfg config.AppConfig) []string {
	logger := log.WithComponent("startup-check")
	var warnings []string

	if path, err := exec.LookPath(cfg.Encoder.Binary); err != nil {
		logger.Warn().Err(err).
			Str("binary", cfg.Encoder.Binary).
			Msg("encoder binary not found; every attempt will fail to start")
		warnings = append(warnings, "encoder binary not found: "+cfg.Encoder.Binary)
	} else {
		logger.Info().Str("binary", path).Msg("encoder binary available")
	}

	dirs := validate.New()
	for _, c := range cfg.Schedule.Categories {
		dirs.ExistingDirectory("schedule.categories."+c.Name+".dir", c.Dir)
	}
	for _, e := range dirs.Errors() {
		logger.Warn().
			Str("field", e.Field).
			Interface(log.FieldDir, e.Value).
			Str("reason", e.Message).
			Msg("category directory unusable; category will back off until videos appear")
		warnings = append(warnings, e.Error())
	}

	if len(warnings) == 0 {
		logger.Info().Msg("all startup checks passed")
	}
	return warnings
}
