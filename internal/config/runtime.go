// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/schedule"
	"gopkg.in/yaml.v3"
)

// Categories converts the schedule section into resolver categories.
func Categories(s ScheduleConfig) []schedule.Category {
	out := make([]schedule.Category, len(s.Categories))
	for i, c := range s.Categories {
		out[i] = schedule.Category{Name: c.Name, Dir: c.Dir, Start: c.Start, End: c.End}
	}
	return out
}

// Resolver builds the category resolver for cfg.
func (cfg AppConfig) Resolver() (*schedule.Resolver, error) {
	return schedule.NewResolver(Categories(cfg.Schedule), cfg.Schedule.Fallback)
}

// Template builds the encoder invocation template for cfg.
func (cfg AppConfig) Template() (encoder.Template, error) {
	return encoder.NewTemplate(cfg.Encoder.Binary, cfg.Encoder.Args)
}

// Marshal renders the effective configuration as YAML.
func (cfg AppConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}
