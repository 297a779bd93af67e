// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/ManuGH/dayloop/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefault(t *testing.T) AppConfig {
	t.Helper()
	cfg := Default()
	resolve(&cfg)
	require.NoError(t, Validate(cfg))
	return cfg
}

func errorFields(t *testing.T, err error) []string {
	t.Helper()
	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	var out []string
	for _, e := range verr.Errors() {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		field  string
	}{
		{"log level", func(c *AppConfig) { c.Log.Level = "chatty" }, "log.level"},
		{"no extensions", func(c *AppConfig) { c.Videos.Extensions = nil }, "videos.extensions"},
		{"blank extension", func(c *AppConfig) { c.Videos.Extensions = []string{"."} }, "videos.extensions[0]"},
		{"gap", func(c *AppConfig) { c.Schedule.Categories = c.Schedule.Categories[1:] }, "schedule.categories"},
		{"overlap", func(c *AppConfig) { c.Schedule.Categories[1].Start = 4 }, "schedule"},
		{"duplicate", func(c *AppConfig) { c.Schedule.Categories[1].Name = "late_night" }, "schedule"},
		{"start out of range", func(c *AppConfig) { c.Schedule.Categories[0].Start = -1 }, "schedule.categories[0].start"},
		{"unknown fallback", func(c *AppConfig) { c.Schedule.Fallback = "weekend" }, "schedule"},
		{"no categories", func(c *AppConfig) { c.Schedule.Categories = nil }, "schedule.categories"},
		{"empty binary", func(c *AppConfig) { c.Encoder.Binary = " " }, "encoder.binary"},
		{"missing input", func(c *AppConfig) { c.Encoder.Args = []string{"-i", "x.mp4"} }, "encoder.args"},
		{"two inputs", func(c *AppConfig) { c.Encoder.Args = []string{"{input}", "{input}"} }, "encoder.args"},
		{"unresolved output", func(c *AppConfig) { c.Encoder.Args = []string{"{input}", "{output}"} }, "encoder.args"},
		{"output scheme", func(c *AppConfig) { c.Encoder.OutputURL = "ftp://host/x" }, "encoder.output_url"},
		{"no keywords", func(c *AppConfig) { c.Encoder.Keywords = nil }, "encoder.keywords"},
		{"tail lines", func(c *AppConfig) { c.Encoder.TailLines = 0 }, "encoder.tail_lines"},
		{"backoff", func(c *AppConfig) { c.Playback.Backoff = 0 }, "playback.backoff"},
		{"advance", func(c *AppConfig) { c.Playback.Advance = -1 }, "playback.advance"},
		{"listen", func(c *AppConfig) { c.Ops.Listen = "nowhere" }, "ops.listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefault(t)
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, errorFields(t, err), tt.field)
		})
	}
}

func TestValidateAcceptsFallbackAndListen(t *testing.T) {
	cfg := validDefault(t)
	cfg.Schedule.Fallback = "night"
	cfg.Ops.Listen = ":9090"
	assert.NoError(t, Validate(cfg))

	cfg.Ops.Listen = "127.0.0.1:0"
	assert.NoError(t, Validate(cfg), "port 0 binds an ephemeral port")
}

func TestValidateAccumulates(t *testing.T) {
	cfg := validDefault(t)
	cfg.Log.Level = "chatty"
	cfg.Playback.Backoff = 0
	cfg.Encoder.TailLines = -1
	assert.Len(t, errorFields(t, Validate(cfg)), 3)
}
