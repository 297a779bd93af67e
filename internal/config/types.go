// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the effective, merged configuration.
type AppConfig struct {
	Version string `yaml:"-"`

	Log      LogConfig      `yaml:"log"`
	Videos   VideosConfig   `yaml:"videos"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Encoder  EncoderConfig  `yaml:"encoder"`
	Playback PlaybackConfig `yaml:"playback"`
	Ops      OpsConfig      `yaml:"ops"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

type VideosConfig struct {
	// BasePath anchors relative category directories.
	BasePath   string   `yaml:"base_path"`
	Extensions []string `yaml:"extensions"`
}

// CategoryConfig is one time-of-day bucket. Dir defaults to Name and is
// resolved against videos.base_path when relative.
type CategoryConfig struct {
	Name  string `yaml:"name"`
	Dir   string `yaml:"dir,omitempty"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

type ScheduleConfig struct {
	// Fallback names the category used for uncovered hours; empty selects the
	// last category.
	Fallback   string           `yaml:"fallback,omitempty"`
	Categories []CategoryConfig `yaml:"categories"`
}

type EncoderConfig struct {
	Binary    string   `yaml:"binary"`
	Args      []string `yaml:"args"`
	OutputURL string   `yaml:"output_url"`
	Keywords  []string `yaml:"keywords"`
	TailLines int      `yaml:"tail_lines"`
}

type PlaybackConfig struct {
	Backoff time.Duration `yaml:"backoff"`
	Advance time.Duration `yaml:"advance"`
	// LockFile keeps a second daemon on the same host from driving another
	// encoder. Empty disables the lock.
	LockFile string `yaml:"lock_file"`
}

type OpsConfig struct {
	// Listen is the ops HTTP address; empty disables the listener.
	Listen string `yaml:"listen"`
}
