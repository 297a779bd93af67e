// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"

	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/playback"
)

const (
	DefaultLogLevel = "info"
	DefaultService  = "dayloop"
	DefaultBasePath = "/app/videos"
	DefaultLockName = "dayloop.lock"
)

// DefaultCategories is the broadcast day.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Name: "late_night", Start: 0, End: 5},
		{Name: "early_morning", Start: 5, End: 7},
		{Name: "morning", Start: 7, End: 10},
		{Name: "late_morning", Start: 10, End: 12},
		{Name: "afternoon", Start: 12, End: 15},
		{Name: "evening", Start: 15, End: 18},
		{Name: "late_evening", Start: 18, End: 21},
		{Name: "night", Start: 21, End: 24},
	}
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() AppConfig {
	return AppConfig{
		Log: LogConfig{
			Level:   DefaultLogLevel,
			Service: DefaultService,
		},
		Videos: VideosConfig{
			BasePath:   DefaultBasePath,
			Extensions: append([]string(nil), catalog.DefaultExtensions...),
		},
		Schedule: ScheduleConfig{
			Categories: DefaultCategories(),
		},
		Encoder: EncoderConfig{
			Binary:    encoder.DefaultBinary,
			Args:      append([]string(nil), encoder.DefaultArgs...),
			OutputURL: encoder.DefaultOutputURL,
			Keywords:  append([]string(nil), encoder.DefaultKeywords...),
			TailLines: encoder.DefaultTailLines,
		},
		Playback: PlaybackConfig{
			Backoff:  playback.DefaultBackoffInterval,
			Advance:  playback.DefaultAdvanceInterval,
			LockFile: filepath.Join(os.TempDir(), DefaultLockName),
		},
	}
}
