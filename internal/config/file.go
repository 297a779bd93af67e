// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// FileConfig mirrors AppConfig with optional fields so that keys absent from
// the file keep their defaults.
type FileConfig struct {
	Log      *FileLog      `yaml:"log"`
	Videos   *FileVideos   `yaml:"videos"`
	Schedule *FileSchedule `yaml:"schedule"`
	Encoder  *FileEncoder  `yaml:"encoder"`
	Playback *FilePlayback `yaml:"playback"`
	Ops      *FileOps      `yaml:"ops"`
}

type FileLog struct {
	Level   *string `yaml:"level"`
	Service *string `yaml:"service"`
}

type FileVideos struct {
	BasePath   *string  `yaml:"base_path"`
	Extensions []string `yaml:"extensions"`
}

type FileSchedule struct {
	Fallback   *string          `yaml:"fallback"`
	Categories []CategoryConfig `yaml:"categories"`
}

type FileEncoder struct {
	Binary    *string  `yaml:"binary"`
	Args      []string `yaml:"args"`
	OutputURL *string  `yaml:"output_url"`
	Keywords  []string `yaml:"keywords"`
	TailLines *int     `yaml:"tail_lines"`
}

type FilePlayback struct {
	Backoff  *time.Duration `yaml:"backoff"`
	Advance  *time.Duration `yaml:"advance"`
	LockFile *string        `yaml:"lock_file"`
}

type FileOps struct {
	Listen *string `yaml:"listen"`
}
