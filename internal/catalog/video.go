// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog discovers playable media files under a category directory.
package catalog

import "path/filepath"

// Video is a playable media file. Its identity is the cleaned absolute path.
type Video struct {
	Path string
}

// NewVideo normalises path into a Video identity.
func NewVideo(path string) Video {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Video{Path: filepath.Clean(path)}
}

// Name returns the base file name, for logging.
func (v Video) Name() string {
	return filepath.Base(v.Path)
}

// Paths extracts the identities of videos, preserving order.
func Paths(videos []Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Path
	}
	return out
}
