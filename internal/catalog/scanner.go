// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/dayloop/internal/log"
	"github.com/rs/zerolog"
)

// DefaultExtensions is the playable extension allowlist.
var DefaultExtensions = []string{".mp4", ".mkv", ".avi", ".mpg", ".mov", ".ts"}

// Scanner walks category directories and lists playable videos.
// It never caches: every Scan reflects the directory as it is now.
type Scanner struct {
	extensions map[string]struct{}
	logger     zerolog.Logger
}

// NewScanner creates a scanner for the given extension allowlist.
// Extensions are matched case-insensitively; a missing leading dot is added.
func NewScanner(extensions []string) *Scanner {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Scanner{
		extensions: set,
		logger:     log.WithComponent("catalog"),
	}
}

// Allowed reports whether name carries an allowlisted extension.
func (s *Scanner) Allowed(name string) bool {
	_, ok := s.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Scan recursively lists the playable files under dir, following symbolic links.
// A missing, unreadable or empty directory yields an empty result; this is a
// normal condition the caller handles by backing off.
func (s *Scanner) Scan(ctx context.Context, dir string) []Video {
	root := NewVideo(dir).Path
	w := walker{
		scanner: s,
		ctx:     ctx,
		visited: make(map[string]struct{}),
	}
	w.walk(root)
	return w.found
}

type walker struct {
	scanner *Scanner
	ctx     context.Context
	visited map[string]struct{}
	found   []Video
}

func (w *walker) walk(dir string) {
	if w.ctx.Err() != nil {
		return
	}

	// Symlinked directories may form cycles; each real directory is entered once.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		w.skip("resolve", dir, err)
		return
	}
	if _, seen := w.visited[resolved]; seen {
		return
	}
	w.visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.skip("readdir", dir, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()

		if mode&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				w.skip("symlink", path, err)
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsDir():
			w.walk(path)
		case mode.IsRegular():
			if w.scanner.Allowed(entry.Name()) {
				w.found = append(w.found, Video{Path: path})
			}
		}
	}
}

func (w *walker) skip(op, path string, err error) {
	w.scanner.logger.Debug().
		Err(err).
		Str("op", op).
		Str(log.FieldPath, path).
		Msg("skipping unreadable catalog entry")
}
