// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package encoder

import "sync"

// LineRing keeps the most recent diagnostic lines of an attempt.
type LineRing struct {
	mu    sync.Mutex
	lines []string
	pos   int
	full  bool
}

// NewLineRing creates a ring holding at most size lines (minimum 1).
func NewLineRing(size int) *LineRing {
	if size < 1 {
		size = 1
	}
	return &LineRing{lines: make([]string, size)}
}

// Add appends a line, evicting the oldest when full.
func (r *LineRing) Add(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.pos] = line
	r.pos = (r.pos + 1) % len(r.lines)
	if r.pos == 0 {
		r.full = true
	}
}

// Lines returns the buffered lines, oldest first.
func (r *LineRing) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]string(nil), r.lines[:r.pos]...)
	}
	out := make([]string, len(r.lines))
	copy(out, r.lines[r.pos:])
	copy(out[len(r.lines)-r.pos:], r.lines[:r.pos])
	return out
}
