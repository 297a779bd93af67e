// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package history tracks which videos of each category were already played in
// the current exhaustion cycle. State lives in memory only.
package history

import (
	"sort"
	"sync"

	"github.com/ManuGH/dayloop/internal/catalog"
)

// Tracker holds one played-set per category.
// Entries for files that disappeared from disk are harmless and simply never
// match a future catalog.
type Tracker struct {
	mu     sync.RWMutex
	played map[string]map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{played: make(map[string]map[string]struct{})}
}

// Unplayed returns the videos of catalog not yet played in category, in catalog order.
func (t *Tracker) Unplayed(category string, videos []catalog.Video) []catalog.Video {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := t.played[category]
	out := make([]catalog.Video, 0, len(videos))
	for _, v := range videos {
		if _, done := set[v.Path]; !done {
			out = append(out, v)
		}
	}
	return out
}

// MarkPlayed records video as played in category.
func (t *Tracker) MarkPlayed(category string, video catalog.Video) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.played[category]
	if !ok {
		set = make(map[string]struct{})
		t.played[category] = set
	}
	set[video.Path] = struct{}{}
}

// ResetIfExhausted clears the category's history when every video of the
// non-empty catalog has been played, making the whole catalog eligible again.
// It reports whether a reset happened.
func (t *Tracker) ResetIfExhausted(category string, videos []catalog.Video) bool {
	if len(videos) == 0 {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.played[category]
	for _, v := range videos {
		if _, done := set[v.Path]; !done {
			return false
		}
	}
	delete(t.played, category)
	return true
}

// Played returns a sorted snapshot of the category's history.
func (t *Tracker) Played(category string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.played[category]))
	for path := range t.played[category] {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of history entries held for category.
func (t *Tracker) Len(category string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.played[category])
}
