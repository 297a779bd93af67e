// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package schedule maps wall-clock time onto the configured time-of-day categories.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// HoursPerDay is the exclusive upper bound of every category range.
const HoursPerDay = 24

var (
	ErrInvalidRange      = errors.New("invalid hour range")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrOverlap           = errors.New("overlapping hour ranges")
	ErrGap               = errors.New("hours not covered by any category")
	ErrNoCategories      = errors.New("no categories configured")
	ErrUnknownFallback   = errors.New("unknown fallback category")
)

// Category is a named time-of-day bucket with its own video directory.
// Start and End form the half-open local hour range [Start, End).
type Category struct {
	Name  string
	Dir   string
	Start int
	End   int
}

// Contains reports whether the given hour (0-23) falls inside the category range.
func (c Category) Contains(hour int) bool {
	return hour >= c.Start && hour < c.End
}

// String renders the category as "name[start-end)".
func (c Category) String() string {
	return fmt.Sprintf("%s[%02d-%02d)", c.Name, c.Start, c.End)
}

func (c Category) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is empty", ErrInvalidRange)
	}
	if c.Start < 0 || c.End > HoursPerDay || c.Start >= c.End {
		return fmt.Errorf("%w: %s needs 0 <= start < end <= %d", ErrInvalidRange, c, HoursPerDay)
	}
	return nil
}

// checkOverlaps validates bounds, names and pairwise disjointness.
func checkOverlaps(categories []Category) error {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if err := c.validate(); err != nil {
			return err
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCategory, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	sorted := append([]Category(nil), categories...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, sorted[i-1], sorted[i])
		}
	}
	return nil
}

// Coverage verifies that the categories cover every hour of [0,24) exactly once.
func Coverage(categories []Category) error {
	if len(categories) == 0 {
		return ErrNoCategories
	}
	if err := checkOverlaps(categories); err != nil {
		return err
	}

	var missing []string
	for hour := 0; hour < HoursPerDay; hour++ {
		covered := false
		for _, c := range categories {
			if c.Contains(hour) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, fmt.Sprintf("%02d", hour))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrGap, strings.Join(missing, ","))
	}
	return nil
}
