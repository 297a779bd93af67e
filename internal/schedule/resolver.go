// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package schedule

import (
	"fmt"
	"time"
)

// Resolver maps a timestamp to exactly one Category.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	categories []Category
	byHour     [HoursPerDay]int
	fallback   int
}

// NewResolver builds a resolver over the given categories.
//
// fallback names the category returned for hours no range covers. An empty
// fallback selects the last configured category, mirroring a trailing
// catch-all bucket. Gaps are tolerated here so Resolve stays total; callers
// that need exact coverage run Coverage first.
func NewResolver(categories []Category, fallback string) (*Resolver, error) {
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	if err := checkOverlaps(categories); err != nil {
		return nil, err
	}

	r := &Resolver{
		categories: append([]Category(nil), categories...),
		fallback:   len(categories) - 1,
	}
	if fallback != "" {
		idx := r.index(fallback)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFallback, fallback)
		}
		r.fallback = idx
	}

	for hour := range r.byHour {
		r.byHour[hour] = r.fallback
		for i, c := range r.categories {
			if c.Contains(hour) {
				r.byHour[hour] = i
				break
			}
		}
	}
	return r, nil
}

func (r *Resolver) index(name string) int {
	for i, c := range r.categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Resolve returns the category active at now (local wall-clock hour).
func (r *Resolver) Resolve(now time.Time) Category {
	return r.categories[r.byHour[now.Hour()]]
}

// Fallback returns the category used for uncovered hours.
func (r *Resolver) Fallback() Category {
	return r.categories[r.fallback]
}

// Lookup returns the category with the given name.
func (r *Resolver) Lookup(name string) (Category, bool) {
	idx := r.index(name)
	if idx < 0 {
		return Category{}, false
	}
	return r.categories[idx], true
}

// Categories returns the categories in configured order.
func (r *Resolver) Categories() []Category {
	return append([]Category(nil), r.categories...)
}
