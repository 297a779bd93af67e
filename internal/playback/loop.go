// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package playback runs the endless schedule: resolve the category, scan its
// catalog, pick an unplayed video at random and hand it to the encoder.
package playback

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/history"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/metrics"
	"github.com/ManuGH/dayloop/internal/schedule"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBackoffInterval = 10 * time.Second
	DefaultAdvanceInterval = 1 * time.Second
)

var (
	ErrMissingResolver  = errors.New("category resolver is required")
	ErrMissingScanner   = errors.New("catalog scanner is required")
	ErrMissingAttempter = errors.New("encoder attempter is required")
)

// Resolver maps wall-clock time to a category.
type Resolver interface {
	Resolve(now time.Time) schedule.Category
}

// Scanner lists the playable videos of a directory.
type Scanner interface {
	Scan(ctx context.Context, dir string) []catalog.Video
}

// Attempter plays one video and reports the outcome.
type Attempter interface {
	Attempt(ctx context.Context, video catalog.Video) encoder.Result
}

// Config wires a Loop. Now, Sleep and Shuffle default to the real clock,
// a context-aware timer and math/rand.
type Config struct {
	Resolver  Resolver
	Scanner   Scanner
	Attempter Attempter
	History   *history.Tracker

	BackoffInterval time.Duration
	AdvanceInterval time.Duration

	Logger  *zerolog.Logger
	Now     func() time.Time
	Sleep   func(ctx context.Context, d time.Duration) error
	Shuffle func(videos []catalog.Video)
}

// Loop is the single owner of the scheduling state: the current category,
// the play history and the encoder it drives.
type Loop struct {
	resolver  Resolver
	scanner   Scanner
	attempter Attempter
	history   *history.Tracker

	backoff time.Duration
	advance time.Duration

	logger  zerolog.Logger
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
	shuffle func(videos []catalog.Video)

	// emptyWarn throttles catalog.empty warnings for the current category.
	emptyWarn *rate.Sometimes

	current string

	mu     sync.RWMutex
	status Status
}

// New validates cfg and builds a Loop.
func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Resolver == nil:
		return nil, ErrMissingResolver
	case cfg.Scanner == nil:
		return nil, ErrMissingScanner
	case cfg.Attempter == nil:
		return nil, ErrMissingAttempter
	}

	l := &Loop{
		resolver:  cfg.Resolver,
		scanner:   cfg.Scanner,
		attempter: cfg.Attempter,
		history:   cfg.History,
		backoff:   cfg.BackoffInterval,
		advance:   cfg.AdvanceInterval,
		now:       cfg.Now,
		sleep:     cfg.Sleep,
		shuffle:   cfg.Shuffle,
		emptyWarn: newEmptyWarn(),
	}
	if l.history == nil {
		l.history = history.NewTracker()
	}
	if l.backoff <= 0 {
		l.backoff = DefaultBackoffInterval
	}
	if l.advance <= 0 {
		l.advance = DefaultAdvanceInterval
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sleep == nil {
		l.sleep = sleepContext
	}
	if l.shuffle == nil {
		l.shuffle = shuffleVideos
	}
	if cfg.Logger != nil {
		l.logger = cfg.Logger.With().Str(log.FieldComponent, "playback").Logger()
	} else {
		l.logger = log.WithComponent("playback")
	}
	return l, nil
}

// History exposes the tracker owned by the loop.
func (l *Loop) History() *history.Tracker {
	return l.history
}

// Run steps the loop until ctx is cancelled. Playback failures never stop it.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	l.status.StartedAt = l.now()
	l.mu.Unlock()

	l.logger.Info().
		Str(log.FieldEvent, "playback.started").
		Dur("backoff", l.backoff).
		Dur("advance", l.advance).
		Msg("playback loop started")

	for ctx.Err() == nil {
		l.Step(ctx)
	}

	l.logger.Info().
		Str(log.FieldEvent, "playback.stopped").
		Msg("playback loop stopped")
	return nil
}

func newEmptyWarn() *rate.Sometimes {
	return &rate.Sometimes{First: 1, Interval: time.Minute}
}

// Step runs one macro-iteration: at most one successful video, or one full
// sweep of failed candidates, or one backoff on an empty catalog.
func (l *Loop) Step(ctx context.Context) Report {
	l.setState(StateIdle)

	cat := l.resolver.Resolve(l.now())
	rep := Report{Category: cat.Name}
	logger := l.logger.With().Str(log.FieldCategory, cat.Name).Logger()

	if cat.Name != l.current {
		rep.Changed = true
		if l.current == "" {
			logger.Info().
				Str(log.FieldEvent, "playback.category_started").
				Str(log.FieldDir, cat.Dir).
				Msg("starting category")
		} else {
			logger.Info().
				Str(log.FieldEvent, "playback.category_changed").
				Str(log.FieldOldCategory, l.current).
				Str(log.FieldDir, cat.Dir).
				Msg("switching to new category")
		}
		metrics.IncCategorySwitch(cat.Name)
		l.current = cat.Name
		l.emptyWarn = newEmptyWarn()
	}
	l.update(func(s *Status) {
		s.Iterations++
		s.Category = cat.Name
		s.State = StateCategoryResolved
	})

	ctx = log.ContextWithCategory(ctx, cat.Name)

	l.setState(StateScanning)
	videos := l.scanner.Scan(ctx, cat.Dir)
	rep.CatalogSize = len(videos)

	if len(videos) == 0 {
		metrics.SetCatalog(cat.Name, 0, 0)
		metrics.IncCatalogBackoff(cat.Name)
		l.emptyWarn.Do(func() {
			logger.Warn().
				Str(log.FieldEvent, "catalog.empty").
				Str(log.FieldDir, cat.Dir).
				Dur("backoff", l.backoff).
				Msg("no videos in category directory, backing off")
		})
		l.update(func(s *Status) {
			s.State = StateBackingOff
			s.CatalogSize = 0
			s.Unplayed = 0
		})
		rep.BackedOff = true
		_ = l.sleep(ctx, l.backoff)
		return rep
	}

	l.setState(StateSelecting)
	if l.history.ResetIfExhausted(cat.Name, videos) {
		rep.Reset = true
		metrics.IncHistoryReset(cat.Name)
		l.update(func(s *Status) { s.Resets++ })
		logger.Info().
			Str(log.FieldEvent, "history.reset").
			Int(log.FieldCatalogSize, len(videos)).
			Msg("every video in category was played, starting over")
	}

	candidates := l.history.Unplayed(cat.Name, videos)
	l.shuffle(candidates)
	rep.Candidates = catalog.Paths(candidates)
	l.publishCatalog(cat.Name, len(videos), len(candidates))

	l.setState(StateAttempting)
	for _, v := range candidates {
		if ctx.Err() != nil {
			break
		}
		rep.Attempted = append(rep.Attempted, v.Path)

		id := uuid.NewString()
		actx := log.ContextWithAttemptID(ctx, id)
		l.update(func(s *Status) { s.CurrentVideo = v.Path })
		logger.Info().
			Str(log.FieldEvent, "playback.attempt").
			Str(log.FieldAttemptID, id).
			Str(log.FieldPath, v.Path).
			Msg("trying to play video")

		res := l.attempter.Attempt(actx, v)
		metrics.ObserveAttempt(cat.Name, res.Outcome.String(), res.Duration)
		l.recordOutcome(res)

		if res.OK() {
			l.history.MarkPlayed(cat.Name, v)
			rep.Played = v.Path
			l.publishCatalog(cat.Name, len(videos), len(l.history.Unplayed(cat.Name, videos)))
			break
		}
		if res.Reason == encoder.ReasonCanceled {
			break
		}
		logger.Warn().
			Err(res.Err).
			Str(log.FieldEvent, "playback.attempt_failed").
			Str(log.FieldAttemptID, id).
			Str(log.FieldPath, v.Path).
			Str("reason", string(res.Reason)).
			Msg("video failed, trying next candidate")
	}

	if ctx.Err() == nil {
		if rep.Played == "" {
			metrics.IncSweepFailed(cat.Name)
			l.update(func(s *Status) { s.FailedSweeps++ })
			logger.Warn().
				Str(log.FieldEvent, "playback.sweep_failed").
				Int(log.FieldCandidates, len(candidates)).
				Msg("no candidate played successfully, restarting from category resolution")
		} else {
			l.update(func(s *Status) { s.FailedSweeps = 0 })
		}
	}

	l.update(func(s *Status) {
		s.State = StateAdvancing
		s.CurrentVideo = ""
	})
	_ = l.sleep(ctx, l.advance)
	return rep
}

// Snapshot returns the current loop status.
func (l *Loop) Snapshot() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

func (l *Loop) setState(s State) {
	l.update(func(st *Status) { st.State = s })
}

func (l *Loop) update(fn func(*Status)) {
	l.mu.Lock()
	fn(&l.status)
	l.mu.Unlock()
}

func (l *Loop) publishCatalog(category string, size, unplayed int) {
	metrics.SetCatalog(category, size, unplayed)
	played := l.history.Len(category)
	l.update(func(s *Status) {
		s.CatalogSize = size
		s.Unplayed = unplayed
		s.Played = played
	})
}

func (l *Loop) recordOutcome(res encoder.Result) {
	l.update(func(s *Status) {
		s.Attempts++
		s.LastVideo = res.Video.Path
		s.LastOutcome = res.Outcome.String()
		s.LastReason = string(res.Reason)
		if res.OK() {
			s.LastSuccessAt = l.now()
		}
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shuffleVideos(videos []catalog.Video) {
	rand.Shuffle(len(videos), func(i, j int) {
		videos[i], videos[j] = videos[j], videos[i]
	})
}
