// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package playback

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/history"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/schedule"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeResolver struct {
	mu    sync.Mutex
	seq   []schedule.Category
	calls int
}

func (r *fakeResolver) Resolve(time.Time) schedule.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	if i >= len(r.seq) {
		i = len(r.seq) - 1
	}
	r.calls++
	return r.seq[i]
}

type fakeScanner struct {
	mu    sync.Mutex
	dirs  map[string][]string
	calls []string
}

func (s *fakeScanner) Scan(_ context.Context, dir string) []catalog.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, dir)
	var out []catalog.Video
	for _, p := range s.dirs[dir] {
		out = append(out, catalog.Video{Path: p})
	}
	return out
}

type fakeAttempter struct {
	mu      sync.Mutex
	failing map[string]bool
	played  []string
	ids     []string
}

func (a *fakeAttempter) Attempt(ctx context.Context, v catalog.Video) encoder.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.played = append(a.played, v.Path)
	a.ids = append(a.ids, log.AttemptIDFromContext(ctx))
	if a.failing[v.Path] {
		return encoder.Result{Video: v, Outcome: encoder.Failed, Reason: encoder.ReasonKeyword, Keyword: "error"}
	}
	return encoder.Result{Video: v, Outcome: encoder.Success}
}

type sleepRecorder struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	return ctx.Err()
}

func cat(name string) schedule.Category {
	return schedule.Category{Name: name, Dir: "/videos/" + name, Start: 0, End: 24}
}

type harness struct {
	loop     *Loop
	resolver *fakeResolver
	scanner  *fakeScanner
	attempt  *fakeAttempter
	sleeper  *sleepRecorder
}

func newHarness(t *testing.T, cats []schedule.Category, dirs map[string][]string, failing ...string) *harness {
	t.Helper()
	h := &harness{
		resolver: &fakeResolver{seq: cats},
		scanner:  &fakeScanner{dirs: dirs},
		attempt:  &fakeAttempter{failing: map[string]bool{}},
		sleeper:  &sleepRecorder{},
	}
	for _, f := range failing {
		h.attempt.failing[f] = true
	}
	loop, err := New(Config{
		Resolver:        h.resolver,
		Scanner:         h.scanner,
		Attempter:       h.attempt,
		BackoffInterval: 10 * time.Second,
		AdvanceInterval: time.Second,
		Sleep:           h.sleeper.Sleep,
		Shuffle:         func([]catalog.Video) {},
	})
	require.NoError(t, err)
	h.loop = loop
	return h
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Scanner: &fakeScanner{}, Attempter: &fakeAttempter{}})
	assert.ErrorIs(t, err, ErrMissingResolver)
	_, err = New(Config{Resolver: &fakeResolver{}, Attempter: &fakeAttempter{}})
	assert.ErrorIs(t, err, ErrMissingScanner)
	_, err = New(Config{Resolver: &fakeResolver{}, Scanner: &fakeScanner{}})
	assert.ErrorIs(t, err, ErrMissingAttempter)
}

func TestNewAppliesDefaults(t *testing.T) {
	l, err := New(Config{Resolver: &fakeResolver{}, Scanner: &fakeScanner{}, Attempter: &fakeAttempter{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultBackoffInterval, l.backoff)
	assert.Equal(t, DefaultAdvanceInterval, l.advance)
	assert.NotNil(t, l.History())
}

func TestStepFailedThenSucceeded(t *testing.T) {
	morning := cat("morning")
	h := newHarness(t, []schedule.Category{morning},
		map[string][]string{morning.Dir: {"/videos/morning/a.mp4", "/videos/morning/b.mkv"}},
		"/videos/morning/a.mp4")

	rep := h.loop.Step(context.Background())

	assert.Equal(t, []string{"/videos/morning/a.mp4", "/videos/morning/b.mkv"}, rep.Attempted)
	assert.Equal(t, "/videos/morning/b.mkv", rep.Played)
	assert.Equal(t, []string{"/videos/morning/b.mkv"}, h.loop.History().Played("morning"))

	// The failed video stays eligible for the next iteration.
	unplayed := h.loop.History().Unplayed("morning", []catalog.Video{{Path: "/videos/morning/a.mp4"}, {Path: "/videos/morning/b.mkv"}})
	assert.Equal(t, []string{"/videos/morning/a.mp4"}, catalog.Paths(unplayed))

	assert.Equal(t, []time.Duration{time.Second}, h.sleeper.slept)

	st := h.loop.Snapshot()
	assert.Equal(t, StateAdvancing, st.State)
	assert.Equal(t, "success", st.LastOutcome)
	assert.Equal(t, "/videos/morning/b.mkv", st.LastVideo)
	assert.Equal(t, uint64(2), st.Attempts)
	assert.Equal(t, 0, st.FailedSweeps)
	assert.False(t, st.LastSuccessAt.IsZero())
}

func TestStepStopsAtFirstSuccess(t *testing.T) {
	c := cat("afternoon")
	h := newHarness(t, []schedule.Category{c},
		map[string][]string{c.Dir: {"/v/1.mp4", "/v/2.mp4", "/v/3.mp4"}})

	rep := h.loop.Step(context.Background())
	assert.Equal(t, []string{"/v/1.mp4"}, rep.Attempted)
	assert.Equal(t, []string{"/v/1.mp4"}, h.attempt.played)
	require.Len(t, h.attempt.ids, 1)
	assert.NotEmpty(t, h.attempt.ids[0], "attempt carries a correlation id")
}

func TestStepEmptyCatalogBacksOff(t *testing.T) {
	night := cat("night")
	late := cat("late_night")
	h := newHarness(t, []schedule.Category{night, late},
		map[string][]string{late.Dir: {"/v/late.mp4"}})

	rep := h.loop.Step(context.Background())
	assert.True(t, rep.BackedOff)
	assert.Empty(t, rep.Attempted)
	assert.Equal(t, []time.Duration{10 * time.Second}, h.sleeper.slept)
	assert.Equal(t, 0, h.loop.History().Len("night"))
	assert.Equal(t, StateBackingOff, h.loop.Snapshot().State)

	// After the backoff the category is resolved again.
	rep = h.loop.Step(context.Background())
	assert.Equal(t, "late_night", rep.Category)
	assert.True(t, rep.Changed)
	assert.Equal(t, "/v/late.mp4", rep.Played)
	assert.Equal(t, 2, h.resolver.calls)
	assert.Equal(t, []string{night.Dir, late.Dir}, h.scanner.calls)
}

func TestStepEmptyWarningThrottledPerCategory(t *testing.T) {
	night, late := cat("night"), cat("late_night")
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	loop, err := New(Config{
		Resolver:  &fakeResolver{seq: []schedule.Category{night, night, late, late}},
		Scanner:   &fakeScanner{dirs: map[string][]string{}},
		Attempter: &fakeAttempter{failing: map[string]bool{}},
		Logger:    &logger,
		Sleep:     (&sleepRecorder{}).Sleep,
	})
	require.NoError(t, err)

	warnings := func() int { return strings.Count(buf.String(), `"event":"catalog.empty"`) }

	loop.Step(context.Background())
	loop.Step(context.Background())
	assert.Equal(t, 1, warnings(), "repeated empty scans of one category are throttled")

	loop.Step(context.Background())
	assert.Equal(t, 2, warnings(), "a newly resolved empty category warns at once")

	loop.Step(context.Background())
	assert.Equal(t, 2, warnings())
}

func TestStepResetsExhaustedHistory(t *testing.T) {
	c := cat("evening")
	files := []string{"/v/A.mp4", "/v/B.mp4", "/v/C.mp4"}
	h := newHarness(t, []schedule.Category{c}, map[string][]string{c.Dir: files})
	for _, f := range files {
		h.loop.History().MarkPlayed("evening", catalog.Video{Path: f})
	}

	rep := h.loop.Step(context.Background())
	assert.True(t, rep.Reset)
	assert.Equal(t, files, rep.Candidates)
	assert.Equal(t, "/v/A.mp4", rep.Played)
	assert.Equal(t, []string{"/v/A.mp4"}, h.loop.History().Played("evening"))
	assert.Equal(t, uint64(1), h.loop.Snapshot().Resets)
}

func TestStepFullSweepFailure(t *testing.T) {
	c := cat("early_morning")
	files := []string{"/v/x.mp4", "/v/y.mp4"}
	h := newHarness(t, []schedule.Category{c}, map[string][]string{c.Dir: files}, files...)

	rep := h.loop.Step(context.Background())
	assert.Equal(t, files, rep.Attempted)
	assert.Empty(t, rep.Played)
	assert.Equal(t, 0, h.loop.History().Len("early_morning"))
	assert.Equal(t, []time.Duration{time.Second}, h.sleeper.slept, "falls through to advancing")

	st := h.loop.Snapshot()
	assert.Equal(t, 1, st.FailedSweeps)
	assert.Equal(t, "failed", st.LastOutcome)
	assert.Equal(t, string(encoder.ReasonKeyword), st.LastReason)

	// A later success clears the failure streak.
	h.attempt.failing = map[string]bool{}
	h.loop.Step(context.Background())
	assert.Equal(t, 0, h.loop.Snapshot().FailedSweeps)
}

func TestStepDetectsCategoryChange(t *testing.T) {
	a, b := cat("noon"), cat("afternoon")
	h := newHarness(t, []schedule.Category{a, a, b},
		map[string][]string{a.Dir: {"/v/n.mp4"}, b.Dir: {"/v/a.mp4"}})

	first := h.loop.Step(context.Background())
	second := h.loop.Step(context.Background())
	third := h.loop.Step(context.Background())

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.True(t, third.Changed)
	assert.Equal(t, "afternoon", h.loop.Snapshot().Category)
	assert.Equal(t, uint64(3), h.loop.Snapshot().Iterations)
}

func TestStepHistoryIsPerCategory(t *testing.T) {
	a, b := cat("noon"), cat("night")
	h := newHarness(t, []schedule.Category{a, b},
		map[string][]string{a.Dir: {"/v/shared.mp4"}, b.Dir: {"/v/shared.mp4"}})

	h.loop.Step(context.Background())
	rep := h.loop.Step(context.Background())
	assert.False(t, rep.Reset)
	assert.Equal(t, "/v/shared.mp4", rep.Played)
	assert.Equal(t, 1, h.loop.History().Len("noon"))
	assert.Equal(t, 1, h.loop.History().Len("night"))
}

type cancelingAttempter struct {
	cancel context.CancelFunc
	calls  int
}

func (a *cancelingAttempter) Attempt(_ context.Context, v catalog.Video) encoder.Result {
	a.calls++
	a.cancel()
	return encoder.Result{Video: v, Outcome: encoder.Failed, Reason: encoder.ReasonCanceled}
}

func TestStepCanceledAttemptIsNotRecorded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cat("morning")
	att := &cancelingAttempter{cancel: cancel}
	sleeper := &sleepRecorder{}
	l, err := New(Config{
		Resolver:  &fakeResolver{seq: []schedule.Category{c}},
		Scanner:   &fakeScanner{dirs: map[string][]string{c.Dir: {"/v/1.mp4", "/v/2.mp4"}}},
		Attempter: att,
		History:   history.NewTracker(),
		Sleep:     sleeper.Sleep,
		Shuffle:   func([]catalog.Video) {},
	})
	require.NoError(t, err)

	rep := l.Step(ctx)
	assert.Equal(t, 1, att.calls)
	assert.Empty(t, rep.Played)
	assert.Equal(t, 0, l.History().Len("morning"))
	assert.Equal(t, 0, l.Snapshot().FailedSweeps)
}

func TestRunStopsOnCancel(t *testing.T) {
	c := cat("morning")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := New(Config{
		Resolver:        &fakeResolver{seq: []schedule.Category{c}},
		Scanner:         &fakeScanner{dirs: map[string][]string{}},
		Attempter:       &fakeAttempter{},
		BackoffInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return l.Snapshot().Iterations >= 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
	assert.False(t, l.Snapshot().StartedAt.IsZero())
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestShuffleVideosKeepsElements(t *testing.T) {
	videos := []catalog.Video{{Path: "a"}, {Path: "b"}, {Path: "c"}, {Path: "d"}}
	shuffleVideos(videos)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, catalog.Paths(videos))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "backing_off", StateBackingOff.String())
	assert.Equal(t, "unknown", State(99).String())
	b, err := StateAttempting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "attempting", string(b))
}
