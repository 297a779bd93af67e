// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package encoder runs the external encoder for one video at a time and turns
// its diagnostic stream into a Success/Failed verdict.
package encoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/metrics"
	"github.com/ManuGH/dayloop/internal/procgroup"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTailLines = 50
	DefaultStopGrace = 3 * time.Second

	maxLineBytes = 64 * 1024
)

// ErrBusy is returned when an attempt starts while another encoder is alive.
var ErrBusy = errors.New("encoder already running")

// Config configures a Supervisor.
type Config struct {
	Template  Template
	Keywords  []string      // empty selects DefaultKeywords
	TailLines int           // diagnostic lines kept for the result
	StopGrace time.Duration // SIGTERM grace before SIGKILL on shutdown
	Logger    *zerolog.Logger // nil selects the global component logger
}

// Supervisor owns the single active encoder slot.
type Supervisor struct {
	template  Template
	matcher   *Matcher
	tailLines int
	stopGrace time.Duration
	logger    zerolog.Logger

	mu     sync.Mutex
	active *exec.Cmd
}

// New validates cfg and returns a Supervisor.
func New(cfg Config) (*Supervisor, error) {
	if err := cfg.Template.Validate(); err != nil {
		return nil, err
	}
	if cfg.TailLines <= 0 {
		cfg.TailLines = DefaultTailLines
	}
	if cfg.StopGrace <= 0 {
		cfg.StopGrace = DefaultStopGrace
	}
	logger := log.WithComponent("encoder")
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str(log.FieldComponent, "encoder").Logger()
	}
	return &Supervisor{
		template:  cfg.Template,
		matcher:   NewMatcher(cfg.Keywords),
		tailLines: cfg.TailLines,
		stopGrace: cfg.StopGrace,
		logger:    logger,
	}, nil
}

// Active reports whether an encoder process is currently running.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

type detection struct {
	keyword string
	line    string
}

// Attempt plays video through the encoder and blocks until the process has
// exited and its diagnostic reader has finished.
//
// The outcome is Failed when a diagnostic line matches the keyword table (the
// process group is killed at once), when the process cannot be started, or
// when ctx is cancelled. Otherwise it is Success, whatever the exit code.
// There is no runtime limit: an encoder that never exits and never prints a
// flagged line keeps Attempt blocked until ctx is cancelled.
func (s *Supervisor) Attempt(ctx context.Context, video catalog.Video) Result {
	id := log.AttemptIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = log.ContextWithAttemptID(ctx, id)
	}
	logger := log.WithContext(ctx, s.logger).With().Str(log.FieldPath, video.Path).Logger()

	res := Result{
		AttemptID: id,
		Video:     video,
		ExitCode:  -1,
		Started:   time.Now(),
	}
	finish := func(o Outcome, reason Reason, err error) Result {
		res.Outcome = o
		res.Reason = reason
		res.Err = err
		res.Duration = time.Since(res.Started)
		return res
	}

	if err := ctx.Err(); err != nil {
		return finish(Failed, ReasonCanceled, err)
	}

	cmd := exec.Command(s.template.Binary, s.template.Build(video.Path)...)
	procgroup.Set(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		return finish(Failed, ReasonStart, fmt.Errorf("stderr pipe: %w", err))
	}
	cmd.Stderr = pw

	if err := s.start(cmd); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		reason := ReasonStart
		if errors.Is(err, ErrBusy) {
			reason = ReasonBusy
		} else {
			metrics.IncEncoderFault(string(ReasonStart))
		}
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "encoder.start_failed").
			Msg("failed to start encoder")
		return finish(Failed, reason, err)
	}
	// The child holds its own copy; ours must go so EOF arrives on exit.
	_ = pw.Close()
	metrics.SetEncoderRunning(true)

	logger.Info().
		Str(log.FieldEvent, "encoder.started").
		Int(log.FieldPID, cmd.Process.Pid).
		Msg("encoder started")

	ring := NewLineRing(s.tailLines)
	exited := make(chan struct{})
	var (
		waitErr error
		fault   *detection
	)

	// Shutdown path only; it finishes before the slot is released.
	stopDone := make(chan struct{})
	stopWatch := context.AfterFunc(ctx, func() {
		defer close(stopDone)
		s.terminate(cmd, exited)
	})

	var g errgroup.Group
	g.Go(func() error {
		waitErr = cmd.Wait()
		close(exited)
		return nil
	})
	g.Go(func() error {
		fault = s.monitor(cmd, pr, ring, logger)
		return nil
	})
	_ = g.Wait()

	if !stopWatch() {
		<-stopDone
	}
	_ = pr.Close()
	s.release(cmd)
	metrics.SetEncoderRunning(false)

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	res.Tail = ring.Lines()

	switch {
	case fault != nil:
		res.Keyword = fault.keyword
		res.Line = fault.line
		metrics.IncEncoderFault(fault.keyword)
		logger.Warn().
			Str(log.FieldEvent, "encoder.aborted").
			Str(log.FieldKeyword, fault.keyword).
			Int(log.FieldExitCode, res.ExitCode).
			Msg("encoder aborted after diagnostic fault")
		return finish(Failed, ReasonKeyword, fmt.Errorf("diagnostic matched %q: %s", fault.keyword, fault.line))
	case ctx.Err() != nil:
		logger.Info().
			Str(log.FieldEvent, "encoder.canceled").
			Msg("encoder stopped by shutdown")
		return finish(Failed, ReasonCanceled, ctx.Err())
	default:
		logger.Info().
			Str(log.FieldEvent, "encoder.finished").
			Int(log.FieldExitCode, res.ExitCode).
			AnErr("wait_err", waitErr).
			Dur("duration", time.Since(res.Started)).
			Msg("encoder finished")
		return finish(Success, ReasonNone, nil)
	}
}

// monitor reads diagnostic lines until EOF or the first keyword match.
// On a match it kills the process group and stops reading.
func (s *Supervisor) monitor(cmd *exec.Cmd, r io.Reader, ring *LineRing, logger zerolog.Logger) *detection {
	// cut is set when the last token is a chunk of an overlong line. The
	// tail of that chunk is kept so a keyword straddling the cut still matches.
	var cut bool
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := scanDiagnosticLines(data, atEOF)
		cut = token != nil && advance == len(token) && !atEOF
		return advance, token, err
	})

	overlap := max(s.matcher.MaxLen()-1, 0)
	carry := ""
	for scanner.Scan() {
		chunk := scanner.Text()
		line := carry + chunk
		carry = ""
		if cut && overlap > 0 {
			carry = chunk[max(len(chunk)-overlap, 0):]
		}
		if chunk == "" {
			continue
		}
		ring.Add(chunk)

		keyword, ok := s.matcher.Match(line)
		if !ok {
			logger.Debug().Str(log.FieldLine, chunk).Msg("encoder diagnostic")
			continue
		}

		logger.Warn().
			Str(log.FieldEvent, "encoder.fault_detected").
			Str(log.FieldKeyword, keyword).
			Str(log.FieldLine, line).
			Msg("encoder diagnostic matched fault keyword")
		s.kill(cmd)
		return &detection{keyword: keyword, line: line}
	}
	if err := scanner.Err(); err != nil {
		logger.Debug().Err(err).Msg("diagnostic stream read ended with error")
	}
	return nil
}

// scanDiagnosticLines splits on \n, \r\n or a bare \r, so carriage-return
// progress updates count as lines. Overlong lines are cut at maxLineBytes and
// returned without consuming a terminator.
func scanDiagnosticLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF || len(data) >= maxLineBytes {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (s *Supervisor) start(cmd *exec.Cmd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrBusy
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.template.Binary, err)
	}
	s.active = cmd
	return nil
}

func (s *Supervisor) release(cmd *exec.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == cmd {
		s.active = nil
	}
}

// kill SIGKILLs cmd's group if cmd still owns the active slot.
func (s *Supervisor) kill(cmd *exec.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != cmd {
		return
	}
	if err := procgroup.Kill(cmd, syscall.SIGKILL); err != nil {
		s.logger.Warn().Err(err).Int(log.FieldPID, cmd.Process.Pid).Msg("failed to kill encoder")
		metrics.IncProcSignal("SIGKILL", "error")
		return
	}
	metrics.IncProcSignal("SIGKILL", "sent")
}

func (s *Supervisor) terminate(cmd *exec.Cmd, exited <-chan struct{}) {
	s.mu.Lock()
	owned := s.active == cmd
	s.mu.Unlock()
	if !owned {
		return
	}
	if err := procgroup.Terminate(cmd, exited, s.stopGrace); err != nil {
		s.logger.Warn().Err(err).Int(log.FieldPID, cmd.Process.Pid).Msg("failed to terminate encoder")
	}
}
