// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the configured components together and owns the
// process lifecycle.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/dayloop/internal/api"
	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/ManuGH/dayloop/internal/config"
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/health"
	"github.com/ManuGH/dayloop/internal/history"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/playback"
	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

// encoderDrainPoll is how often the shutdown hook checks the encoder slot.
const encoderDrainPoll = 20 * time.Millisecond

// App is a fully wired dayloop instance.
type App struct {
	Config     config.AppConfig
	Loop       *playback.Loop
	Supervisor *encoder.Supervisor
	Health     *health.Manager
	Manager    Manager

	logger zerolog.Logger
}

// Bootstrap builds every component from a validated configuration.
func Bootstrap(cfg config.AppConfig, serverCfg ServerConfig) (*App, error) {
	logger := log.WithComponent("daemon")

	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, fmt.Errorf("build resolver: %w", err)
	}
	tmpl, err := cfg.Template()
	if err != nil {
		return nil, fmt.Errorf("build encoder template: %w", err)
	}

	sup, err := encoder.New(encoder.Config{
		Template:  tmpl,
		Keywords:  cfg.Encoder.Keywords,
		TailLines: cfg.Encoder.TailLines,
	})
	if err != nil {
		return nil, fmt.Errorf("build encoder supervisor: %w", err)
	}

	loop, err := playback.New(playback.Config{
		Resolver:        resolver,
		Scanner:         catalog.NewScanner(cfg.Videos.Extensions),
		Attempter:       sup,
		History:         history.NewTracker(),
		BackoffInterval: cfg.Playback.Backoff,
		AdvanceInterval: cfg.Playback.Advance,
	})
	if err != nil {
		return nil, fmt.Errorf("build playback loop: %w", err)
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewPlaybackChecker(loop.Snapshot))
	hm.RegisterChecker(health.NewEncoderBinaryChecker(cfg.Encoder.Binary))
	hm.RegisterChecker(health.NewDirectoryChecker("videos", cfg.Videos.BasePath))

	deps := Deps{
		Logger:    logger,
		Loop:      loop,
		OpsListen: cfg.Ops.Listen,
	}
	if cfg.Ops.Listen != "" {
		deps.OpsHandler, err = api.NewRouter(api.Deps{
			Version: cfg.Version,
			Health:  hm,
			Status:  loop.Snapshot,
		})
		if err != nil {
			return nil, fmt.Errorf("build ops router: %w", err)
		}
	}

	mgr, err := NewManager(serverCfg, deps)
	if err != nil {
		return nil, err
	}
	mgr.RegisterShutdownHook("encoder_drain", waitEncoderIdle(sup))

	return &App{
		Config:     cfg,
		Loop:       loop,
		Supervisor: sup,
		Health:     hm,
		Manager:    mgr,
		logger:     logger,
	}, nil
}

// Run blocks until SIGINT/SIGTERM or a component failure.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info().
		Str(log.FieldVersion, a.Config.Version).
		Int("categories", len(a.Config.Schedule.Categories)).
		Str("encoder", a.Config.Encoder.Binary).
		Msg("starting dayloop")

	release, err := a.acquireLock()
	if err != nil {
		return err
	}
	defer release()

	health.PerformStartupChecks(a.Config)
	return a.Manager.Start(ctx)
}

// acquireLock takes the per-host instance lock. The returned func releases it.
func (a *App) acquireLock() (func(), error) {
	path := a.Config.Playback.LockFile
	if path == "" {
		return func() {}, nil
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	a.logger.Debug().Str("lock", path).Msg("instance lock acquired")
	return func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn().Err(err).Str("lock", path).Msg("failed to release instance lock")
		}
	}, nil
}

// waitEncoderIdle waits until the supervisor has released its process slot.
// Cancelling the attempt context already signals the process group; this hook
// keeps the daemon from exiting before the encoder is reaped.
func waitEncoderIdle(sup *encoder.Supervisor) ShutdownHook {
	return func(ctx context.Context) error {
		t := time.NewTicker(encoderDrainPoll)
		defer t.Stop()
		for sup.Active() {
			select {
			case <-ctx.Done():
				return fmt.Errorf("encoder still running: %w", ctx.Err())
			case <-t.C:
			}
		}
		return nil
	}
}
