// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/dayloop/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

// ServerConfig holds ops listener timeouts and the shutdown budget.
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns the timeouts used by dayloop run.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Manager manages the daemon lifecycle: the playback loop, the ops listener
// and shutdown.
type Manager interface {
	// Start runs all components and blocks until ctx is cancelled or one fails
	Start(ctx context.Context) error

	// Shutdown stops the ops listener and runs the shutdown hooks
	Shutdown(ctx context.Context) error

	// RegisterShutdownHook registers a function to be called during shutdown
	RegisterShutdownHook(name string, hook ShutdownHook)

	// OpsAddr returns the bound ops address, or "" when disabled or not started
	OpsAddr() string
}

type manager struct {
	serverCfg ServerConfig
	deps      Deps

	opsServer   *http.Server
	opsListener net.Listener

	shutdownHooks []namedHook

	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

// namedHook represents a shutdown hook with a name for logging
type namedHook struct {
	name string
	hook ShutdownHook
}

// NewManager creates a new daemon manager with the given configuration and dependencies.
func NewManager(serverCfg ServerConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if serverCfg.ShutdownTimeout <= 0 {
		serverCfg.ShutdownTimeout = DefaultServerConfig().ShutdownTimeout
	}

	return &manager{
		serverCfg:     serverCfg,
		deps:          deps,
		logger:        deps.Logger.With().Str(log.FieldComponent, "manager").Logger(),
		shutdownHooks: make([]namedHook, 0),
	}, nil
}

// Start runs the playback loop and the ops listener under one errgroup.
// A listener failure stops the loop; cancelling ctx stops both.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerStarted
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str("ops_listen", m.deps.OpsListen).
		Dur("shutdown_timeout", m.serverCfg.ShutdownTimeout).
		Msg("starting daemon manager")

	if err := m.listenOps(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if m.opsServer != nil {
		g.Go(func() error {
			m.logger.Info().Str("addr", m.OpsAddr()).Msg("ops server listening")
			if err := m.opsServer.Serve(m.opsListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error().
					Err(err).
					Str(log.FieldEvent, "ops.server.failed").
					Msg("ops server failed")
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return m.deps.Loop.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			m.logger.Info().Msg("shutdown signal received")
		}
		// Detached but bounded so shutdown completes after the parent is cancelled.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
		defer cancel()
		return m.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (m *manager) listenOps() error {
	if m.deps.OpsListen == "" {
		return nil
	}
	ln, err := net.Listen("tcp", m.deps.OpsListen)
	if err != nil {
		return fmt.Errorf("%w: ops listener %s: %w", ErrServerStartFailed, m.deps.OpsListen, err)
	}

	m.mu.Lock()
	m.opsListener = ln
	m.opsServer = &http.Server{
		Handler:           m.deps.OpsHandler,
		ReadTimeout:       m.serverCfg.ReadTimeout,
		ReadHeaderTimeout: m.serverCfg.ReadTimeout / 2,
		WriteTimeout:      m.serverCfg.WriteTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
	}
	m.mu.Unlock()
	return nil
}

func (m *manager) OpsAddr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opsListener == nil {
		return ""
	}
	return m.opsListener.Addr().String()
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	hooks := append([]namedHook(nil), m.shutdownHooks...)
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if m.opsServer != nil {
		m.logger.Debug().Msg("shutting down ops server")
		if err := m.opsServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ops server shutdown: %w", err))
		}
	}

	m.logger.Debug().Int("hooks", len(hooks)).Msg("executing shutdown hooks")
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		hookStart := time.Now()
		if err := hook.hook(shutdownCtx); err != nil {
			m.logger.Error().
				Err(err).
				Str("hook", hook.name).
				Dur("duration", time.Since(hookStart)).
				Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.name, err))
			continue
		}
		m.logger.Debug().
			Str("hook", hook.name).
			Dur("duration", time.Since(hookStart)).
			Msg("shutdown hook completed")
	}

	if len(errs) > 0 {
		m.logger.Error().
			Int("error_count", len(errs)).
			Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	m.logger.Info().Msg("daemon manager stopped cleanly")
	return nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
// Hooks are executed in reverse registration order (LIFO).
func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.shutdownHooks = append(m.shutdownHooks, namedHook{
		name: name,
		hook: hook,
	})
	m.logger.Debug().Str("hook", name).Msg("registered shutdown hook")
}
