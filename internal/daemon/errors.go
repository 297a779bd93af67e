// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingLoop is returned when no playback loop is provided
	ErrMissingLoop = errors.New("playback loop is required")

	// ErrMissingOpsHandler is returned when an ops listen address is set without a handler
	ErrMissingOpsHandler = errors.New("ops handler is required when ops listen address is set")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrManagerStarted is returned when Start is called twice
	ErrManagerStarted = errors.New("manager already started")

	// ErrAlreadyRunning is returned when another daemon holds the instance lock
	ErrAlreadyRunning = errors.New("another dayloop instance is running")

	// ErrServerStartFailed is returned when a server fails to start
	ErrServerStartFailed = errors.New("server failed to start")
)
