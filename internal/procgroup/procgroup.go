// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup starts encoder processes in their own process group and
// signals the whole group, so helper children never outlive an attempt.
package procgroup

import (
	"errors"
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/dayloop/internal/metrics"
)

var (
	ErrKillFailed = errors.New("kill operation failed")
)

// Terminate stops a process group gracefully.
// It sends SIGTERM, waits up to grace for exited to close, then sends SIGKILL.
// exited must be closed by whoever reaps the process (the goroutine calling Wait).
// It is safe to call on nil commands.
func Terminate(cmd *exec.Cmd, exited <-chan struct{}, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	_ = signalGroup(cmd, syscall.SIGTERM)

	select {
	case <-exited:
		return nil
	case <-time.After(grace):
	}

	if err := signalGroup(cmd, syscall.SIGKILL); err != nil {
		return errors.Join(ErrKillFailed, err)
	}
	return nil
}

// signalGroup delivers sig via Kill and records the result.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	err := Kill(cmd, sig)
	metrics.IncProcSignal(signalName(sig), signalResult(err))
	return err
}

func signalName(sig syscall.Signal) string {
	switch sig {
	case syscall.SIGKILL:
		return "SIGKILL"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return sig.String()
	}
}

func signalResult(err error) string {
	switch {
	case err == nil:
		return "sent"
	case errors.Is(err, syscall.ESRCH):
		return "esrch"
	default:
		return "error"
	}
}
