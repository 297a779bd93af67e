// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/ManuGH/dayloop/internal/playback"
)

// PlaybackChecker reports the playback loop. It is degraded while the loop
// backs off on an empty catalog or after a sweep in which no candidate played.
type PlaybackChecker struct {
	snapshot func() playback.Status
}

// NewPlaybackChecker creates a checker over a status source, usually Loop.Snapshot.
func NewPlaybackChecker(snapshot func() playback.Status) *PlaybackChecker {
	return &PlaybackChecker{snapshot: snapshot}
}

func (c *PlaybackChecker) Name() string {
	return "playback"
}

func (c *PlaybackChecker) Check(_ context.Context) CheckResult {
	st := c.snapshot()

	switch {
	case st.Iterations == 0:
		return CheckResult{Status: StatusHealthy, Message: "starting"}
	case st.State == playback.StateBackingOff:
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("no videos for category %q, backing off", st.Category),
		}
	case st.FailedSweeps > 0:
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d consecutive sweeps without a successful video", st.FailedSweeps),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("category %q, state %s", st.Category, st.State),
	}
}

// EncoderBinaryChecker checks that the encoder binary can be found.
type EncoderBinaryChecker struct {
	binary   string
	lookPath func(string) (string, error)
}

// NewEncoderBinaryChecker creates a checker for the encoder executable.
func NewEncoderBinaryChecker(binary string) *EncoderBinaryChecker {
	return &EncoderBinaryChecker{binary: binary, lookPath: exec.LookPath}
}

func (c *EncoderBinaryChecker) Name() string {
	return "encoder_binary"
}

func (c *EncoderBinaryChecker) Check(_ context.Context) CheckResult {
	path, err := c.lookPath(c.binary)
	if err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   err.Error(),
			Message: c.binary,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: path}
}

// DirectoryChecker checks that the video base directory exists. A missing
// directory only degrades: categories back off until videos appear.
type DirectoryChecker struct {
	name string
	path string
}

// NewDirectoryChecker creates a checker for directory existence
func NewDirectoryChecker(name, path string) *DirectoryChecker {
	return &DirectoryChecker{name: name, path: path}
}

func (c *DirectoryChecker) Name() string {
	return c.name
}

func (c *DirectoryChecker) Check(_ context.Context) CheckResult {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusDegraded,
				Error:   "directory not found",
				Message: c.path,
			}
		}
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: c.path}
	}
	if !info.IsDir() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Error:   "expected directory, got file",
			Message: c.path,
		}
	}
	return CheckResult{Status: StatusHealthy, Message: c.path}
}
