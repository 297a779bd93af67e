// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

//go:build unix

package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/ManuGH/dayloop/internal/config"
	"github.com/ManuGH/dayloop/internal/encoder"
	"github.com/ManuGH/dayloop/internal/testutil"
	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppConfig(t *testing.T, base string) config.AppConfig {
	t.Helper()
	path := testutil.WriteConfig(t, fmt.Sprintf(`
videos:
  base_path: %s
schedule:
  categories:
    - { name: allday, start: 0, end: 24 }
encoder:
  binary: sh
  args: ["-c", "sleep 0.05", "{input}"]
playback:
  backoff: 20ms
  advance: 10ms
  lock_file: %s
ops:
  listen: "127.0.0.1:0"
`, base, filepath.Join(base, "dayloop.lock")))
	cfg, err := config.NewLoader(path, "test").Load()
	require.NoError(t, err)
	return cfg
}

func TestBootstrapPlaysAndServesStatus(t *testing.T) {
	base := t.TempDir()
	videos := testutil.WriteFiles(t, filepath.Join(base, "allday"), "one.mp4", "two.mkv")

	app, err := Bootstrap(testAppConfig(t, base), testServerConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		return app.Loop.History().Len("allday") >= 1
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return app.Manager.OpsAddr() != "" }, time.Second, 5*time.Millisecond)
	client := &http.Client{Timeout: time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/status", app.Manager.OpsAddr()))
	require.NoError(t, err)
	var body struct {
		Playback struct {
			Category string `json:"category"`
		} `json:"playback"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	client.CloseIdleConnections()
	assert.Equal(t, "allday", body.Playback.Category)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.False(t, app.Supervisor.Active(), "encoder slot released on shutdown")
	assert.Subset(t, videos, app.Loop.History().Played("allday"))
}

func TestBootstrapRejectsBadTemplate(t *testing.T) {
	cfg := testAppConfig(t, t.TempDir())
	cfg.Encoder.Args = []string{"-c", "true"}
	_, err := Bootstrap(cfg, testServerConfig())
	assert.ErrorIs(t, err, encoder.ErrInputPlaceholder)
}

func TestRunRefusesSecondInstance(t *testing.T) {
	base := t.TempDir()
	cfg := testAppConfig(t, base)

	held := flock.New(cfg.Playback.LockFile)
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() { _ = held.Unlock() })

	app, err := Bootstrap(cfg, testServerConfig())
	require.NoError(t, err)
	err = app.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Empty(t, app.Manager.OpsAddr(), "nothing started without the lock")
}

func TestAcquireLockDisabled(t *testing.T) {
	app := &App{}
	release, err := app.acquireLock()
	require.NoError(t, err)
	release()
}

func TestWaitEncoderIdle(t *testing.T) {
	tmpl, err := encoder.NewTemplate("sh", []string{"-c", "true", "{input}"})
	require.NoError(t, err)
	sup, err := encoder.New(encoder.Config{Template: tmpl})
	require.NoError(t, err)

	assert.NoError(t, waitEncoderIdle(sup)(context.Background()))
}
