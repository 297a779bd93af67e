// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"os"

	"github.com/ManuGH/dayloop/internal/daemon"
	"github.com/spf13/cobra"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the playback daemon until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(os.Stdout)
			if err != nil {
				return err
			}
			app, err := daemon.Bootstrap(cfg, daemon.DefaultServerConfig())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
