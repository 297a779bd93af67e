// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"

	"github.com/ManuGH/dayloop/internal/config"
	"github.com/ManuGH/dayloop/internal/log"
	"github.com/ManuGH/dayloop/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "dayloop",
		Short:         "Endless time-of-day video restreamer",
		Long:          "dayloop picks a video for the current time-of-day category, restreams it through an encoder and moves on when it ends or breaks.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML)")

	root.AddCommand(
		newRunCmd(opts),
		newConfigCmd(opts),
		newScheduleCmd(opts),
		newScanCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and applies its log settings. Logs go to
// logOut so that command output on stdout stays clean.
func (o *rootOptions) load(logOut io.Writer) (config.AppConfig, error) {
	cfg, err := config.NewLoader(o.configPath, version.Version).Load()
	if err != nil {
		return cfg, err
	}
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Output:  logOut,
		Service: cfg.Log.Service,
		Version: version.Version,
	})
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "dayloop "+version.String())
		},
	}
}
