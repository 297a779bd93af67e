// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"slices"

	"github.com/ManuGH/dayloop/internal/catalog"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <category>",
		Short: "List the playable videos of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := cfg.Resolver()
			if err != nil {
				return err
			}
			cat, ok := res.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}

			videos := catalog.NewScanner(cfg.Videos.Extensions).Scan(cmd.Context(), cat.Dir)
			paths := catalog.Paths(videos)
			slices.Sort(paths)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			cmd.PrintErrf("%d videos in %s\n", len(paths), cat.Dir)
			return nil
		},
	}
}
