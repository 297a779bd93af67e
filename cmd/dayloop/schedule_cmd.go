// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "List categories and the one active now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := cfg.Resolver()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				t, err := time.ParseInLocation("15:04", at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at %q (want HH:MM): %w", at, err)
				}
				now = t
			}
			active := res.Resolve(now)

			cats := res.Categories()
			rows := make([][]string, 0, len(cats))
			highlight := -1
			for i, c := range cats {
				marker := ""
				if c.Name == active.Name {
					marker = "*"
					highlight = i
				}
				rows = append(rows, []string{marker, c.Name, fmt.Sprintf("%02d-%02d", c.Start, c.End), c.Dir})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"", "Category", "Hours", "Dir"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				highlight,
				shouldColorize(out),
			))
			fmt.Fprintf(cmd.OutOrStdout(), "active at %s: %s\n", now.Format("15:04"), active.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "resolve at this local time (HH:MM) instead of now")
	return cmd
}
