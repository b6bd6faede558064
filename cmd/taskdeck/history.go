// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <card-id>",
		Short: "Show recorded executions for a card",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum number of records")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	execs, err := buildExecutionStore(cfg)
	if err != nil {
		return err
	}
	defer execs.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := execs.ListByCard(cmd.Context(), args[0], limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintf(w, "No executions recorded for card %q.\n", args[0])
		return nil
	}

	for _, rec := range recs {
		fmt.Fprintf(w, "%s  %-8s %s/%s  attempts=%d", rec.StartedAt.Local().Format(time.DateTime), rec.Status, rec.Provider, rec.Model, rec.Attempts)
		if !rec.CompletedAt.IsZero() {
			fmt.Fprintf(w, "  took=%s", rec.CompletedAt.Sub(rec.StartedAt).Round(time.Millisecond))
		}
		fmt.Fprintln(w)

		if rec.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", rec.Error)
		}
		for _, p := range rec.FilesCreated {
			fmt.Fprintf(w, "    created: %s\n", p)
		}
		for _, p := range rec.FilesModified {
			fmt.Fprintf(w, "    modified: %s\n", p)
		}
	}
	return nil
}
