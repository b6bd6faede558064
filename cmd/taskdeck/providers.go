// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers and whether they are ready to use",
		RunE:  runProviders,
	}
}

func runProviders(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, execs, err := buildClient(cfg)
	if err != nil {
		return err
	}
	defer execs.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-12s %-42s %-28s %s\n", "ID", "MODEL", "BASE URL", "STATUS")
	for _, p := range cfg.ProviderTable() {
		status := "not configured"
		if client.IsConfigured(p.ID) {
			status = "ready"
		}
		marker := ""
		if p.ID == cfg.DefaultProvider {
			marker = " (default)"
		}
		fmt.Fprintf(w, "%-12s %-42s %-28s %s%s\n", p.ID, p.Model, p.BaseURL, status, marker)
	}
	return nil
}
