// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/config"
)

// NewRootCmd creates the root taskdeck command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskdeck",
		Short:         "Taskdeck — run board cards through an LLM coding agent",
		Long:          "Taskdeck executes task cards against an LLM provider and writes the resulting files into the card's project folder.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newRunCmd(),
		newConfigureCmd(),
		newProvidersCmd(),
		newHistoryCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the config named by --config, or the default location.
// A missing default file is bootstrapped with commented defaults; failing
// that, built-in defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		config.WarnInsecurePermissions(path)
		return cfg, nil
	}

	path, err := config.DefaultConfigPath()
	if err != nil {
		path = ""
	}
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = config.BootstrapConfig()
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.WarnInsecurePermissions(path)
	return cfg, nil
}
