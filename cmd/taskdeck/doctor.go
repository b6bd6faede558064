// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/taskdeck/taskdeck/internal/config"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check binary health, config, keychain access, provider credentials, and the skills directory.",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()

	checks := []struct {
		name string
		fn   func(*cobra.Command) string
	}{
		{"Binary", checkBinary},
		{"Config", checkConfig},
		{"Keychain", checkKeychain},
		{"Providers", checkProviders},
		{"Skills", checkSkills},
	}

	for _, c := range checks {
		if _, err := fmt.Fprintf(w, "%-12s %s\n", c.name+":", c.fn(cmd)); err != nil {
			return err
		}
	}
	return nil
}

func checkBinary(*cobra.Command) string {
	return fmt.Sprintf("taskdeck %s (%s/%s, Go %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func checkConfig(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if def, err := config.DefaultConfigPath(); err == nil {
			path = def
		}
	}
	if path == "" {
		return "defaults only"
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Sprintf("%s (not present, defaults apply)", path)
	}
	if _, err := config.Load(path); err != nil {
		return fmt.Sprintf("invalid: %s", err)
	}
	return path
}

func checkKeychain(*cobra.Command) string {
	store := secretStoreFactory()
	const probe = "taskdeck_doctor_probe"
	if err := store.Set(probe, "ok"); err != nil {
		return fmt.Sprintf("unavailable: %s", err)
	}
	_ = store.Delete(probe)
	return "available"
}

func checkProviders(cmd *cobra.Command) string {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Sprintf("config error: %s", err)
	}

	client, execs, err := buildClient(cfg)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	defer execs.Close()

	ready := 0
	table := cfg.ProviderTable()
	for _, p := range table {
		if client.IsConfigured(p.ID) {
			ready++
		}
	}
	return fmt.Sprintf("%d of %d configured (run 'taskdeck providers' for detail)", ready, len(table))
}

func checkSkills(cmd *cobra.Command) string {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Sprintf("config error: %s", err)
	}

	dir := resolveSkillsDir(cfg)
	if dir == "" {
		return "no skills directory"
	}
	skills, err := agent.LoadSkills(dir)
	if err != nil {
		return fmt.Sprintf("%s (error: %s)", dir, err)
	}
	return fmt.Sprintf("%s (%d skill(s))", dir, len(skills))
}
