// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/provider"
	"github.com/taskdeck/taskdeck/internal/secrets"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/store/sqlite"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// secretStoreFactory creates the credential backing store. A package-level
// variable so tests can substitute an in-memory implementation.
var secretStoreFactory = func() secrets.Store {
	return secrets.NewKeyringStore()
}

// buildClient assembles the agent client and its collaborators from config.
// The returned ExecutionStore must be closed by the caller.
func buildClient(cfg *config.Config) (*agent.Client, store.ExecutionStore, error) {
	registry, err := provider.NewRegistry(cfg.ProviderTable()...)
	if err != nil {
		return nil, nil, err
	}

	execs, err := buildExecutionStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	policy := cfg.RetryPolicy()
	client := agent.NewClient(registry, secrets.NewResolver(secretStoreFactory()), agent.ClientOptions{
		RetryPolicy: &policy,
		Transport:   cfg.TransportOptions(),
		Prompt:      cfg.PromptLimits(),
		Executions:  execs,
	})
	return client, execs, nil
}

func buildExecutionStore(cfg *config.Config) (store.ExecutionStore, error) {
	if cfg.Storage.Backend == "memory" {
		return store.NewMemStore(), nil
	}

	path := cfg.Storage.Path
	if path == "" {
		var err error
		path, err = config.DefaultStoragePath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "creating storage directory", tderr.FieldPath(filepath.Dir(path)))
	}
	return sqlite.NewExecutionStore(path)
}

// resolveSkillsDir returns the configured skills directory or the default.
func resolveSkillsDir(cfg *config.Config) string {
	if cfg.Skills.Dir != "" {
		return cfg.Skills.Dir
	}
	dir, err := config.DefaultSkillsDir()
	if err != nil {
		return ""
	}
	return dir
}
