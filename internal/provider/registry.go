// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package provider

import (
	"sort"
	"strings"
	"sync"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// Registry holds the provider table and the default provider selection.
// Entries are registered once at startup; lookups are read-mostly.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Config
	defaultID string
}

// NewRegistry creates a Registry pre-loaded with the given configs.
// The first config becomes the default provider.
func NewRegistry(configs ...Config) (*Registry, error) {
	r := &Registry{providers: make(map[string]Config)}
	for _, cfg := range configs {
		if err := r.Register(cfg); err != nil {
			return nil, err
		}
	}
	if len(configs) > 0 {
		r.defaultID = configs[0].ID
	}
	return r, nil
}

// Register adds a provider config after validation. Re-registering an ID
// replaces the previous entry.
func (r *Registry) Register(cfg Config) error {
	if err := validate(cfg); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[cfg.ID] = cfg
	if r.defaultID == "" {
		r.defaultID = cfg.ID
	}
	return nil
}

// Get retrieves a provider config by ID.
func (r *Registry) Get(id string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.providers[id]
	if !ok {
		return Config{}, tderr.New(
			tderr.CodeProviderNotFound,
			"provider not found: "+id,
			tderr.FieldProvider(id),
		)
	}
	return cfg, nil
}

// Default returns the default provider config.
func (r *Registry) Default() (Config, error) {
	r.mu.RLock()
	id := r.defaultID
	r.mu.RUnlock()

	if id == "" {
		return Config{}, tderr.New(tderr.CodeProviderNotFound, "no providers registered")
	}
	return r.Get(id)
}

// SetDefault switches the default provider. The ID must be registered.
func (r *Registry) SetDefault(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[id]; !ok {
		return tderr.New(
			tderr.CodeProviderNotFound,
			"SetDefault: provider not registered: "+id,
			tderr.FieldProvider(id),
		)
	}
	r.defaultID = id
	return nil
}

// List returns all registered configs sorted by ID.
func (r *Registry) List() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Config, 0, len(r.providers))
	for _, cfg := range r.providers {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func validate(cfg Config) error {
	if cfg.ID == "" {
		return tderr.New(tderr.CodeProviderRequestInvalid, "provider config: id must not be empty")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return tderr.Errorf(tderr.CodeProviderRequestInvalid,
			"provider config %s: base URL %q must start with http:// or https://", cfg.ID, cfg.BaseURL)
	}
	if cfg.Model == "" {
		return tderr.Errorf(tderr.CodeProviderRequestInvalid, "provider config %s: model must not be empty", cfg.ID)
	}
	return nil
}
