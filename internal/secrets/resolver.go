// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package secrets

import (
	"log/slog"
	"os"
	"sync"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// Resolver resolves provider API keys through a fixed chain: in-memory
// cache, then the persisted Store, then the process environment. A key
// found only in the environment is written back to the Store so later
// runs resolve it without the variable set; that write is logged rather
// than silent.
type Resolver struct {
	mu        sync.Mutex
	store     Store
	cache     map[string]string
	lookupEnv func(string) (string, bool) // injectable for tests
}

// NewResolver creates a Resolver over the given Store.
func NewResolver(store Store) *Resolver {
	return &Resolver{
		store:     store,
		cache:     make(map[string]string),
		lookupEnv: os.LookupEnv,
	}
}

// APIKey resolves the API key for a provider. envKey names the environment
// variable consulted when neither the cache nor the Store has a value.
// ok is false when the key is unresolved anywhere; callers treat that as
// "not configured", not as a retryable error.
func (r *Resolver) APIKey(providerID, envKey string) (key string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, hit := r.cache[providerID]; hit {
		return cached, true
	}

	name := APIKeyName(providerID)

	if stored, err := r.store.Get(name); err == nil && stored != "" {
		r.cache[providerID] = stored
		return stored, true
	}

	if envKey == "" {
		return "", false
	}

	val, present := r.lookupEnv(envKey)
	if !present || val == "" {
		return "", false
	}

	slog.Info("resolved provider credential from environment, persisting to store",
		"provider", providerID,
		"env_key", envKey,
	)
	if err := r.store.Set(name, val); err != nil {
		slog.Warn("failed to persist credential resolved from environment",
			"provider", providerID,
			"error", err,
		)
	}

	r.cache[providerID] = val
	return val, true
}

// Set stores an API key for a provider and primes the cache.
func (r *Resolver) Set(providerID, key string) error {
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "api key must not be empty",
			tderr.FieldProvider(providerID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Set(APIKeyName(providerID), key); err != nil {
		return err
	}
	r.cache[providerID] = key
	return nil
}

// Forget removes a provider's key from both the cache and the Store.
// A missing stored key is not an error.
func (r *Resolver) Forget(providerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.cache, providerID)

	err := r.store.Delete(APIKeyName(providerID))
	if err != nil && !tderr.IsNotFound(err) {
		return err
	}
	return nil
}

// Reset clears the in-memory cache. The persisted Store is untouched.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
}

// SetLookupEnv overrides the environment source (for testing).
func (r *Resolver) SetLookupEnv(fn func(string) (string, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookupEnv = fn
}
