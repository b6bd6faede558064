// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package secrets

import (
	"sync"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// MemStore is an in-memory Store for tests and environments without an
// OS keyring.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, error) {
	if key == "" {
		return "", tderr.New(tderr.CodeSecretInvalidInput, "secret get: key must not be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.values[key]
	if !ok {
		return "", tderr.Errorf(tderr.CodeSecretNotFound, "secret %s not found", key)
	}
	return val, nil
}

func (s *MemStore) Set(key, value string) error {
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "secret set: key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "secret delete: key must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return tderr.Errorf(tderr.CodeSecretNotFound, "secret %s not found", key)
	}
	delete(s.values, key)
	return nil
}
