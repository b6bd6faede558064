// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// KeyringStore implements Store using the OS keyring via zalando/go-keyring.
// On macOS it uses Keychain, on Linux secret-service (D-Bus), and on Windows
// the Credential Manager.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a KeyringStore scoped to the Taskdeck service.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: Service}
}

func (s *KeyringStore) Get(key string) (string, error) {
	if key == "" {
		return "", tderr.New(tderr.CodeSecretInvalidInput, "secret get: key must not be empty")
	}

	val, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", tderr.Errorf(tderr.CodeSecretNotFound, "secret %s not found", key)
		}
		return "", tderr.Wrapf(err, tderr.CodeSecretStoreFailure, "retrieving secret %s", key)
	}
	return val, nil
}

func (s *KeyringStore) Set(key, value string) error {
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "secret set: key must not be empty")
	}

	if err := keyring.Set(s.service, key, value); err != nil {
		return tderr.Wrapf(err, tderr.CodeSecretStoreFailure, "storing secret %s", key)
	}
	return nil
}

func (s *KeyringStore) Delete(key string) error {
	if key == "" {
		return tderr.New(tderr.CodeSecretInvalidInput, "secret delete: key must not be empty")
	}

	if err := keyring.Delete(s.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return tderr.Errorf(tderr.CodeSecretNotFound, "secret %s not found", key)
		}
		return tderr.Wrapf(err, tderr.CodeSecretDeleteFailure, "deleting secret %s", key)
	}
	return nil
}
