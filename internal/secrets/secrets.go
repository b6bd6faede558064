// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package secrets

// Service is the namespace under which Taskdeck credentials are stored in
// the OS keyring.
const Service = "taskdeck"

// Store is the persisted key-value collaborator for credentials.
// Implementations may use OS keyrings or in-memory maps (tests).
type Store interface {
	// Get fetches the value for key. A missing key yields an error
	// satisfying tderr.IsNotFound.
	Get(key string) (string, error)

	// Set saves value under key, overwriting any previous value.
	Set(key, value string) error

	// Delete removes the value for key. A missing key yields an error
	// satisfying tderr.IsNotFound.
	Delete(key string) error
}

// APIKeyName returns the storage key under which a provider's API key is
// persisted.
func APIKeyName(providerID string) string {
	return Service + "_" + providerID + "_api_key"
}
