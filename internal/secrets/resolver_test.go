// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package secrets_test

import (
	"testing"

	"github.com/taskdeck/taskdeck/internal/secrets"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestResolver_UnresolvedAnywhere(t *testing.T) {
	r := secrets.NewResolver(secrets.NewMemStore())
	r.SetLookupEnv(noEnv)

	key, ok := r.APIKey("openrouter", "OPENROUTER_API_KEY")
	assert.False(t, ok)
	assert.Empty(t, key)
}

func TestResolver_ResolvesFromStore(t *testing.T) {
	store := secrets.NewMemStore()
	require.NoError(t, store.Set(secrets.APIKeyName("openrouter"), "sk-stored"))

	r := secrets.NewResolver(store)
	r.SetLookupEnv(noEnv)

	key, ok := r.APIKey("openrouter", "OPENROUTER_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "sk-stored", key)
}

func TestResolver_EnvHitIsWrittenBack(t *testing.T) {
	store := secrets.NewMemStore()
	r := secrets.NewResolver(store)
	r.SetLookupEnv(func(name string) (string, bool) {
		if name == "OPENROUTER_API_KEY" {
			return "sk-from-env", true
		}
		return "", false
	})

	key, ok := r.APIKey("openrouter", "OPENROUTER_API_KEY")
	require.True(t, ok)
	assert.Equal(t, "sk-from-env", key)

	// The environment hit must be persisted for future runs.
	persisted, err := store.Get(secrets.APIKeyName("openrouter"))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", persisted)
}

func TestResolver_CachePreferredOverStore(t *testing.T) {
	store := secrets.NewMemStore()
	require.NoError(t, store.Set(secrets.APIKeyName("openai"), "sk-first"))

	r := secrets.NewResolver(store)
	r.SetLookupEnv(noEnv)

	key, ok := r.APIKey("openai", "OPENAI_API_KEY")
	require.True(t, ok)
	require.Equal(t, "sk-first", key)

	// Mutating the store behind the resolver's back does not affect the
	// cached value for the process lifetime.
	require.NoError(t, store.Set(secrets.APIKeyName("openai"), "sk-second"))
	key, ok = r.APIKey("openai", "OPENAI_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "sk-first", key)
}

func TestResolver_ResetClearsCacheOnly(t *testing.T) {
	store := secrets.NewMemStore()
	require.NoError(t, store.Set(secrets.APIKeyName("openai"), "sk-first"))

	r := secrets.NewResolver(store)
	r.SetLookupEnv(noEnv)

	_, ok := r.APIKey("openai", "OPENAI_API_KEY")
	require.True(t, ok)

	require.NoError(t, store.Set(secrets.APIKeyName("openai"), "sk-second"))
	r.Reset()

	key, ok := r.APIKey("openai", "OPENAI_API_KEY")
	assert.True(t, ok)
	assert.Equal(t, "sk-second", key)
}

func TestResolver_SetPersistsAndPrimesCache(t *testing.T) {
	store := secrets.NewMemStore()
	r := secrets.NewResolver(store)
	r.SetLookupEnv(noEnv)

	require.NoError(t, r.Set("ollama", "sk-manual"))

	key, ok := r.APIKey("ollama", "")
	assert.True(t, ok)
	assert.Equal(t, "sk-manual", key)

	persisted, err := store.Get(secrets.APIKeyName("ollama"))
	require.NoError(t, err)
	assert.Equal(t, "sk-manual", persisted)
}

func TestResolver_SetRejectsEmptyKey(t *testing.T) {
	r := secrets.NewResolver(secrets.NewMemStore())
	err := r.Set("openai", "")
	require.Error(t, err)
	assert.True(t, tderr.IsInvalidInput(err))
}

func TestResolver_ForgetRemovesEverywhere(t *testing.T) {
	store := secrets.NewMemStore()
	r := secrets.NewResolver(store)
	r.SetLookupEnv(noEnv)

	require.NoError(t, r.Set("openai", "sk-x"))
	require.NoError(t, r.Forget("openai"))

	_, ok := r.APIKey("openai", "")
	assert.False(t, ok)

	_, err := store.Get(secrets.APIKeyName("openai"))
	assert.True(t, tderr.IsNotFound(err))

	// Forgetting a provider with no stored key is not an error.
	assert.NoError(t, r.Forget("openai"))
}

func TestMemStore_NotFound(t *testing.T) {
	store := secrets.NewMemStore()

	_, err := store.Get("missing")
	assert.True(t, tderr.HasCode(err, tderr.CodeSecretNotFound))

	err = store.Delete("missing")
	assert.True(t, tderr.HasCode(err, tderr.CodeSecretNotFound))
}

func TestMemStore_EmptyKeyRejected(t *testing.T) {
	store := secrets.NewMemStore()

	_, err := store.Get("")
	assert.True(t, tderr.IsInvalidInput(err))
	assert.True(t, tderr.IsInvalidInput(store.Set("", "v")))
	assert.True(t, tderr.IsInvalidInput(store.Delete("")))
}
