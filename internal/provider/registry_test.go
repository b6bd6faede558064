// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package provider_test

import (
	"testing"

	"github.com/taskdeck/taskdeck/internal/provider"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg, err := provider.NewRegistry(provider.Defaults()...)
	require.NoError(t, err)

	got, err := reg.Get("openrouter")
	require.NoError(t, err)
	assert.Equal(t, "https://openrouter.ai/api/v1", got.BaseURL)
	assert.Equal(t, "Taskdeck", got.Headers["X-Title"])
	assert.True(t, got.RequiresKey)

	_, err = reg.Get("nonexistent")
	require.Error(t, err)
	assert.True(t, tderr.HasCode(err, tderr.CodeProviderNotFound))
}

func TestRegistry_FirstConfigIsDefault(t *testing.T) {
	reg, err := provider.NewRegistry(provider.Defaults()...)
	require.NoError(t, err)

	def, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "openrouter", def.ID)
}

func TestRegistry_SetDefault(t *testing.T) {
	reg, err := provider.NewRegistry(provider.Defaults()...)
	require.NoError(t, err)

	require.NoError(t, reg.SetDefault("ollama"))
	def, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "ollama", def.ID)
	assert.False(t, def.RequiresKey)

	err = reg.SetDefault("nonexistent")
	require.Error(t, err)
	assert.True(t, tderr.HasCode(err, tderr.CodeProviderNotFound))
}

func TestRegistry_EmptyHasNoDefault(t *testing.T) {
	reg, err := provider.NewRegistry()
	require.NoError(t, err)

	_, err = reg.Default()
	require.Error(t, err)
	assert.True(t, tderr.HasCode(err, tderr.CodeProviderNotFound))
}

func TestRegistry_ListSorted(t *testing.T) {
	reg, err := provider.NewRegistry(provider.Defaults()...)
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "ollama", list[0].ID)
	assert.Equal(t, "openai", list[1].ID)
	assert.Equal(t, "openrouter", list[2].ID)
}

func TestRegistry_ValidationRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  provider.Config
	}{
		{"empty id", provider.Config{BaseURL: "https://x.test", Model: "m"}},
		{"bad url", provider.Config{ID: "p", BaseURL: "ftp://x.test", Model: "m"}},
		{"empty model", provider.Config{ID: "p", BaseURL: "https://x.test"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := provider.NewRegistry()
			require.NoError(t, err)
			err = reg.Register(tt.cfg)
			require.Error(t, err)
			assert.True(t, tderr.IsInvalidInput(err))
		})
	}
}

func TestRegistry_ReRegisterReplaces(t *testing.T) {
	reg, err := provider.NewRegistry(provider.Defaults()...)
	require.NoError(t, err)

	custom := provider.Config{
		ID:      "openrouter",
		BaseURL: "http://127.0.0.1:9999/v1",
		Model:   "test-model",
	}
	require.NoError(t, reg.Register(custom))

	got, err := reg.Get("openrouter")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/v1", got.BaseURL)
}
