// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/secrets"
)

func withMemSecrets(t *testing.T) *secrets.MemStore {
	t.Helper()
	mem := secrets.NewMemStore()
	orig := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return mem }
	t.Cleanup(func() { secretStoreFactory = orig })
	return mem
}

func TestConfigureCommand_StoresKey(t *testing.T) {
	mem := withMemSecrets(t)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"configure", "openrouter", "--api-key", "sk-or-123"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Stored key")

	key, err := mem.Get(secrets.APIKeyName("openrouter"))
	require.NoError(t, err)
	assert.Equal(t, "sk-or-123", key)
}

func TestConfigureCommand_ReadsStdin(t *testing.T) {
	mem := withMemSecrets(t)

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetIn(strings.NewReader("sk-typed\n"))
	root.SetArgs([]string{"configure", "openai"})

	require.NoError(t, root.Execute())

	key, err := mem.Get(secrets.APIKeyName("openai"))
	require.NoError(t, err)
	assert.Equal(t, "sk-typed", key)
}

func TestConfigureCommand_EmptyKeyRejected(t *testing.T) {
	withMemSecrets(t)

	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetIn(strings.NewReader("\n"))
	root.SetArgs([]string{"configure", "openai"})

	assert.Error(t, root.Execute())
}

func TestConfigureCommand_Delete(t *testing.T) {
	mem := withMemSecrets(t)
	require.NoError(t, mem.Set(secrets.APIKeyName("openrouter"), "sk-old"))

	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"configure", "openrouter", "--delete"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "Removed")

	_, err := mem.Get(secrets.APIKeyName("openrouter"))
	assert.Error(t, err)
}
