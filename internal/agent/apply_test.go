// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/agent"
	"github.com/taskdeck/taskdeck/internal/fsys"
)

// faultFS wraps OSFS and fails selected paths.
type faultFS struct {
	fsys.OSFS
	failWrite  map[string]bool
	failRemove map[string]bool
}

func (f *faultFS) Write(path, content string) error {
	if f.failWrite[path] {
		return errors.New("disk full")
	}
	return f.OSFS.Write(path, content)
}

func (f *faultFS) Remove(path string) error {
	if f.failRemove[path] {
		return errors.New("permission denied")
	}
	return f.OSFS.Remove(path)
}

func TestApply_CreateAndModifyBuckets(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.txt")
	require.NoError(t, os.WriteFile(existing, []byte("v1"), 0o644))

	applier := agent.NewApplier(fsys.OSFS{}, nil)
	result := applier.Apply([]agent.FileOperation{
		{Kind: agent.OpCreate, Path: filepath.Join(dir, "new.txt"), Content: "fresh"},
		{Kind: agent.OpCreate, Path: existing, Content: "v2"},
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{filepath.Join(dir, "new.txt")}, result.Created)
	assert.Equal(t, []string{existing}, result.Modified)
	assert.Empty(t, result.Errors)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestApply_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c.txt")

	applier := agent.NewApplier(fsys.OSFS{}, nil)
	result := applier.Apply([]agent.FileOperation{
		{Kind: agent.OpCreate, Path: nested, Content: "deep"},
	})

	assert.True(t, result.Success)
	data, err := os.ReadFile(nested)
	require.NoError(t, err)
	assert.Equal(t, "deep", string(data))
}

func TestApply_Delete(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))

	applier := agent.NewApplier(fsys.OSFS{}, nil)
	result := applier.Apply([]agent.FileOperation{
		{Kind: agent.OpDelete, Path: target},
	})

	assert.True(t, result.Success)
	assert.NoFileExists(t, target)
	assert.False(t, result.Changed())
}

func TestApply_PartialFailureContinues(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	good := filepath.Join(dir, "good.txt")

	fs := &faultFS{failWrite: map[string]bool{bad: true}}
	applier := agent.NewApplier(fs, nil)
	result := applier.Apply([]agent.FileOperation{
		{Kind: agent.OpCreate, Path: bad, Content: "x"},
		{Kind: agent.OpCreate, Path: good, Content: "y"},
	})

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Failed to create "+bad+": disk full", result.Errors[0])
	assert.Equal(t, []string{good}, result.Created)
	assert.FileExists(t, good)
}

func TestApply_DeleteFailureRecorded(t *testing.T) {
	fs := &faultFS{failRemove: map[string]bool{"/locked": true}}
	applier := agent.NewApplier(fs, nil)
	result := applier.Apply([]agent.FileOperation{
		{Kind: agent.OpDelete, Path: "/locked"},
	})

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Failed to delete /locked: permission denied", result.Errors[0])
}

func TestApply_EmptyBatch(t *testing.T) {
	applier := agent.NewApplier(fsys.OSFS{}, nil)
	result := applier.Apply(nil)
	assert.True(t, result.Success)
	assert.False(t, result.Changed())
}
