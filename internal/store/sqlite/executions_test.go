// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/store/sqlite"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

func newTestStore(t *testing.T) *sqlite.ExecutionStore {
	t.Helper()
	s, err := sqlite.NewExecutionStore(filepath.Join(t.TempDir(), "executions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExecutionStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	rec := &store.ExecutionRecord{
		ID:        uuid.NewString(),
		CardID:    "card-7",
		Provider:  "openrouter",
		Model:     "claude-sonnet-4-5",
		Status:    store.StatusRunning,
		StartedAt: started,
	}
	require.NoError(t, s.Create(ctx, rec))

	rec.Status = store.StatusSuccess
	rec.Attempts = 3
	rec.FilesCreated = []string{"index.html", "styles.css"}
	rec.FilesModified = []string{"app.js"}
	rec.CompletedAt = started.Add(42 * time.Second)
	require.NoError(t, s.Update(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSuccess, got.Status)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, []string{"index.html", "styles.css"}, got.FilesCreated)
	assert.Equal(t, []string{"app.js"}, got.FilesModified)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.CompletedAt.Equal(rec.CompletedAt))
}

func TestExecutionStore_EmptyFileListsSurviveRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &store.ExecutionRecord{
		ID:        uuid.NewString(),
		CardID:    "card-1",
		Status:    store.StatusFailed,
		Error:     "provider openrouter unavailable after 6 attempts",
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Create(ctx, rec))

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FilesCreated)
	assert.Empty(t, got.FilesModified)
	assert.Equal(t, rec.Error, got.Error)
	assert.True(t, got.CompletedAt.IsZero())
}

func TestExecutionStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "absent")
	require.Error(t, err)
	assert.Equal(t, tderr.CodeStoreExecutionNotFound, tderr.CodeOf(err))

	err = s.Update(ctx, &store.ExecutionRecord{ID: "absent", Status: store.StatusFailed})
	require.Error(t, err)
	assert.Equal(t, tderr.CodeStoreExecutionNotFound, tderr.CodeOf(err))
}

func TestExecutionStore_CreateRequiresID(t *testing.T) {
	s := newTestStore(t)
	err := s.Create(context.Background(), &store.ExecutionRecord{CardID: "card-1"})
	require.Error(t, err)
	assert.Equal(t, tderr.CodeStoreInvalidInput, tderr.CodeOf(err))
}

func TestExecutionStore_ListByCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for i, id := range ids {
		require.NoError(t, s.Create(ctx, &store.ExecutionRecord{
			ID:        id,
			CardID:    "card-9",
			Status:    store.StatusSuccess,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, s.Create(ctx, &store.ExecutionRecord{
		ID: uuid.NewString(), CardID: "card-other", StartedAt: base,
	}))

	recs, err := s.ListByCard(ctx, "card-9", 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, ids[2], recs[0].ID)
	assert.Equal(t, ids[0], recs[2].ID)

	recs, err = s.ListByCard(ctx, "card-9", 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, ids[2], recs[0].ID)

	recs, err = s.ListByCard(ctx, "card-none", 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestExecutionStore_ReopenSeesData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "executions.db")
	ctx := context.Background()

	first, err := sqlite.NewExecutionStore(path)
	require.NoError(t, err)
	id := uuid.NewString()
	require.NoError(t, first.Create(ctx, &store.ExecutionRecord{
		ID: id, CardID: "card-1", Status: store.StatusSuccess, StartedAt: time.Now().UTC(),
	}))
	require.NoError(t, first.Close())

	second, err := sqlite.NewExecutionStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "card-1", got.CardID)
}
