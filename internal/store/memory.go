// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package store

import (
	"context"
	"sort"
	"sync"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// MemStore is an in-memory ExecutionStore for tests and ephemeral runs.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*ExecutionRecord
}

var _ ExecutionStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]*ExecutionRecord)}
}

func (m *MemStore) Create(ctx context.Context, rec *ExecutionRecord) error {
	if rec.ID == "" {
		return tderr.New(tderr.CodeStoreInvalidInput, "execution record has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemStore) Update(ctx context.Context, rec *ExecutionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return tderr.New(tderr.CodeStoreExecutionNotFound, "execution not found", tderr.Field("execution_id", rec.ID))
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *MemStore) Get(ctx context.Context, id string) (*ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, tderr.New(tderr.CodeStoreExecutionNotFound, "execution not found", tderr.Field("execution_id", id))
	}
	cp := *rec
	return &cp, nil
}

func (m *MemStore) ListByCard(ctx context.Context, cardID string, limit int) ([]*ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*ExecutionRecord
	for _, rec := range m.records {
		if rec.CardID == cardID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }
