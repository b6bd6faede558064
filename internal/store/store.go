// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package store

import (
	"context"
	"time"
)

// ExecutionStatus tracks the lifecycle of one agent run against a card.
type ExecutionStatus string

const (
	StatusRunning   ExecutionStatus = "running"
	StatusSuccess   ExecutionStatus = "success"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
)

// ExecutionRecord is the persisted history of one ExecuteTask call.
type ExecutionRecord struct {
	ID            string
	CardID        string
	Provider      string
	Model         string
	Status        ExecutionStatus
	Attempts      int
	Error         string
	FilesCreated  []string
	FilesModified []string
	StartedAt     time.Time
	CompletedAt   time.Time
}

// ExecutionStore persists execution history. Create inserts a running
// record; Update overwrites it with the terminal outcome.
type ExecutionStore interface {
	Create(ctx context.Context, rec *ExecutionRecord) error
	Update(ctx context.Context, rec *ExecutionRecord) error
	Get(ctx context.Context, id string) (*ExecutionRecord, error)
	ListByCard(ctx context.Context, cardID string, limit int) ([]*ExecutionRecord, error)
	Close() error
}
