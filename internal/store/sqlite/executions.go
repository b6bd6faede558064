// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

// Package sqlite persists agent execution history in a local SQLite
// database, the same file the board UI reads to render run history.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/taskdeck/taskdeck/internal/store"
	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

var _ store.ExecutionStore = (*ExecutionStore)(nil)

// ExecutionStore implements store.ExecutionStore backed by SQLite.
type ExecutionStore struct {
	db *sql.DB
}

// NewExecutionStore opens (or creates) the database at dbPath and ensures
// the card_executions table exists.
func NewExecutionStore(dbPath string) (*ExecutionStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "opening executions db", tderr.FieldPath(dbPath))
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "pinging executions db", tderr.FieldPath(dbPath))
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "migrating executions db", tderr.FieldPath(dbPath))
	}

	return &ExecutionStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS card_executions (
	id             TEXT PRIMARY KEY,
	card_id        TEXT NOT NULL,
	provider       TEXT NOT NULL DEFAULT '',
	model          TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL DEFAULT 'running',
	attempts       INTEGER NOT NULL DEFAULT 0,
	error_message  TEXT NOT NULL DEFAULT '',
	files_created  TEXT NOT NULL DEFAULT '[]',
	files_modified TEXT NOT NULL DEFAULT '[]',
	started_at     TEXT NOT NULL,
	completed_at   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_executions_card   ON card_executions(card_id);
CREATE INDEX IF NOT EXISTS idx_executions_status ON card_executions(status);
`
	_, err := db.Exec(ddl)
	return err
}

func (s *ExecutionStore) Create(ctx context.Context, rec *store.ExecutionRecord) error {
	if rec.ID == "" {
		return tderr.New(tderr.CodeStoreInvalidInput, "execution record has no id")
	}

	created, modified, err := encodeFileLists(rec)
	if err != nil {
		return err
	}

	const q = `INSERT INTO card_executions
(id, card_id, provider, model, status, attempts, error_message, files_created, files_modified, started_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		rec.ID, rec.CardID, rec.Provider, rec.Model, string(rec.Status),
		rec.Attempts, rec.Error, created, modified,
		formatTime(rec.StartedAt), formatTime(rec.CompletedAt),
	)
	if err != nil {
		return tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "inserting execution", tderr.Field("execution_id", rec.ID))
	}
	return nil
}

func (s *ExecutionStore) Update(ctx context.Context, rec *store.ExecutionRecord) error {
	created, modified, err := encodeFileLists(rec)
	if err != nil {
		return err
	}

	const q = `UPDATE card_executions
SET status = ?, attempts = ?, error_message = ?, files_created = ?, files_modified = ?, completed_at = ?
WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		string(rec.Status), rec.Attempts, rec.Error, created, modified,
		formatTime(rec.CompletedAt), rec.ID,
	)
	if err != nil {
		return tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "updating execution", tderr.Field("execution_id", rec.ID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "updating execution", tderr.Field("execution_id", rec.ID))
	}
	if n == 0 {
		return tderr.New(tderr.CodeStoreExecutionNotFound, "execution not found", tderr.Field("execution_id", rec.ID))
	}
	return nil
}

func (s *ExecutionStore) Get(ctx context.Context, id string) (*store.ExecutionRecord, error) {
	const q = `SELECT id, card_id, provider, model, status, attempts, error_message, files_created, files_modified, started_at, completed_at
FROM card_executions WHERE id = ?`

	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, tderr.New(tderr.CodeStoreExecutionNotFound, "execution not found", tderr.Field("execution_id", id))
	}
	if err != nil {
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "getting execution", tderr.Field("execution_id", id))
	}
	return rec, nil
}

func (s *ExecutionStore) ListByCard(ctx context.Context, cardID string, limit int) ([]*store.ExecutionRecord, error) {
	q := `SELECT id, card_id, provider, model, status, attempts, error_message, files_created, files_modified, started_at, completed_at
FROM card_executions WHERE card_id = ? ORDER BY started_at DESC`
	args := []any{cardID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "listing executions", tderr.FieldCardID(cardID))
	}
	defer rows.Close()

	var out []*store.ExecutionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "scanning execution", tderr.FieldCardID(cardID))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, tderr.Wrap(err, tderr.CodeStoreDatabaseFailure, "listing executions", tderr.FieldCardID(cardID))
	}
	return out, nil
}

func (s *ExecutionStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*store.ExecutionRecord, error) {
	var rec store.ExecutionRecord
	var status, created, modified, startedAt, completedAt string

	err := row.Scan(&rec.ID, &rec.CardID, &rec.Provider, &rec.Model, &status,
		&rec.Attempts, &rec.Error, &created, &modified, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	rec.Status = store.ExecutionStatus(status)
	if err := json.Unmarshal([]byte(created), &rec.FilesCreated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(modified), &rec.FilesModified); err != nil {
		return nil, err
	}
	rec.StartedAt = parseTime(startedAt)
	rec.CompletedAt = parseTime(completedAt)
	return &rec, nil
}

func encodeFileLists(rec *store.ExecutionRecord) (string, string, error) {
	created, err := encodeList(rec.FilesCreated)
	if err != nil {
		return "", "", tderr.Wrap(err, tderr.CodeStoreInvalidInput, "encoding files_created", tderr.Field("execution_id", rec.ID))
	}
	modified, err := encodeList(rec.FilesModified)
	if err != nil {
		return "", "", tderr.Wrap(err, tderr.CodeStoreInvalidInput, "encoding files_modified", tderr.Field("execution_id", rec.ID))
	}
	return created, modified, nil
}

func encodeList(paths []string) (string, error) {
	if paths == nil {
		paths = []string{}
	}
	data, err := json.Marshal(paths)
	return string(data), err
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
