// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/taskdeck/taskdeck/internal/fsys"
)

// ApplyResult reports what a batch of file operations actually did.
// Success is false only when at least one operation failed; partial
// progress is kept, so Created and Modified list the operations that
// landed even alongside Errors.
type ApplyResult struct {
	Success  bool
	Created  []string
	Modified []string
	Errors   []string
}

// Changed reports whether any operation altered the filesystem.
func (r ApplyResult) Changed() bool {
	return len(r.Created) > 0 || len(r.Modified) > 0
}

// Applier executes extracted file operations against a filesystem.
type Applier struct {
	fs     fsys.FS
	logger *slog.Logger
}

func NewApplier(fs fsys.FS, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{fs: fs, logger: logger}
}

// Apply runs the operations in order. Each failure is recorded and the
// remaining operations still run. Create and modify are distinguished by a
// pre-write existence check; OpDelete removes the target.
func (a *Applier) Apply(ops []FileOperation) ApplyResult {
	result := ApplyResult{Success: true}

	for _, op := range ops {
		switch op.Kind {
		case OpDelete:
			if err := a.fs.Remove(op.Path); err != nil {
				result.fail(op, err)
				continue
			}
			a.logger.Info("deleted file", "path", op.Path)

		default:
			existed, err := a.fs.Exists(op.Path)
			if err != nil {
				result.fail(op, err)
				continue
			}
			if dir := filepath.Dir(op.Path); dir != "." && dir != string(filepath.Separator) {
				if err := a.fs.MkdirAll(dir); err != nil {
					result.fail(op, err)
					continue
				}
			}
			if err := a.fs.Write(op.Path, op.Content); err != nil {
				result.fail(op, err)
				continue
			}
			if existed {
				result.Modified = append(result.Modified, op.Path)
				a.logger.Info("modified file", "path", op.Path)
			} else {
				result.Created = append(result.Created, op.Path)
				a.logger.Info("created file", "path", op.Path)
			}
		}
	}
	return result
}

func (r *ApplyResult) fail(op FileOperation, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("Failed to %s %s: %v", op.Kind, op.Path, err))
	r.Success = false
}
