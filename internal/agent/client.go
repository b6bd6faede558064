// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

// Package agent runs LLM-backed task cards: it resolves a provider and
// credentials, builds prompts, calls the chat endpoint with retry and
// circuit-breaking, extracts file operations from the reply, and applies
// them to the card's project folder.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/fsys"
	"github.com/taskdeck/taskdeck/internal/provider"
	"github.com/taskdeck/taskdeck/internal/secrets"
	"github.com/taskdeck/taskdeck/internal/store"
)

// Task is the card content handed to ExecuteTask.
type Task struct {
	CardID      string
	Title       string
	Description string
}

// TaskContext carries everything beyond the card text that shapes a run.
type TaskContext struct {
	// FolderPath is the project folder extracted paths are resolved
	// against. Empty means paths are used as authored and no project
	// files are read for context.
	FolderPath string

	// AttachedFiles are files the user explicitly attached to the card,
	// relative to FolderPath unless absolute.
	AttachedFiles []string

	// AdditionalContext is free-form text appended to the task prompt.
	AdditionalContext string

	// Skills are the guidance blocks attached to this run.
	Skills []*Skill

	// Provider overrides the registry default when non-empty.
	Provider string
}

// Response is the discriminated result of ExecuteTask. Expected failures
// (missing credentials, exhausted retries, open circuit) come back here as
// Success=false with an Error string; ExecuteTask never returns a Go error
// for them.
type Response struct {
	Success       bool
	Content       string
	Error         string
	Attempts      int
	FilesCreated  []string
	FilesModified []string
	FileErrors    []string
}

// ClientOptions are the injectable collaborators of a Client. Zero values
// get working defaults.
type ClientOptions struct {
	RetryPolicy *RetryPolicy
	Transport   TransportOptions
	Prompt      PromptLimits
	FS          fsys.FS
	Notifier    fsys.Notifier
	Executions  store.ExecutionStore
	Logger      *slog.Logger
}

// Client is the orchestrator behind a board's "execute card" action. Each
// Client instance owns its circuit-breaker and credential cache; nothing is
// process-global, so tests can run independent instances.
//
// A mutex serializes ExecuteTask calls: at most one conversation is in
// flight per Client, and calls complete in the order their goroutines
// acquired the slot. Shared breaker and credential state are therefore
// never mutated concurrently.
type Client struct {
	mu sync.Mutex

	registry  *provider.Registry
	creds     *secrets.Resolver
	breaker   *CircuitBreaker
	transport *Transport
	applier   *Applier
	limits    PromptLimits
	fs        fsys.FS
	notifier  fsys.Notifier
	execs     store.ExecutionStore
	logger    *slog.Logger

	newID func() string
}

// NewClient builds a Client around a provider registry and credential
// resolver.
func NewClient(registry *provider.Registry, creds *secrets.Resolver, opts ClientOptions) *Client {
	policy := DefaultRetryPolicy()
	if opts.RetryPolicy != nil {
		policy = *opts.RetryPolicy
	}
	if opts.FS == nil {
		opts.FS = fsys.OSFS{}
	}
	if opts.Notifier == nil {
		opts.Notifier = fsys.NopNotifier{}
	}
	if opts.Executions == nil {
		opts.Executions = store.NewMemStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	breaker := NewCircuitBreaker()
	return &Client{
		registry:  registry,
		creds:     creds,
		breaker:   breaker,
		transport: NewTransport(policy, breaker, opts.Transport),
		applier:   NewApplier(opts.FS, opts.Logger),
		limits:    opts.Prompt.withDefaults(),
		fs:        opts.FS,
		notifier:  opts.Notifier,
		execs:     opts.Executions,
		logger:    opts.Logger,
		newID:     uuid.NewString,
	}
}

// ExecuteTask runs one card against the configured provider. It always
// returns a Response; the error taxonomy of the run is folded into
// Response.Error. Cancelling ctx aborts the in-flight attempt and any
// pending backoff sleep.
func (c *Client) ExecuteTask(ctx context.Context, task Task, taskCtx TaskContext) Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	if task.Title == "" {
		return Response{Error: "Task has no title."}
	}
	if err := ctx.Err(); err != nil {
		return Response{Error: fmt.Sprintf("Task cancelled before start: %v.", err)}
	}

	cfg, err := c.resolveProvider(taskCtx.Provider)
	if err != nil {
		return Response{Error: err.Error()}
	}

	apiKey, ok := c.creds.APIKey(cfg.ID, cfg.APIKeyEnv)
	if cfg.RequiresKey && !ok {
		return Response{Error: fmt.Sprintf(
			"No API key found for provider %q. Set the %s environment variable or run \"taskdeck configure %s\".",
			cfg.ID, cfg.APIKeyEnv, cfg.ID,
		)}
	}

	rec := c.recordStart(ctx, task, cfg)

	msgs := c.buildMessages(task, taskCtx)

	content, attempts, err := c.transport.Complete(ctx, cfg, apiKey, msgs)
	if err != nil {
		resp := Response{Error: err.Error(), Attempts: attempts}
		c.recordFinish(ctx, rec, resp)
		return resp
	}

	resp := Response{Success: true, Content: content, Attempts: attempts}

	ops := ExtractFileOperations(content, taskCtx.FolderPath)
	if len(ops) > 0 {
		applied := c.applier.Apply(ops)
		resp.FilesCreated = applied.Created
		resp.FilesModified = applied.Modified
		resp.FileErrors = applied.Errors
		if applied.Changed() {
			c.notifier.RefreshFileTree()
		}
	}

	c.recordFinish(ctx, rec, resp)
	return resp
}

// IsConfigured reports whether a chat call for the given provider would
// pass credential resolution. An empty providerID checks the registry
// default. No network call is made.
func (c *Client) IsConfigured(providerID string) bool {
	cfg, err := c.resolveProvider(providerID)
	if err != nil {
		return false
	}
	if !cfg.RequiresKey {
		return true
	}
	_, ok := c.creds.APIKey(cfg.ID, cfg.APIKeyEnv)
	return ok
}

// Reset clears the circuit-breaker map and the in-memory credential cache.
// Intended for test teardown.
func (c *Client) Reset() {
	c.breaker.Reset()
	c.creds.Reset()
}

func (c *Client) resolveProvider(id string) (provider.Config, error) {
	if id == "" {
		return c.registry.Default()
	}
	return c.registry.Get(id)
}

func (c *Client) buildMessages(task Task, taskCtx TaskContext) []Message {
	description := task.Description
	if taskCtx.AdditionalContext != "" {
		if description != "" {
			description += "\n\n"
		}
		description += taskCtx.AdditionalContext
	}

	in := PromptInput{
		Title:       task.Title,
		Description: description,
		WorkDir:     taskCtx.FolderPath,
		Skills:      taskCtx.Skills,
		Excerpts:    c.gatherExcerpts(taskCtx),
		Limits:      c.limits,
	}

	return []Message{
		{Role: RoleSystem, Content: BuildSystemPrompt()},
		{Role: RoleUser, Content: BuildTaskPrompt(in)},
	}
}

// gatherExcerpts reads attached files plus a bounded sample of the project
// folder. Best effort: an unreadable or oversized file is skipped, never a
// fatal error for the run.
func (c *Client) gatherExcerpts(taskCtx TaskContext) []FileExcerpt {
	seen := make(map[string]bool)
	var rels []string

	for _, p := range taskCtx.AttachedFiles {
		if !seen[p] {
			seen[p] = true
			rels = append(rels, p)
		}
	}

	if taskCtx.FolderPath != "" && len(rels) < c.limits.MaxContextFiles {
		listed, err := fsys.ListFiles(taskCtx.FolderPath, c.limits.MaxContextFiles-len(rels))
		if err != nil {
			c.logger.Debug("listing project files failed", "folder", taskCtx.FolderPath, "error", err)
		}
		for _, p := range listed {
			if !seen[p] {
				seen[p] = true
				rels = append(rels, p)
			}
		}
	}

	var out []FileExcerpt
	for _, rel := range rels {
		if len(out) >= c.limits.MaxContextFiles {
			break
		}
		full := rel
		if taskCtx.FolderPath != "" && !filepath.IsAbs(rel) {
			full = filepath.Join(taskCtx.FolderPath, rel)
		}
		content, err := c.fs.Read(full)
		if err != nil {
			c.logger.Debug("skipping unreadable context file", "path", full, "error", err)
			continue
		}
		if len(content) > c.limits.MaxFileChars {
			continue
		}
		out = append(out, FileExcerpt{Path: rel, Content: content})
	}
	return out
}

func (c *Client) recordStart(ctx context.Context, task Task, cfg provider.Config) *store.ExecutionRecord {
	rec := &store.ExecutionRecord{
		ID:        c.newID(),
		CardID:    task.CardID,
		Provider:  cfg.ID,
		Model:     cfg.Model,
		Status:    store.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := c.execs.Create(ctx, rec); err != nil {
		c.logger.Warn("recording execution start failed", "card_id", task.CardID, "error", err)
	}
	return rec
}

func (c *Client) recordFinish(ctx context.Context, rec *store.ExecutionRecord, resp Response) {
	// The outcome is recorded even when the caller's ctx was cancelled
	// mid-run.
	ctx = context.WithoutCancel(ctx)

	rec.Status = store.StatusFailed
	if resp.Success {
		rec.Status = store.StatusSuccess
	}
	rec.Attempts = resp.Attempts
	rec.Error = resp.Error
	rec.FilesCreated = resp.FilesCreated
	rec.FilesModified = resp.FilesModified
	rec.CompletedAt = time.Now().UTC()

	if err := c.execs.Update(ctx, rec); err != nil {
		c.logger.Warn("recording execution result failed", "card_id", rec.CardID, "error", err)
	}
}
