// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"fmt"
	"strings"
)

const (
	// MaxContextFileChars is the size above which a project file is skipped
	// entirely when building prompt context.
	MaxContextFileChars = 5000

	// MaxContextFiles bounds how many project files are quoted in the
	// task prompt.
	MaxContextFiles = 8
)

// FileExcerpt is an existing project file quoted in the task prompt.
type FileExcerpt struct {
	Path    string
	Content string
}

// PromptLimits bounds how much project context is gathered and quoted.
// Zero values select the package defaults.
type PromptLimits struct {
	MaxContextFiles int
	MaxFileChars    int
}

func (l PromptLimits) withDefaults() PromptLimits {
	if l.MaxContextFiles <= 0 {
		l.MaxContextFiles = MaxContextFiles
	}
	if l.MaxFileChars <= 0 {
		l.MaxFileChars = MaxContextFileChars
	}
	return l
}

// PromptInput is everything the prompt builder needs. It is assembled by
// the client from the task, its context, and best-effort file reads.
type PromptInput struct {
	Title       string
	Description string
	WorkDir     string
	Skills      []*Skill
	Excerpts    []FileExcerpt
	Limits      PromptLimits
}

// fileFormatRules is the output contract every reply must follow. The
// extractor depends on the exact ```file: fence form stated here.
const fileFormatRules = `When you create or modify files, you MUST emit each file as a fenced code block whose opening fence is tagged with "file:" followed by the file path. Do not use a language tag for file output.

Correct:
` + "```" + `file:src/index.html
<!DOCTYPE html>
<html><body>Hello</body></html>
` + "```" + `

Incorrect (a bare language tag cannot be written to disk):
` + "```" + `html
<!DOCTYPE html>
<html><body>Hello</body></html>
` + "```" + `

Rules:
- One block per file, opened with ` + "```" + `file:<relative/path.ext> and closed with ` + "```" + `.
- When modifying a file, emit the COMPLETE resulting file content, never a diff or a snippet.
- Text outside file blocks is commentary and will not touch the filesystem.`

// BuildSystemPrompt returns the system message fixing the assistant's role
// and the mandatory file-output format.
func BuildSystemPrompt() string {
	return "You are a coding agent working on a task card from a project board. " +
		"You write production-quality code directly into the user's project folder.\n\n" +
		fileFormatRules
}

// BuildTaskPrompt assembles the user message from the card's task and its
// context. Pure string assembly; no filesystem or network access.
func BuildTaskPrompt(in PromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Task\n%s\n", in.Title)
	if in.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", in.Description)
	}

	if in.WorkDir != "" {
		fmt.Fprintf(&b, "\n## Working directory\n%s\nAll file paths you emit are relative to this directory.\n", in.WorkDir)
	}

	if len(in.Skills) > 0 {
		b.WriteString("\n## Skills\nApply the following guidance:\n")
		for _, s := range in.Skills {
			fmt.Fprintf(&b, "\n### %s\n%s\n", s.Name, strings.TrimSpace(s.Content))
		}
	}

	if len(in.Excerpts) > 0 {
		limits := in.Limits.withDefaults()
		b.WriteString("\n## Existing project files\n")
		for _, ex := range in.Excerpts {
			if len(ex.Content) > limits.MaxFileChars {
				continue
			}
			fmt.Fprintf(&b, "\n%s:\n```\n%s\n```\n", ex.Path, ex.Content)
		}
	}

	b.WriteString("\nRemember: emit every file you create or modify as a ```file:<path> fenced block containing the complete file content.")
	return b.String()
}
