// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// OpKind classifies a file operation.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpModify OpKind = "modify"
	OpDelete OpKind = "delete"
)

// FileOperation is one filesystem mutation extracted from model output.
// The extractor always emits OpCreate; the applier reclassifies to OpModify
// when the target already exists.
type FileOperation struct {
	Kind    OpKind
	Path    string
	Content string
}

var (
	// taggedBlockRe matches the required output format: a fence tagged
	// file:<path>, then verbatim content, then a closing fence.
	taggedBlockRe = regexp.MustCompile("(?s)```file:([^\n]+)\n(.*?)\n?```")

	// bareBlockRe matches conventional language-tagged fences used by the
	// fallback heuristic. The character class cannot match "file:" tags.
	bareBlockRe = regexp.MustCompile("(?s)```([A-Za-z0-9+#-]*)[ \t]*\n(.*?)\n?```")

	// filenameHintRe recognizes a bare name.ext token on its own line.
	filenameHintRe = regexp.MustCompile(`^[\w./-]+\.[A-Za-z0-9]+$`)
)

// fallbackNames maps a fence language tag to a default filename when the
// model ignored the file: format and gave no filename hint.
var fallbackNames = map[string]string{
	"html":       "index.html",
	"css":        "styles.css",
	"javascript": "script.js",
	"js":         "script.js",
	"typescript": "app.ts",
	"ts":         "app.ts",
	"python":     "main.py",
	"py":         "main.py",
	"go":         "main.go",
	"json":       "data.json",
	"yaml":       "config.yaml",
	"sql":        "schema.sql",
	"sh":         "script.sh",
	"bash":       "script.sh",
	"markdown":   "README.md",
	"md":         "README.md",
}

// ExtractFileOperations parses the assistant reply into an ordered list of
// file operations. The tagged format is authoritative; the fallback
// heuristic runs only when no tagged block exists. Extracted paths are
// resolved against basePath when one is supplied. Pure function of its
// inputs.
func ExtractFileOperations(reply, basePath string) []FileOperation {
	ops := ParseTaggedBlocks(reply)
	if len(ops) == 0 {
		ops = ParseFallbackBlocks(reply)
	}

	if basePath != "" {
		for i := range ops {
			ops[i].Path = filepath.Join(basePath, ops[i].Path)
		}
	}
	return ops
}

// ParseTaggedBlocks extracts every ```file:<path> fenced block, in order of
// appearance, with the content between the fences verbatim.
func ParseTaggedBlocks(reply string) []FileOperation {
	var ops []FileOperation
	for _, m := range taggedBlockRe.FindAllStringSubmatch(reply, -1) {
		path := strings.TrimSpace(m[1])
		if path == "" {
			continue
		}
		ops = append(ops, FileOperation{Kind: OpCreate, Path: path, Content: m[2]})
	}
	return ops
}

// ParseFallbackBlocks handles replies that ignored the required format:
// each bare language-tagged fence becomes an operation whose filename comes
// from a name.ext hint on the line preceding the block, or from the
// language default table, or from an incrementing file<N>.<lang> counter.
// Never fails; unmatchable input yields no operations.
func ParseFallbackBlocks(reply string) []FileOperation {
	var ops []FileOperation
	counter := 0

	for _, m := range bareBlockRe.FindAllStringSubmatchIndex(reply, -1) {
		lang := strings.ToLower(reply[m[2]:m[3]])
		content := reply[m[4]:m[5]]

		name := filenameHint(reply[:m[0]])
		if name == "" {
			if def, ok := fallbackNames[lang]; ok {
				name = def
			} else {
				counter++
				ext := lang
				if ext == "" {
					ext = "txt"
				}
				name = fmt.Sprintf("file%d.%s", counter, ext)
			}
		}
		ops = append(ops, FileOperation{Kind: OpCreate, Path: name, Content: content})
	}
	return ops
}

// filenameHint returns a bare name.ext token from the last non-blank line
// of the text preceding a code block, or "".
func filenameHint(before string) string {
	lines := strings.Split(before, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		line = strings.Trim(line, "`*")
		line = strings.TrimSuffix(line, ":")
		if filenameHintRe.MatchString(line) {
			return line
		}
		return ""
	}
	return ""
}
