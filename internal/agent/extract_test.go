// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package agent_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/agent"
)

func renderTagged(path, content string) string {
	return "```file:" + path + "\n" + content + "\n```"
}

func TestExtract_SingleTaggedBlock(t *testing.T) {
	reply := "Here you go.\n\n" + renderTagged("index.html", "<html>hello</html>") + "\n\nDone."

	ops := agent.ExtractFileOperations(reply, "")
	require.Len(t, ops, 1)
	assert.Equal(t, agent.OpCreate, ops[0].Kind)
	assert.Equal(t, "index.html", ops[0].Path)
	assert.Equal(t, "<html>hello</html>", ops[0].Content)
}

func TestExtract_RoundTripPreservesOrderAndBytes(t *testing.T) {
	pairs := []struct{ path, content string }{
		{"a/server.go", "package main\n\nfunc main() {}\n"},
		{"static/app.css", "body { margin: 0; }"},
		{"README.md", "# Title\n\nSome prose with    spacing.\n\ttabbed"},
		{"empty.txt", ""},
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString("Some commentary.\n")
		b.WriteString(renderTagged(p.path, p.content))
		b.WriteString("\n")
	}

	ops := agent.ExtractFileOperations(b.String(), "")
	require.Len(t, ops, len(pairs))
	for i, p := range pairs {
		assert.Equal(t, p.path, ops[i].Path, "path %d", i)
		assert.Equal(t, p.content, ops[i].Content, "content %d must be byte-identical", i)
	}
}

func TestExtract_TaggedPathTrimmed(t *testing.T) {
	reply := "```file:  src/main.py  \nprint('hi')\n```"
	ops := agent.ExtractFileOperations(reply, "")
	require.Len(t, ops, 1)
	assert.Equal(t, "src/main.py", ops[0].Path)
}

func TestExtract_BasePathJoin(t *testing.T) {
	reply := renderTagged("src/app.js", "x")

	ops := agent.ExtractFileOperations(reply, "/home/user/project")
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join("/home/user/project", "src", "app.js"), ops[0].Path)

	// Duplicate separators collapse to one.
	ops = agent.ExtractFileOperations("```file:/src/app.js\nx\n```", "/home/user/project/")
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join("/home/user/project", "src", "app.js"), ops[0].Path)
}

func TestExtract_NoBasePathUsesAuthoredPath(t *testing.T) {
	ops := agent.ExtractFileOperations(renderTagged("sub/x.txt", "y"), "")
	require.Len(t, ops, 1)
	assert.Equal(t, "sub/x.txt", ops[0].Path)
}

func TestExtract_FallbackOnlyWhenNoTaggedBlocks(t *testing.T) {
	// A tagged block plus a bare block: the fallback must not run.
	reply := renderTagged("a.txt", "tagged") + "\n\n```html\n<p>bare</p>\n```"
	ops := agent.ExtractFileOperations(reply, "")
	require.Len(t, ops, 1)
	assert.Equal(t, "a.txt", ops[0].Path)

	// Only a bare block: the fallback produces exactly one operation.
	ops = agent.ExtractFileOperations("```html\n<p>bare</p>\n```", "")
	require.Len(t, ops, 1)
	assert.Equal(t, "index.html", ops[0].Path)
	assert.Equal(t, "<p>bare</p>", ops[0].Content)
}

func TestParseFallbackBlocks_LanguageTable(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"html", "index.html"},
		{"css", "styles.css"},
		{"javascript", "script.js"},
		{"python", "main.py"},
		{"go", "main.go"},
		{"bash", "script.sh"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			ops := agent.ParseFallbackBlocks(fmt.Sprintf("```%s\ncontent\n```", tt.lang))
			require.Len(t, ops, 1)
			assert.Equal(t, tt.want, ops[0].Path)
		})
	}
}

func TestParseFallbackBlocks_FilenameHintWins(t *testing.T) {
	reply := "server.py\n```python\nprint('x')\n```"
	ops := agent.ParseFallbackBlocks(reply)
	require.Len(t, ops, 1)
	assert.Equal(t, "server.py", ops[0].Path)

	// Bold or backticked hints count too.
	reply = "**utils.js**\n```javascript\nlet x = 1\n```"
	ops = agent.ParseFallbackBlocks(reply)
	require.Len(t, ops, 1)
	assert.Equal(t, "utils.js", ops[0].Path)
}

func TestParseFallbackBlocks_UnknownLanguageCounter(t *testing.T) {
	reply := "```zig\na\n```\ntext\n```zig\nb\n```"
	ops := agent.ParseFallbackBlocks(reply)
	require.Len(t, ops, 2)
	assert.Equal(t, "file1.zig", ops[0].Path)
	assert.Equal(t, "file2.zig", ops[1].Path)
}

func TestParseFallbackBlocks_UntaggedFence(t *testing.T) {
	ops := agent.ParseFallbackBlocks("```\nplain text\n```")
	require.Len(t, ops, 1)
	assert.Equal(t, "file1.txt", ops[0].Path)
	assert.Equal(t, "plain text", ops[0].Content)
}

func TestExtract_NoBlocksYieldsNothing(t *testing.T) {
	assert.Empty(t, agent.ExtractFileOperations("I could not produce any files, sorry.", ""))
	assert.Empty(t, agent.ExtractFileOperations("", "/base"))
	assert.Empty(t, agent.ExtractFileOperations("unma```tched fence", ""))
}

func TestParseTaggedBlocks_EmptyPathSkipped(t *testing.T) {
	assert.Empty(t, agent.ParseTaggedBlocks("```file:   \ncontent\n```"))
}
