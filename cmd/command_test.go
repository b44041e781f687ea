package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addCommands() {
	dir := filepath.Join(e.workDir, ".claude", "commands")
	e.write(filepath.Join(dir, "review.md"), "---\ndescription: Review a file\n---\nReview $1 focusing on $2.\nAll: $@\n")
	e.write(filepath.Join(dir, "git", "commit.md"), "Write a commit message.\n")
}

func TestCommandGet(t *testing.T) {
	env := newTestEnv(t)
	env.addCommands()

	out, _, code := env.run("command", "get", "/review", "main.go", "errors")
	require.Equal(t, 0, code)
	assert.Equal(t, "Review main.go focusing on errors.\nAll: main.go errors\n", out)

	out, _, code = env.run("command", "get", "git:commit")
	require.Equal(t, 0, code)
	assert.Equal(t, "Write a commit message.\n", out)
}

func TestCommandGetJSON(t *testing.T) {
	env := newTestEnv(t)
	env.addCommands()

	out, _, code := env.run("command", "get", "review", "-o", "json")
	require.Equal(t, 0, code)

	var got commandPromptJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "/review", got.Command)
	assert.Equal(t, "claude_project", got.Source)
	assert.Equal(t, []string{}, got.Args)
	assert.Contains(t, got.Prompt, "Review $1 focusing on $2.")
	assert.Contains(t, out, `"args": []`)
}

func TestCommandGetErrors(t *testing.T) {
	env := newTestEnv(t)
	env.addCommands()

	_, errOut, code := env.run("command", "get", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Command '/missing' not found")

	_, errOut, code = env.run("command", "get", "../etc/passwd")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid name")

	_, _, code = env.run("command", "get", "review", "-o", "yaml")
	assert.Equal(t, 2, code)
}

func TestCommandList(t *testing.T) {
	env := newTestEnv(t)
	env.addCommands()

	out, _, code := env.run("command", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "/review")
	assert.Contains(t, out, "/git:commit")
	assert.Contains(t, out, "Review a file")

	out, _, code = env.run("command", "list", "-o", "json")
	require.Equal(t, 0, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, 2)
}

func TestCommandListEmpty(t *testing.T) {
	env := newTestEnv(t)
	_, errOut, code := env.run("command", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "No commands found")
	assert.Contains(t, errOut, "./.claude/commands/")
}

func TestCommandShow(t *testing.T) {
	env := newTestEnv(t)
	env.addCommands()

	out, _, code := env.run("command", "show", "/review")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Command: /review")
	assert.Contains(t, out, "  description: Review a file")
	assert.Contains(t, out, "Prompt:")
}
