package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoCodex = `input=$(cat)
case "$input" in
  *exit-three*) exit 3 ;;
  *hang-forever*) exec sleep 10 ;;
esac
echo '{"type":"thread.started","thread_id":"t1"}'
echo '{"type":"item.completed","item":{"id":"i1","type":"agent_message","text":"done: '"$CODEX_HOME"'"}}'
`

func (e *testEnv) addAgent(name string) {
	e.write(filepath.Join(e.workDir, ".claude", "agents", name+".md"), testAgent)
}

func TestSubagentList(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")
	env.write(filepath.Join(env.home, ".codex", "agents", "reviewer.md"), "Review code.\n")

	out, _, code := env.run("subagent", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "tdd-agent")
	assert.Contains(t, out, "reviewer")

	out, _, code = env.run("subagent", "list", "--output", "json")
	require.Equal(t, 0, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "tdd-agent", list[0]["name"])
	assert.Equal(t, "project", list[0]["source_type"])
	assert.Equal(t, "Writes tests first", list[0]["description"])
	assert.Equal(t, "user", list[1]["source_type"])
}

func TestSubagentListEmpty(t *testing.T) {
	env := newTestEnv(t)
	out, errOut, code := env.run("subagent", "list")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "No agents found")
}

func TestSubagentListAgentsDirOverride(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")
	env.write(filepath.Join(env.workDir, "custom", "solo.md"), "Alone.\n")

	out, _, code := env.run("subagent", "list", "--agents-dir", "custom")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "solo")
	assert.NotContains(t, out, "tdd-agent")
	assert.Contains(t, out, "override")
}

func TestSubagentShow(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")

	out, _, code := env.run("subagent", "show", "@tdd-agent")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Agent: tdd-agent")
	assert.Contains(t, out, "Source: claude_project (project)")
	assert.Contains(t, out, "  description: Writes tests first")
	assert.Contains(t, out, "Instructions:\n"+strings.Repeat("-", 40))
	assert.Contains(t, out, "You write failing tests before code.")

	_, errOut, code := env.run("subagent", "show", "missing")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Agent 'missing' not found")
}

func TestSubagentShowPreviewTruncates(t *testing.T) {
	env := newTestEnv(t)
	var body strings.Builder
	for i := 0; i < 60; i++ {
		body.WriteString("line\n")
	}
	env.write(filepath.Join(env.workDir, ".claude", "agents", "long.md"), body.String())

	out, _, code := env.run("subagent", "show", "long")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "... (10 more lines)")
}

func TestSubagentRunVanilla(t *testing.T) {
	env := newTestEnv(t)
	bin := env.stubCodex(echoCodex)

	out, _, code := env.run("subagent", "run", "--codex-bin", bin, "say hi")
	require.Equal(t, 0, code)
	sandboxHome := filepath.Join(env.workDir, ".subspace", "codex-subagent")
	assert.Equal(t, "done: "+sandboxHome+"\n", out)
	assert.DirExists(t, sandboxHome)
}

func TestSubagentRunAgentJSONL(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")
	bin := env.stubCodex(echoCodex)

	out, _, code := env.run("subagent", "run", "--codex-bin", bin, "-o", "jsonl", "tdd-agent", "write tests")
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"type":"thread.started","thread_id":"t1"}`, lines[0])

	var complete singleCompleteEvent
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &complete))
	assert.Equal(t, "complete", complete.Type)
	assert.Equal(t, "tdd-agent", complete.Agent)
	assert.Equal(t, 0, complete.ReturnCode)
}

func TestSubagentRunExitCodePassesThrough(t *testing.T) {
	env := newTestEnv(t)
	bin := env.stubCodex(echoCodex)

	out, _, code := env.run("subagent", "run", "--codex-bin", bin, "exit-three")
	assert.Equal(t, 3, code)
	assert.Empty(t, out)
}

func TestSubagentRunTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timeout test in short mode")
	}
	env := newTestEnv(t)
	bin := env.stubCodex(echoCodex)

	_, errOut, code := env.run("subagent", "run", "--codex-bin", bin, "--timeout", "1", "hang-forever")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Timeout after 1s")
}

func TestSubagentRunMissingBinary(t *testing.T) {
	env := newTestEnv(t)
	_, errOut, code := env.run("subagent", "run", "--codex-bin", filepath.Join(env.workDir, "nope"), "task")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Codex binary not found")
}

func TestSubagentRunUnknownAgent(t *testing.T) {
	env := newTestEnv(t)
	_, errOut, code := env.run("subagent", "run", "ghost", "task")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Agent 'ghost' not found")
}

func TestSubagentRunRejectsJSONOutput(t *testing.T) {
	env := newTestEnv(t)
	_, errOut, code := env.run("subagent", "run", "-o", "json", "task")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid output format")
}

func TestSubagentRunWritesMetrics(t *testing.T) {
	env := newTestEnv(t)
	bin := env.stubCodex(echoCodex)
	prom := filepath.Join(env.workDir, "metrics", "subspace.prom")
	require.NoError(t, os.MkdirAll(filepath.Dir(prom), 0o755))

	_, _, code := env.run("subagent", "run", "--codex-bin", bin, "--metrics-textfile", prom, "say hi")
	require.Equal(t, 0, code)

	data, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(data), `subspace_runs_total{agent="codex",outcome="ok"} 1`)
}

func TestSubagentParallelText(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")
	bin := env.stubCodex(echoCodex)

	out, errOut, code := env.run("subagent", "parallel", "--codex-bin", bin,
		"tdd-agent:first task", "tdd-agent:exit-three")
	assert.Equal(t, 3, code)
	assert.Equal(t, 2, strings.Count(out, "[tdd-agent] (completed in"))
	assert.Contains(t, out, "done: ")
	assert.Contains(t, errOut, "[subspace] All complete. Wall time:")
}

func TestSubagentParallelJSONL(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")
	bin := env.stubCodex(echoCodex)

	out, _, code := env.run("subagent", "parallel", "--codex-bin", bin, "-o", "jsonl",
		"tdd-agent:one", "tdd-agent:two")
	require.Equal(t, 0, code)

	completes := 0
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var tagged struct {
			AgentID   string          `json:"agent_id"`
			AgentName string          `json:"agent_name"`
			Event     json.RawMessage `json:"event"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &tagged), line)
		assert.Equal(t, "tdd-agent", tagged.AgentName)
		assert.NotEmpty(t, tagged.AgentID)

		var ev struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(tagged.Event, &ev))
		if ev.Type == "complete" {
			completes++
		}
	}
	assert.Equal(t, 2, completes)
}

func TestSubagentParallelErrors(t *testing.T) {
	env := newTestEnv(t)
	env.addAgent("tdd-agent")

	_, errOut, code := env.run("subagent", "parallel", "tdd-agent:ok", "ghost:task")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error: Agent 'ghost' not found")

	_, errOut, code = env.run("subagent", "parallel", "no-colon")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Error:")

	_, errOut, code = env.run("subagent", "parallel", "--ui", "fancy", "tdd-agent:x")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "invalid ui mode")
}
