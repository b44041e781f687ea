package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/subspace-go/internal/agents"
	"github.com/nibzard/subspace-go/internal/parallel"
)

func testRuns() []parallel.Run {
	return []parallel.Run{
		{ID: "reviewer-0", Index: 0, Request: parallel.Request{AgentName: "reviewer", Task: "review the diff"}},
		{ID: "tester-1", Index: 1, Request: parallel.Request{AgentName: "tester", Task: "run the tests"}},
		{ID: "docs-2", Index: 2, Request: parallel.Request{AgentName: "docs", Task: "update the README"}},
	}
}

func statuses(m *model) []Status {
	var out []Status
	for _, r := range m.rows {
		out = append(out, r.status)
	}
	return out
}

func TestModelLifecycle(t *testing.T) {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	m := newModel()
	m.now = func() time.Time { return base.Add(3 * time.Second) }

	runs := testRuns()
	m.Update(startMsg{runs: runs})
	assert.Equal(t, []Status{StatusPending, StatusPending, StatusPending}, statuses(m))

	for _, run := range runs {
		m.Update(beginMsg{id: run.ID, at: base})
	}
	assert.Equal(t, []Status{StatusRunning, StatusRunning, StatusRunning}, statuses(m))
	assert.Contains(t, m.View(), "3.0s")

	done := runs[0]
	done.Result = agents.RunResult{Agent: "reviewer", Elapsed: 1500 * time.Millisecond}
	failed := runs[1]
	failed.Result = agents.RunResult{Agent: "tester", ExitCode: 2, Elapsed: time.Second}
	slow := runs[2]
	slow.Result = agents.TimeoutResult("docs", time.Second, time.Second)

	m.Update(completeMsg{run: done})
	m.Update(completeMsg{run: failed})
	m.Update(completeMsg{run: slow})
	assert.Equal(t, []Status{StatusDone, StatusFailed, StatusTimeout}, statuses(m))

	_, cmd := m.Update(finishMsg{set: parallel.RunSet{ID: "batch", Wall: 2 * time.Second}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.finished)

	view := m.View()
	assert.Contains(t, view, "subspace: 3 agents")
	assert.Contains(t, view, "1.5s")
	assert.Contains(t, view, "1 done, 1 failed, 1 timeout")
	assert.Contains(t, view, "All complete in 2.0s")
}

func TestModelUnknownRunIgnored(t *testing.T) {
	m := newModel()
	m.Update(startMsg{runs: testRuns()})
	m.Update(beginMsg{id: "missing-9", at: time.Now()})
	m.Update(completeMsg{run: parallel.Run{ID: "missing-9"}})
	assert.Equal(t, []Status{StatusPending, StatusPending, StatusPending}, statuses(m))
}

func TestModelQuitMarksInterrupted(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.interrupted)
}

func TestModelTickStopsAfterFinish(t *testing.T) {
	m := newModel()
	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd)

	m.finished = true
	_, cmd = m.Update(tickMsg(time.Now()))
	assert.Nil(t, cmd)
}

func TestSummaryEmpty(t *testing.T) {
	assert.Equal(t, "no agents", newModel().summary())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefg...", truncate(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "done", StatusDone.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
}
