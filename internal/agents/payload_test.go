package agents

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestBuildPayload(t *testing.T) {
	fixClock(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	req := BuildPayload("coder", "Write tests.", "Fix the bug")
	assert.Equal(t, "coder", req.AgentName)
	assert.Equal(t, "Fix the bug", req.Task)
	assert.False(t, req.IsVanilla())
	assert.True(t, strings.HasPrefix(req.Instructions, "You ARE the coder agent"))
	assert.True(t, strings.HasSuffix(req.Instructions, "\n---\n\nWrite tests."))
	assert.Contains(t, req.Instructions, "Do NOT spawn subagents")

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Fix the bug", doc["task"])
	assert.Equal(t, req.Instructions, doc["instructions"])
	assert.Equal(t, map[string]any{
		"agentName": "coder",
		"startedAt": "2026-01-02T03:04:05Z",
	}, doc["metadata"])
}

func TestBuildVanillaPayload(t *testing.T) {
	fixClock(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600)))

	req := BuildVanillaPayload("Summarize the repo")
	assert.True(t, req.IsVanilla())
	assert.Equal(t, VanillaAgent, req.Label())

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"task":"Summarize the repo","metadata":{"agentName":"codex","startedAt":"2026-01-02T02:04:05Z"}}`,
		string(data))
}

func TestAgentRequestRoundTrip(t *testing.T) {
	fixClock(t, time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC))

	want := BuildPayload("reviewer", "Be strict.", "Review main.go")
	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got AgentRequest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestAgentRequestLabel(t *testing.T) {
	assert.Equal(t, "subagent", AgentRequest{}.Label())
	assert.Equal(t, "coder", AgentRequest{AgentName: "coder"}.Label())
}

func TestAgentRequestValidate(t *testing.T) {
	fixClock(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	tests := []struct {
		name     string
		req      AgentRequest
		wantPath string
	}{
		{
			name: "valid agent payload",
			req:  BuildPayload("coder", "x", "task"),
		},
		{
			name: "valid vanilla payload",
			req:  BuildVanillaPayload("task"),
		},
		{
			name:     "empty task",
			req:      BuildVanillaPayload(""),
			wantPath: "task",
		},
		{
			name:     "whitespace task",
			req:      BuildVanillaPayload("   "),
			wantPath: "task",
		},
		{
			name:     "bad agent name",
			req:      BuildPayload("-bad", "x", "task"),
			wantPath: "metadata.agentName",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantPath == "" {
				assert.NoError(t, err)
				return
			}
			var pve *PayloadValidationError
			require.True(t, errors.As(err, &pve), "got %v", err)
			assert.Equal(t, tt.wantPath, pve.Path)
		})
	}
}
