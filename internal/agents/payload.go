package agents

import (
	"encoding/json"
	"fmt"
	"time"
)

// VanillaAgent is the agent label used when no agent is specified.
const VanillaAgent = "codex"

// StartedAtLayout formats AgentRequest.StartedAt.
const StartedAtLayout = "2006-01-02T15:04:05Z"

const guidanceTemplate = `You ARE the %s agent executing a task. You are NOT a dispatcher.

CRITICAL CONSTRAINTS:
- Do NOT spawn subagents or invoke subspace to run other agents
- Do NOT delegate to other agents
- Execute the task directly using your own capabilities
- If the task is outside your expertise, say so and stop

Your role: Follow the instructions below and complete the user's task directly.
`

// now is replaced in tests.
var now = time.Now

// AgentRequest is the single message written to a codex exec process.
type AgentRequest struct {
	AgentName    string
	Instructions string
	Task         string
	StartedAt    time.Time
}

// BuildPayload builds a request for a named agent. The instructions are
// prefixed with guidance telling the process it is that agent and must
// not dispatch further agents.
func BuildPayload(agentName, instructions, task string) AgentRequest {
	guidance := fmt.Sprintf(guidanceTemplate, agentName)
	return AgentRequest{
		AgentName:    agentName,
		Instructions: guidance + "\n---\n\n" + instructions,
		Task:         task,
		StartedAt:    now().UTC(),
	}
}

// BuildVanillaPayload builds a request without agent instructions.
func BuildVanillaPayload(task string) AgentRequest {
	return AgentRequest{
		AgentName: VanillaAgent,
		Task:      task,
		StartedAt: now().UTC(),
	}
}

// Label returns the agent label used in results.
func (r AgentRequest) Label() string {
	if r.AgentName == "" {
		return "subagent"
	}
	return r.AgentName
}

// IsVanilla reports whether the request carries no agent instructions.
func (r AgentRequest) IsVanilla() bool {
	return r.Instructions == ""
}

type payloadMetadata struct {
	AgentName string `json:"agentName"`
	StartedAt string `json:"startedAt"`
}

type payloadJSON struct {
	Instructions string          `json:"instructions,omitempty"`
	Task         string          `json:"task"`
	Metadata     payloadMetadata `json:"metadata"`
}

// MarshalJSON encodes the request in the codex exec input shape.
func (r AgentRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadJSON{
		Instructions: r.Instructions,
		Task:         r.Task,
		Metadata: payloadMetadata{
			AgentName: r.AgentName,
			StartedAt: r.StartedAt.UTC().Format(StartedAtLayout),
		},
	})
}

// UnmarshalJSON decodes the codex exec input shape.
func (r *AgentRequest) UnmarshalJSON(data []byte) error {
	var p payloadJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.AgentName = p.Metadata.AgentName
	r.Instructions = p.Instructions
	r.Task = p.Task
	r.StartedAt = time.Time{}
	if p.Metadata.StartedAt != "" {
		startedAt, err := time.Parse(StartedAtLayout, p.Metadata.StartedAt)
		if err != nil {
			return fmt.Errorf("parse startedAt: %w", err)
		}
		r.StartedAt = startedAt
	}
	return nil
}
