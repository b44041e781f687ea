package parallel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nibzard/subspace-go/internal/validate"
)

// ErrInvalidFormat is returned for malformed agent:task pairs.
var ErrInvalidFormat = errors.New("invalid format")

var (
	doubleQuotedPair = regexp.MustCompile(`^([^:]+):"(.+)"$`)
	singleQuotedPair = regexp.MustCompile(`^([^:]+):'(.+)'$`)
)

// ParsePair splits "agent:task", `agent:"task"` or "agent:'task'" into its
// agent name and task. The agent name is validated; the task must not be
// blank.
func ParsePair(text string) (agent, task string, err error) {
	if m := doubleQuotedPair.FindStringSubmatch(text); m != nil {
		agent, task = m[1], m[2]
	} else if m := singleQuotedPair.FindStringSubmatch(text); m != nil {
		agent, task = m[1], m[2]
	} else if name, rest, ok := strings.Cut(text, ":"); ok {
		agent, task = name, rest
	} else {
		return "", "", fmt.Errorf("%w: invalid agent:task format: %s", ErrInvalidFormat, text)
	}

	agent = strings.TrimSpace(agent)
	task = strings.TrimSpace(task)

	if err := validate.AgentName(agent); err != nil {
		return "", "", err
	}
	if task == "" {
		return "", "", fmt.Errorf("%w: task cannot be empty for agent %q", ErrInvalidFormat, agent)
	}
	return agent, task, nil
}

// Request is one agent run in a batch.
type Request struct {
	AgentName    string
	Task         string
	Instructions string
}

// AgentError reports a batch member whose agent could not be resolved.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("agent %q: %v", e.Agent, e.Err)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// InstructionsSource resolves an agent name to its instructions.
type InstructionsSource interface {
	Instructions(name string) (string, error)
}

// Prepare parses every pair and resolves every agent before anything is
// launched. Any failure rejects the whole batch.
func Prepare(pairs []string, src InstructionsSource) ([]Request, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no agent:task pairs provided", ErrInvalidFormat)
	}

	requests := make([]Request, 0, len(pairs))
	for _, pair := range pairs {
		agent, task, err := ParsePair(pair)
		if err != nil {
			return nil, err
		}
		instructions, err := src.Instructions(agent)
		if err != nil {
			return nil, &AgentError{Agent: agent, Err: err}
		}
		requests = append(requests, Request{
			AgentName:    agent,
			Task:         task,
			Instructions: instructions,
		})
	}
	return requests, nil
}
