package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/agents"
)

// singleCompleteEvent is the final JSONL line of a streamed single run.
type singleCompleteEvent struct {
	Type       string  `json:"type"`
	Agent      string  `json:"agent"`
	Elapsed    float64 `json:"elapsed"`
	ReturnCode int     `json:"returncode"`
}

func newSubagentRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [agent] <task>",
		Short: "Run a single agent",
		Long:  "Run a Codex subagent with a task. If agent is omitted, runs vanilla Codex.",
		Args:  positionalArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubagent(cmd, args)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func (a *app) runSubagent(cmd *cobra.Command, args []string) error {
	stream, err := a.streamOutput()
	if err != nil {
		return err
	}

	var req agents.AgentRequest
	if len(args) == 1 {
		a.logger.Debug("running vanilla codex (no agent)")
		req = agents.BuildVanillaPayload(args[0])
	} else {
		name := strings.TrimSpace(args[0])
		catalog := a.agentCatalog()
		def, err := catalog.Find(name)
		if err != nil {
			return lookupError("Agent", name, err)
		}
		instructions, err := catalog.Instructions(def.Name)
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		a.logger.Debug("found agent", "path", def.Path, "source", def.Source.Name, "instructions_chars", len(instructions))
		req = agents.BuildPayload(def.Name, instructions, args[1])
	}

	a.logger.Debug("built payload", "agent", req.Label(), "vanilla", req.IsVanilla(), "task_chars", len(req.Task))

	runner, err := a.newRunner(stream)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	var out agents.StreamWriter
	if stream {
		out = agents.NewLockedWriter(a.stdout)
	}
	result := runner.Run(cmd.Context(), req, out)

	if result.Outcome() == "cancelled" {
		fmt.Fprintln(a.stderr, "\nInterrupted")
		return exitWith(agents.CancelledExitCode)
	}
	if result.Failed() {
		return &ExitError{Code: 1, Err: errors.New(result.Error)}
	}

	if stream {
		line, err := json.Marshal(singleCompleteEvent{
			Type:       "complete",
			Agent:      result.Agent,
			Elapsed:    agents.RoundSeconds(result.Elapsed),
			ReturnCode: result.ExitCode,
		})
		if err != nil {
			return err
		}
		if err := out.WriteLine(line); err != nil {
			return err
		}
	} else if result.Output != "" {
		fmt.Fprintln(a.stdout, result.Output)
	}
	return exitWith(result.ExitCode)
}
