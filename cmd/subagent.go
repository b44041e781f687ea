package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/agents"
	"github.com/nibzard/subspace-go/internal/config"
	"github.com/nibzard/subspace-go/internal/discovery"
	"github.com/nibzard/subspace-go/internal/logging"
	"github.com/nibzard/subspace-go/internal/sandbox"
)

func newSubagentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subagent",
		Short: "Run Codex subagents",
		Long:  "Run specialized Codex subagents using Claude Code agent definitions.",
	}
	cmd.PersistentFlags().String(config.FlagAgentsDir, "", "Use a single agents directory instead of discovery")

	cmd.AddCommand(newSubagentRunCmd(a))
	cmd.AddCommand(newSubagentParallelCmd(a))
	cmd.AddCommand(newSubagentListCmd(a))
	cmd.AddCommand(newSubagentShowCmd(a))
	return cmd
}

// addRunFlags registers the flags shared by run and parallel.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(config.FlagOutput, "o", config.OutputText, "Output format: text or jsonl (jsonl for UI streaming)")
	cmd.Flags().Int(config.FlagTimeout, config.DefaultTimeoutSeconds, "Timeout in seconds per agent")
}

// streamOutput validates the run output format and reports whether it
// streams.
func (a *app) streamOutput() (bool, error) {
	switch a.cfg.Output {
	case config.OutputText:
		return false, nil
	case config.OutputJSONL:
		return true, nil
	}
	return false, usageError{fmt.Errorf("invalid output format %q (want text or jsonl)", a.cfg.Output)}
}

// newRunner prepares the sandbox home and builds a runner from config.
func (a *app) newRunner(stream bool) (*agents.Runner, error) {
	home, err := sandbox.Setup(a.fs, a.cfg.ProjectRoot, a.home, a.logger)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("prepared sandbox", "codex_home", home)
	if path, err := agents.ResolveBinary(a.cfg.CodexBinary); err != nil {
		a.logger.Debug("codex binary check failed", "err", err)
	} else {
		a.logger.Debug("using codex binary", "path", path)
	}

	rc := agents.RunnerConfig{
		Binary:      a.cfg.CodexBinary,
		SandboxHome: home,
		Timeout:     a.cfg.Timeout(),
		Stream:      stream,
		Model:       a.cfg.CodexModel,
		Reasoning:   a.cfg.CodexReasoning,
		ExtraArgs:   a.cfg.CodexArgs,
		WorkDir:     a.cfg.ProjectRoot,
		Logger:      a.logger,
	}
	if a.metrics != nil {
		rc.Observer = a.metrics
	}
	if a.cfg.TranscriptDir != "" {
		transcripts, err := logging.NewTranscripts(a.cfg.TranscriptDir, a.cfg.ProjectRoot)
		if err != nil {
			a.logger.Warn("transcripts disabled", "err", err)
		} else {
			a.logger.Debug("writing transcripts", "dir", transcripts.Dir, "run_id", transcripts.RunID)
			rc.Transcripts = transcripts
		}
	}
	return agents.NewRunner(rc), nil
}

// lookupError turns discovery failures into CLI errors.
func lookupError(kind, name string, err error) error {
	if errors.Is(err, discovery.ErrNotFound) {
		return &ExitError{Code: 1, Err: fmt.Errorf("%s '%s' not found", kind, name)}
	}
	return &ExitError{Code: 1, Err: err}
}
