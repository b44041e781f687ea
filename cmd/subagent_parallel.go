package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/agents"
	"github.com/nibzard/subspace-go/internal/config"
	"github.com/nibzard/subspace-go/internal/discovery"
	"github.com/nibzard/subspace-go/internal/parallel"
	"github.com/nibzard/subspace-go/internal/ui"
)

// UI modes for parallel text output.
const (
	uiPlain = "plain"
	uiTUI   = "tui"
)

func newSubagentParallelCmd(a *app) *cobra.Command {
	var uiMode string
	cmd := &cobra.Command{
		Use:   "parallel <agent:task>...",
		Short: "Run multiple agents in parallel",
		Long:  `Run multiple agents concurrently (e.g., tdd-agent:"task1" coder:"task2").`,
		Args:  positionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParallel(cmd, args, uiMode)
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Int(config.FlagMaxParallel, 0, "Maximum concurrent agents (0 = unlimited)")
	cmd.Flags().StringVar(&uiMode, "ui", uiPlain, "Progress display for text output: plain or tui")
	return cmd
}

func (a *app) runParallel(cmd *cobra.Command, pairs []string, uiMode string) error {
	stream, err := a.streamOutput()
	if err != nil {
		return err
	}
	if uiMode != uiPlain && uiMode != uiTUI {
		return usageError{fmt.Errorf("invalid ui mode %q (want plain or tui)", uiMode)}
	}

	requests, err := parallel.Prepare(pairs, a.agentCatalog())
	if err != nil {
		return prepareError(err)
	}
	a.logger.Debug("running agents in parallel", "count", len(requests))

	runner, err := a.newRunner(stream)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	ctx := cmd.Context()
	batchCfg := parallel.BatchConfig{
		Runner:      runner,
		MaxParallel: a.cfg.MaxParallel,
		Logger:      a.logger,
	}

	var set parallel.RunSet
	switch {
	case stream:
		sink := agents.NewLockedWriter(a.stdout)
		batchCfg.Sink = sink
		batchCfg.Reporter = parallel.NewJSONLReporter(sink, a.logger)
		set = parallel.NewBatch(batchCfg).Run(ctx, requests)
	case uiMode == uiTUI && ui.IsTTY(a.stdout):
		set, err = a.runParallelTUI(ctx, batchCfg, requests)
		if err != nil {
			return err
		}
	default:
		if uiMode == uiTUI {
			a.logger.Debug("tui requires a terminal, using plain output")
		}
		batchCfg.Reporter = parallel.NewTextReporter(agents.NewLockedWriter(a.stdout), a.stderr, a.logger)
		set = parallel.NewBatch(batchCfg).Run(ctx, requests)
	}

	if a.metrics != nil {
		a.metrics.BatchFinished(set.Wall)
	}
	if ctx.Err() != nil {
		fmt.Fprintln(a.stderr, "\nInterrupted")
		return exitWith(agents.CancelledExitCode)
	}
	return exitWith(set.ExitCode())
}

// runParallelTUI shows the progress view while the batch runs, then prints
// the buffered result blocks and summary once the view has exited.
func (a *app) runParallelTUI(ctx context.Context, batchCfg parallel.BatchConfig, requests []parallel.Request) (parallel.RunSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var blocks, summary bytes.Buffer
	progress := ui.NewProgress(ctx, a.stdout, cancel)
	progress.Run()

	batchCfg.Reporter = parallel.MultiReporter{
		progress,
		parallel.NewTextReporter(agents.NewLockedWriter(&blocks), &summary, a.logger),
	}
	set := parallel.NewBatch(batchCfg).Run(ctx, requests)

	viewErr := progress.Wait()
	if _, err := io.Copy(a.stdout, &blocks); err != nil {
		return set, err
	}
	if _, err := io.Copy(a.stderr, &summary); err != nil {
		return set, err
	}
	if viewErr != nil && !errors.Is(viewErr, ui.ErrInterrupted) {
		a.logger.Warn("progress view failed", "err", viewErr)
	}
	return set, nil
}

// prepareError maps batch preparation failures to CLI errors. Missing
// agents read "Agent 'x' not found".
func prepareError(err error) error {
	if errors.Is(err, discovery.ErrNotFound) {
		var missing *parallel.AgentError
		if errors.As(err, &missing) {
			return &ExitError{Code: 1, Err: fmt.Errorf("Agent '%s' not found", missing.Agent)}
		}
	}
	return &ExitError{Code: 1, Err: err}
}
