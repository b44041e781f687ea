package parallel

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nibzard/subspace-go/internal/agents"
)

// AgentRunner runs one supervised agent process. *agents.Runner
// implements it.
type AgentRunner interface {
	Run(ctx context.Context, req agents.AgentRequest, out agents.StreamWriter) agents.RunResult
}

// BatchConfig holds configuration for a Batch.
type BatchConfig struct {
	// Runner executes each request.
	Runner AgentRunner

	// MaxParallel caps concurrent runs. Zero runs every request at once.
	MaxParallel int

	// Reporter receives progress in completion order. Nil reports nothing.
	Reporter Reporter

	// Sink receives tagged events when the runner streams. Nil when
	// output is collected.
	Sink agents.StreamWriter

	// Logger receives diagnostics. Nil disables them.
	Logger *log.Logger
}

// Run is one member of a batch.
type Run struct {
	ID      string
	Index   int
	Request Request
	Result  agents.RunResult
}

// RunSet holds the results of one batch in request order.
type RunSet struct {
	ID   string
	Runs []Run
	Wall time.Duration
}

// TotalAgentTime sums the elapsed time of every run.
func (s RunSet) TotalAgentTime() time.Duration {
	var total time.Duration
	for _, r := range s.Runs {
		total += r.Result.Elapsed
	}
	return total
}

// ExitCode aggregates the run exit codes: the largest code wins, and a
// batch whose only failures are timeouts reports the timeout code rather
// than success.
func (s RunSet) ExitCode() int {
	code := 0
	timedOut := false
	for _, r := range s.Runs {
		if r.Result.ExitCode > code {
			code = r.Result.ExitCode
		}
		if r.Result.ExitCode < 0 {
			timedOut = true
		}
	}
	if code == 0 && timedOut {
		return agents.TimeoutExitCode
	}
	return code
}

// RunID identifies the run at index within a batch.
func RunID(agentName string, index int) string {
	return fmt.Sprintf("%s-%d", agentName, index)
}

// Batch fans requests out to independent agent runs.
type Batch struct {
	cfg BatchConfig
}

// NewBatch creates a batch runner.
func NewBatch(cfg BatchConfig) *Batch {
	if cfg.Reporter == nil {
		cfg.Reporter = NopReporter{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	return &Batch{cfg: cfg}
}

// Run launches every request and waits for all of them. Each run is bounded
// by the runner's own timeout; a failing run never cancels the others.
func (b *Batch) Run(ctx context.Context, requests []Request) RunSet {
	start := time.Now()
	set := RunSet{
		ID:   uuid.NewString(),
		Runs: make([]Run, len(requests)),
	}
	for i, req := range requests {
		set.Runs[i] = Run{ID: RunID(req.AgentName, i), Index: i, Request: req}
	}

	logger := b.cfg.Logger.With("batch", set.ID)
	logger.Debug("running agents in parallel", "count", len(requests), "max_parallel", b.cfg.MaxParallel)
	b.cfg.Reporter.Start(append([]Run(nil), set.Runs...))

	// Plain group: goroutines never return errors, so nothing is cancelled.
	var g errgroup.Group
	if b.cfg.MaxParallel > 0 {
		g.SetLimit(b.cfg.MaxParallel)
	}
	for i := range set.Runs {
		i := i
		run := set.Runs[i]
		g.Go(func() error {
			b.cfg.Reporter.Begin(run)
			run.Result = b.runOne(ctx, run)
			set.Runs[i] = run
			logger.Debug("agent finished", "id", run.ID, "exit_code", run.Result.ExitCode, "elapsed", run.Result.Elapsed)
			b.cfg.Reporter.Complete(run)
			return nil
		})
	}
	_ = g.Wait()

	set.Wall = time.Since(start)
	b.cfg.Reporter.Finish(set)
	return set
}

func (b *Batch) runOne(ctx context.Context, run Run) agents.RunResult {
	var out agents.StreamWriter
	if b.cfg.Sink != nil {
		out = agents.NewTaggedWriter(b.cfg.Sink, run.ID, run.Request.AgentName)
	}
	req := agents.BuildPayload(run.Request.AgentName, run.Request.Instructions, run.Request.Task)
	return b.cfg.Runner.Run(ctx, req, out)
}
