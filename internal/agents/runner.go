package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// drainTimeout bounds how long Wait keeps reading pipes after the process
// exits or is killed.
const drainTimeout = 2 * time.Second

// Runner runs one codex exec process per request.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner creates a runner, filling in defaults.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{cfg: normalizeConfig(cfg)}
}

// Run launches codex exec for req and supervises it until it exits or its
// timeout elapses. In stream mode every non-blank stdout line is forwarded
// to out as it arrives; otherwise the lines are reduced to the agent's
// answer. Run never returns an error: failures are recorded in the result.
func (r *Runner) Run(ctx context.Context, req AgentRequest, out StreamWriter) RunResult {
	result := r.run(ctx, req, out)
	if r.cfg.Observer != nil {
		r.cfg.Observer.RunFinished(result)
	}
	return result
}

func (r *Runner) run(ctx context.Context, req AgentRequest, out StreamWriter) RunResult {
	start := time.Now()
	label := req.Label()
	logger := r.logger()

	fail := func(kind error, code int, msg string) RunResult {
		logger.Debug("run failed", "agent", label, "exit_code", code, "error", msg)
		return RunResult{
			Agent:    label,
			ExitCode: code,
			Elapsed:  time.Since(start),
			Error:    msg,
			kind:     kind,
		}
	}

	if out == nil {
		out = NullStreamWriter{}
	}

	if err := req.Validate(); err != nil {
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("invalid payload: %v", err))
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("marshal payload: %v", err))
	}

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := codexArgs(r.cfg)
	cmd := exec.CommandContext(runCtx, r.cfg.Binary, args...)
	if r.cfg.WorkDir != "" {
		cmd.Dir = r.cfg.WorkDir
	}
	env, previous := processEnv(r.cfg.SandboxHome)
	if previous != "" && previous != r.cfg.SandboxHome {
		logger.Debug("overriding existing CODEX_HOME", "previous", previous, "sandbox", r.cfg.SandboxHome)
	}
	cmd.Env = env
	setProcessGroup(cmd)
	cmd.WaitDelay = drainTimeout

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("Failed to open subprocess pipes: %v", err))
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("Failed to open subprocess pipes: %v", err))
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("Failed to open subprocess pipes: %v", err))
	}

	logger.Debug("running agent", "agent", label, "sandbox", SandboxMode, "command", r.cfg.Binary+" "+strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("Codex binary not found: %s", r.cfg.Binary))
		}
		return fail(ErrLaunchFailure, LaunchFailureExitCode, fmt.Sprintf("Failed to start subprocess: %v", err))
	}

	transcript := r.openTranscript(label, logger)
	defer transcript.close()

	logger.Debug("sending payload", "agent", label, "bytes", len(payload))
	go func() {
		defer stdin.Close()
		if _, err := stdin.Write(append(payload, '\n')); err != nil {
			logger.Debug("write payload", "agent", label, "err", err)
		}
	}()

	collected := &lineCollector{}
	sink := NewMultiStreamWriter(transcript, collected)
	if r.cfg.Stream {
		sink = NewMultiStreamWriter(transcript, out)
	}

	var streams sync.WaitGroup
	streams.Add(2)
	go func() {
		defer streams.Done()
		skipped, err := readLines(stdout, func(line []byte) {
			if err := sink.WriteLine(line); err != nil {
				logger.Debug("forward event", "agent", label, "err", err)
			}
		})
		if skipped > 0 {
			logger.Warn("skipped oversized output lines", "agent", label, "count", skipped, "max_bytes", MaxLineSize)
		}
		if err != nil {
			logger.Debug("read stdout", "agent", label, "err", err)
		}
	}()
	go func() {
		defer streams.Done()
		streamStderr(stderr, logger, label)
	}()

	streamsDone := make(chan struct{})
	go func() {
		streams.Wait()
		close(streamsDone)
	}()

	var elapsed time.Duration
	select {
	case <-streamsDone:
	case <-runCtx.Done():
		// The exec package kills the process group once runCtx is done.
		elapsed = time.Since(start)
	}

	waitErr := cmd.Wait()
	<-streamsDone
	if elapsed == 0 {
		elapsed = time.Since(start)
	}

	if ctxErr := runCtx.Err(); ctxErr != nil && (waitErr != nil || elapsed >= r.cfg.Timeout) {
		if errors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Debug("run timed out", "agent", label, "timeout", r.cfg.Timeout)
			return TimeoutResult(label, elapsed, r.cfg.Timeout)
		}
		return RunResult{
			Agent:    label,
			ExitCode: CancelledExitCode,
			Elapsed:  elapsed,
			Error:    "cancelled",
			kind:     ErrCancelled,
		}
	}

	exitCode := exitCodeFromError(waitErr)
	logger.Debug("run completed", "agent", label, "elapsed", elapsed.Round(100*time.Millisecond), "exit_code", exitCode)

	result := RunResult{
		Agent:    label,
		ExitCode: exitCode,
		Elapsed:  elapsed,
	}
	if !r.cfg.Stream {
		result.Output = ExtractMessages(collected.lines)
	}
	return result
}

func (r *Runner) logger() *log.Logger {
	if r.cfg.Logger != nil {
		return r.cfg.Logger
	}
	return log.New(io.Discard)
}

// lineCollector keeps lines for extraction in collect mode.
type lineCollector struct {
	lines []string
}

func (c *lineCollector) WriteLine(line []byte) error {
	c.lines = append(c.lines, string(line))
	return nil
}

// runTranscript mirrors raw output lines into a transcript file. A nil
// writer makes every method a no-op.
type runTranscript struct {
	w      io.WriteCloser
	logger *log.Logger
}

func (r *Runner) openTranscript(label string, logger *log.Logger) *runTranscript {
	t := &runTranscript{logger: logger}
	if r.cfg.Transcripts == nil {
		return t
	}
	w, err := r.cfg.Transcripts.Open(label)
	if err != nil {
		logger.Warn("open transcript", "agent", label, "err", err)
		return t
	}
	t.w = w
	return t
}

// WriteLine appends line to the transcript. Failures are logged, never
// returned, so a broken transcript cannot interrupt forwarding.
func (t *runTranscript) WriteLine(line []byte) error {
	if t.w == nil {
		return nil
	}
	if err := NewLineWriter(t.w).WriteLine(line); err != nil {
		t.logger.Debug("write transcript", "err", err)
	}
	return nil
}

func (t *runTranscript) close() {
	if t.w == nil {
		return
	}
	if err := t.w.Close(); err != nil {
		t.logger.Debug("close transcript", "err", err)
	}
}

func normalizeConfig(cfg RunnerConfig) RunnerConfig {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// TimeoutResult is the result recorded for a run killed by its timeout.
func TimeoutResult(agent string, elapsed, timeout time.Duration) RunResult {
	return RunResult{
		Agent:    agent,
		ExitCode: TimeoutExitCode,
		Elapsed:  elapsed,
		Error:    fmt.Sprintf("Timeout after %s", formatTimeout(timeout)),
		kind:     ErrTimeout,
	}
}

// exitCodeFromError maps a Wait error to an exit code. A process killed by
// a signal we did not send reports 1, since -1 is reserved for timeouts.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return 1
}

// formatTimeout renders whole-second timeouts as "600s" and anything else
// with time.Duration formatting.
func formatTimeout(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
	return d.String()
}
