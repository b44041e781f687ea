package agents

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// MaxLineSize bounds one output line. Events carrying command output
	// can run to megabytes; longer lines are skipped, not fatal.
	MaxLineSize = 64 * 1024 * 1024

	// ReadBufferSize is the buffered reader size for process output.
	ReadBufferSize = 64 * 1024

	// DefaultTimeout is the default wall-clock budget for one run.
	DefaultTimeout = 600 * time.Second

	// DefaultBinary is the codex binary looked up in PATH.
	DefaultBinary = "codex"

	// SandboxMode is the codex sandbox used for every subagent.
	SandboxMode = "workspace-write"

	// CodexHomeEnv is overridden per run to point at the sandbox home.
	CodexHomeEnv = "CODEX_HOME"

	// TimeoutExitCode is reported when a run exceeds its timeout.
	TimeoutExitCode = -1

	// LaunchFailureExitCode is reported when the process never started.
	LaunchFailureExitCode = 1

	// CancelledExitCode is reported when the parent context is cancelled.
	CancelledExitCode = 130
)

var (
	// ErrLaunchFailure marks runs whose process could not be started.
	ErrLaunchFailure = errors.New("launch failure")

	// ErrTimeout marks runs killed after exceeding their timeout.
	ErrTimeout = errors.New("timeout")

	// ErrCancelled marks runs stopped because the caller cancelled.
	ErrCancelled = errors.New("cancelled")

	// ErrMalformedEvent is returned by ParseEvent for lines that are not a
	// JSON object. Extraction skips such lines.
	ErrMalformedEvent = errors.New("malformed event")
)

// RunResult is the outcome of one codex exec run.
type RunResult struct {
	// Agent is the label of the agent that ran.
	Agent string

	// Output is the extracted agent message text. Empty when streamed.
	Output string

	// ExitCode is the process exit code, TimeoutExitCode on timeout.
	ExitCode int

	// Elapsed is the wall time from launch to completion, timeout or
	// launch failure.
	Elapsed time.Duration

	// Error describes a failed run. Empty on success.
	Error string

	kind error
}

// ElapsedSeconds returns Elapsed as float seconds.
func (r RunResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Failed reports whether the run has an error message.
func (r RunResult) Failed() bool {
	return r.Error != ""
}

// TimedOut reports whether the run was killed by its timeout.
func (r RunResult) TimedOut() bool {
	return errors.Is(r.kind, ErrTimeout)
}

// Err returns the run failure as an error wrapping ErrLaunchFailure,
// ErrTimeout or ErrCancelled, or nil for a completed run.
func (r RunResult) Err() error {
	if r.Error == "" {
		return nil
	}
	if r.kind == nil {
		return errors.New(r.Error)
	}
	return fmt.Errorf("%w: %s", r.kind, r.Error)
}

// Outcome classifies the run for reporting: ok, failed, timeout,
// launch_error or cancelled.
func (r RunResult) Outcome() string {
	switch {
	case errors.Is(r.kind, ErrTimeout):
		return "timeout"
	case errors.Is(r.kind, ErrLaunchFailure):
		return "launch_error"
	case errors.Is(r.kind, ErrCancelled):
		return "cancelled"
	case r.ExitCode != 0:
		return "failed"
	default:
		return "ok"
	}
}

// MarshalJSON encodes the result with elapsed seconds rounded to
// milliseconds.
func (r RunResult) MarshalJSON() ([]byte, error) {
	var errMsg *string
	if r.Error != "" {
		errMsg = &r.Error
	}
	return json.Marshal(struct {
		Agent      string  `json:"agent"`
		Output     string  `json:"output"`
		Elapsed    float64 `json:"elapsed"`
		ReturnCode int     `json:"returncode"`
		Error      *string `json:"error"`
	}{
		Agent:      r.Agent,
		Output:     r.Output,
		Elapsed:    RoundSeconds(r.Elapsed),
		ReturnCode: r.ExitCode,
		Error:      errMsg,
	})
}

// RoundSeconds returns d in seconds rounded to milliseconds.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}

// Observer is notified when a run finishes.
type Observer interface {
	RunFinished(result RunResult)
}

// TranscriptSink opens a raw transcript for one run.
type TranscriptSink interface {
	Open(label string) (io.WriteCloser, error)
}

// RunnerConfig holds configuration for a Runner.
type RunnerConfig struct {
	// Binary is the path or name of the codex binary.
	Binary string

	// SandboxHome is exported as CODEX_HOME for every run.
	SandboxHome string

	// Timeout bounds each run from launch. Zero uses DefaultTimeout.
	Timeout time.Duration

	// Stream forwards raw output lines instead of collecting them.
	Stream bool

	// Model is passed as -m when set.
	Model string

	// Reasoning is passed as -c model_reasoning_effort=<value> when set.
	Reasoning string

	// ExtraArgs are appended after the fixed arguments.
	ExtraArgs []string

	// WorkDir is the working directory for the subprocess.
	WorkDir string

	// Logger receives diagnostics. Nil disables them.
	Logger *log.Logger

	// Transcripts receives a copy of every raw output line when set.
	Transcripts TranscriptSink

	// Observer is notified of every finished run when set.
	Observer Observer
}
