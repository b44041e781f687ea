package parallel

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/subspace-go/internal/agents"
)

// Reporter receives batch progress. Complete is called from the run's own
// goroutine as soon as it finishes, so implementations serialize their own
// output.
type Reporter interface {
	// Start is called once with every run before any launches.
	Start(runs []Run)
	// Begin is called when a run is about to launch.
	Begin(run Run)
	// Complete is called as soon as a run finishes.
	Complete(run Run)
	// Finish is called once after every run has completed.
	Finish(set RunSet)
}

// NopReporter ignores everything. Embed it to implement only some methods.
type NopReporter struct{}

func (NopReporter) Start([]Run) {}

func (NopReporter) Begin(Run) {}

func (NopReporter) Complete(Run) {}

func (NopReporter) Finish(RunSet) {}

// MultiReporter fans progress out to several reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) Start(runs []Run) {
	for _, r := range m {
		r.Start(runs)
	}
}

func (m MultiReporter) Begin(run Run) {
	for _, r := range m {
		r.Begin(run)
	}
}

func (m MultiReporter) Complete(run Run) {
	for _, r := range m {
		r.Complete(run)
	}
}

func (m MultiReporter) Finish(set RunSet) {
	for _, r := range m {
		r.Finish(set)
	}
}

var blockRule = strings.Repeat("=", 60)

// TextReporter prints one block per finished run and a timing summary.
type TextReporter struct {
	NopReporter
	out     *agents.LockedWriter
	summary io.Writer
	logger  *log.Logger
}

// NewTextReporter writes result blocks to out and the final summary line
// to summary (stderr in the CLI). Write failures go to logger at debug.
func NewTextReporter(out *agents.LockedWriter, summary io.Writer, logger *log.Logger) *TextReporter {
	return &TextReporter{out: out, summary: summary, logger: orDiscard(logger)}
}

// Complete prints the run's block.
func (t *TextReporter) Complete(run Run) {
	err := t.out.Locked(func(w io.Writer) error {
		return WriteTextBlock(w, run.Result)
	})
	if err != nil {
		t.logger.Debug("write result block", "id", run.ID, "err", err)
	}
}

// Finish prints the wall and total agent time.
func (t *TextReporter) Finish(set RunSet) {
	if t.summary == nil {
		return
	}
	fmt.Fprintf(t.summary, "\n[subspace] All complete. Wall time: %.1fs, Total agent time: %.1fs\n",
		set.Wall.Seconds(), set.TotalAgentTime().Seconds())
}

// WriteTextBlock writes the framed text block for one result.
func WriteTextBlock(w io.Writer, result agents.RunResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n[%s] (completed in %.1fs)\n%s\n", blockRule, result.Agent, result.ElapsedSeconds(), blockRule)
	switch {
	case result.Error != "":
		fmt.Fprintf(&b, "Error: %s\n", result.Error)
	case result.Output != "":
		b.WriteString(result.Output)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CompleteEvent is the terminal event emitted for each run in JSONL mode.
type CompleteEvent struct {
	Type       string  `json:"type"`
	Output     string  `json:"output"`
	Elapsed    float64 `json:"elapsed"`
	ReturnCode int     `json:"returncode"`
	Error      *string `json:"error"`
}

// NewCompleteEvent builds the terminal event for result.
func NewCompleteEvent(result agents.RunResult) CompleteEvent {
	ev := CompleteEvent{
		Type:       "complete",
		Output:     result.Output,
		Elapsed:    agents.RoundSeconds(result.Elapsed),
		ReturnCode: result.ExitCode,
	}
	if result.Error != "" {
		msg := result.Error
		ev.Error = &msg
	}
	return ev
}

// JSONLReporter writes a tagged complete event for each finished run to
// the shared event sink.
type JSONLReporter struct {
	NopReporter
	sink   agents.StreamWriter
	logger *log.Logger
}

// NewJSONLReporter creates a reporter over sink, which must serialize
// concurrent writes.
func NewJSONLReporter(sink agents.StreamWriter, logger *log.Logger) *JSONLReporter {
	return &JSONLReporter{sink: sink, logger: orDiscard(logger)}
}

// Complete writes the run's terminal event.
func (j *JSONLReporter) Complete(run Run) {
	err := agents.NewTaggedWriter(j.sink, run.ID, run.Request.AgentName).WriteEvent(NewCompleteEvent(run.Result))
	if err != nil {
		j.logger.Debug("write complete event", "id", run.ID, "err", err)
	}
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
