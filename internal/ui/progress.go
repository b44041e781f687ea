package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/subspace-go/internal/parallel"
)

// ErrInterrupted is returned by Wait when the user quit the view before
// the batch finished.
var ErrInterrupted = errors.New("interrupted")

// Progress runs the batch view and implements parallel.Reporter by
// forwarding each event to the bubbletea program.
type Progress struct {
	program *tea.Program
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// NewProgress creates the view on out. cancel is called if the user quits
// the view early, which should stop the batch.
func NewProgress(ctx context.Context, out io.Writer, cancel context.CancelFunc) *Progress {
	program := tea.NewProgram(newModel(),
		tea.WithContext(ctx),
		tea.WithOutput(out),
	)
	return &Progress{program: program, cancel: cancel, done: make(chan struct{})}
}

// Run starts the program in the background.
func (p *Progress) Run() {
	go func() {
		defer close(p.done)
		final, err := p.program.Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			p.err = err
		}
		if m, ok := final.(*model); ok && m.interrupted && !m.finished {
			if p.cancel != nil {
				p.cancel()
			}
			if p.err == nil {
				p.err = ErrInterrupted
			}
		}
	}()
}

// Wait blocks until the program exits.
func (p *Progress) Wait() error {
	<-p.done
	return p.err
}

func (p *Progress) Start(runs []parallel.Run) {
	p.program.Send(startMsg{runs: runs})
}

func (p *Progress) Begin(run parallel.Run) {
	p.program.Send(beginMsg{id: run.ID, at: time.Now()})
}

func (p *Progress) Complete(run parallel.Run) {
	p.program.Send(completeMsg{run: run})
}

func (p *Progress) Finish(set parallel.RunSet) {
	p.program.Send(finishMsg{set: set})
}

var _ parallel.Reporter = (*Progress)(nil)

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
