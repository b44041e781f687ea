// Package ui provides the optional terminal progress view for parallel
// batches.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/subspace-go/internal/parallel"
)

// Status is the display state of one batch member.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusDone
	StatusFailed
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusTimeout:
		return "timeout"
	default:
		return "pending"
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	timeoutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

func (s Status) style() lipgloss.Style {
	switch s {
	case StatusRunning:
		return runningStyle
	case StatusDone:
		return doneStyle
	case StatusFailed:
		return failedStyle
	case StatusTimeout:
		return timeoutStyle
	default:
		return pendingStyle
	}
}

type row struct {
	id      string
	agent   string
	task    string
	status  Status
	started time.Time
	elapsed time.Duration
}

type startMsg struct{ runs []parallel.Run }

type beginMsg struct {
	id string
	at time.Time
}

type completeMsg struct{ run parallel.Run }

type finishMsg struct{ set parallel.RunSet }

type tickMsg time.Time

// model is the bubbletea model for a running batch.
type model struct {
	batchID      string
	rows         []row
	index        map[string]int
	finished     bool
	interrupted  bool
	wall         time.Duration
	tickInterval time.Duration
	now          func() time.Time
}

func newModel() *model {
	return &model{
		index:        make(map[string]int),
		tickInterval: 250 * time.Millisecond,
		now:          time.Now,
	}
}

func (m *model) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.interrupted = true
			return m, tea.Quit
		}
	case startMsg:
		m.rows = m.rows[:0]
		for _, run := range msg.runs {
			m.index[run.ID] = len(m.rows)
			m.rows = append(m.rows, row{
				id:    run.ID,
				agent: run.Request.AgentName,
				task:  run.Request.Task,
			})
		}
	case beginMsg:
		if i, ok := m.index[msg.id]; ok {
			m.rows[i].status = StatusRunning
			m.rows[i].started = msg.at
		}
	case completeMsg:
		if i, ok := m.index[msg.run.ID]; ok {
			result := msg.run.Result
			m.rows[i].elapsed = result.Elapsed
			switch result.Outcome() {
			case "ok":
				m.rows[i].status = StatusDone
			case "timeout":
				m.rows[i].status = StatusTimeout
			default:
				m.rows[i].status = StatusFailed
			}
		}
	case finishMsg:
		m.batchID = msg.set.ID
		m.wall = msg.set.Wall
		m.finished = true
		return m, tea.Quit
	case tickMsg:
		if m.finished {
			return m, nil
		}
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("subspace: %d agents", len(m.rows))))
	b.WriteString("\n\n")

	now := m.now()
	for _, r := range m.rows {
		elapsed := r.elapsed
		if r.status == StatusRunning {
			elapsed = now.Sub(r.started)
		}
		status := r.status.style().Render(fmt.Sprintf("%-8s", r.status))
		line := fmt.Sprintf("  %s %-24s %6.1fs  %s", status, truncate(r.id, 24), elapsed.Seconds(), truncate(r.task, 40))
		if r.status == StatusPending {
			line = fmt.Sprintf("  %s %-24s %7s  %s", status, truncate(r.id, 24), "", truncate(r.task, 40))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.finished {
		b.WriteString(footerStyle.Render(fmt.Sprintf("%s  All complete in %.1fs", m.summary(), m.wall.Seconds())))
	} else {
		b.WriteString(footerStyle.Render(m.summary() + "  q to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

// summary counts rows per status, e.g. "2 done, 1 running".
func (m *model) summary() string {
	counts := make(map[Status]int)
	for _, r := range m.rows {
		counts[r.status]++
	}
	var parts []string
	for _, s := range []Status{StatusDone, StatusFailed, StatusTimeout, StatusRunning, StatusPending} {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	if len(parts) == 0 {
		return "no agents"
	}
	return strings.Join(parts, ", ")
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
