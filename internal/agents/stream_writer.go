package agents

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// StreamWriter receives raw output lines in stream mode.
type StreamWriter interface {
	WriteLine(line []byte) error
}

// LineWriter writes each line to an io.Writer followed by a newline.
type LineWriter struct {
	w io.Writer
}

// NewLineWriter creates a LineWriter.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// WriteLine writes the line in a single Write call.
func (l *LineWriter) WriteLine(line []byte) error {
	data := make([]byte, 0, len(line)+1)
	data = append(data, line...)
	data = append(data, '\n')
	if _, err := l.w.Write(data); err != nil {
		return err
	}
	if f, ok := l.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// LockedWriter serializes writes from concurrent runs so interleaved
// output never splits a line.
type LockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLockedWriter wraps w.
func NewLockedWriter(w io.Writer) *LockedWriter {
	return &LockedWriter{w: w}
}

// Write implements io.Writer.
func (l *LockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// WriteLine writes line plus a newline while holding the lock.
func (l *LockedWriter) WriteLine(line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return NewLineWriter(l.w).WriteLine(line)
}

// Locked runs fn with exclusive access to the underlying writer, for
// multi-line blocks that must not interleave.
func (l *LockedWriter) Locked(fn func(w io.Writer) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.w)
}

// MultiStreamWriter writes to multiple stream writers.
type MultiStreamWriter struct {
	writers []StreamWriter
}

// NewMultiStreamWriter creates a new multi-writer. Nil writers are skipped.
func NewMultiStreamWriter(writers ...StreamWriter) *MultiStreamWriter {
	m := &MultiStreamWriter{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// WriteLine writes the line to all underlying writers.
func (m *MultiStreamWriter) WriteLine(line []byte) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.WriteLine(line); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-writer errors: %v", errs)
	}
	return nil
}

// NullStreamWriter discards lines.
type NullStreamWriter struct{}

// WriteLine does nothing.
func (NullStreamWriter) WriteLine(line []byte) error {
	return nil
}

// TaggedWriter wraps each JSON event of one batch member as
// {"agent_id":...,"agent_name":...,"event":...} so a consumer can
// demultiplex interleaved streams. Non-JSON lines pass through unchanged.
type TaggedWriter struct {
	sink      StreamWriter
	agentID   string
	agentName string
}

// NewTaggedWriter creates a tagged writer over a shared sink. The sink is
// responsible for serializing concurrent writes.
func NewTaggedWriter(sink StreamWriter, agentID, agentName string) *TaggedWriter {
	return &TaggedWriter{sink: sink, agentID: agentID, agentName: agentName}
}

type taggedEvent struct {
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name"`
	Event     any    `json:"event"`
}

// WriteLine tags and forwards one raw output line.
func (t *TaggedWriter) WriteLine(line []byte) error {
	if !json.Valid(line) {
		return t.sink.WriteLine(line)
	}
	return t.WriteEvent(json.RawMessage(line))
}

// WriteEvent tags and forwards an event value.
func (t *TaggedWriter) WriteEvent(event any) error {
	data, err := json.Marshal(taggedEvent{
		AgentID:   t.agentID,
		AgentName: t.agentName,
		Event:     event,
	})
	if err != nil {
		return fmt.Errorf("marshal tagged event: %w", err)
	}
	return t.sink.WriteLine(data)
}
