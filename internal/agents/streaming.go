package agents

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// lineSink handles one non-blank stdout line.
type lineSink func(line []byte)

// readLines reads r and calls sink for every non-blank trimmed line. Lines
// longer than MaxLineSize are dropped up to the next newline and counted;
// reading resumes with the following line. sink receives a copy.
func readLines(r io.Reader, sink lineSink) (skipped int, err error) {
	return readLinesLimit(r, MaxLineSize, sink)
}

func readLinesLimit(r io.Reader, limit int, sink lineSink) (skipped int, err error) {
	br := bufio.NewReaderSize(r, ReadBufferSize)
	var buf []byte
	oversized := false
	for {
		chunk, readErr := br.ReadSlice('\n')
		if !oversized {
			buf = append(buf, chunk...)
			if len(buf) > limit && len(bytes.TrimRight(buf, "\r\n")) > limit {
				oversized = true
				buf = buf[:0]
			}
		}
		if errors.Is(readErr, bufio.ErrBufferFull) {
			continue
		}

		if oversized {
			skipped++
		} else if line := bytes.TrimSpace(buf); len(line) > 0 {
			sink(append([]byte(nil), line...))
		}
		buf = buf[:0]
		oversized = false

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF):
			return skipped, nil
		default:
			// Keep the pipe flowing so the process never blocks on a full pipe.
			_, _ = io.Copy(io.Discard, br)
			return skipped, fmt.Errorf("read lines: %w", readErr)
		}
	}
}

// streamStderr sends stderr lines to the debug log. codex prints progress
// there; it is never part of the result.
func streamStderr(r io.Reader, logger *log.Logger, label string) {
	skipped, err := readLines(r, func(line []byte) {
		if logger != nil {
			logger.Debug("stderr", "agent", label, "line", string(line))
		}
	})
	if logger == nil {
		return
	}
	if skipped > 0 {
		logger.Debug("skipped oversized stderr lines", "agent", label, "count", skipped)
	}
	if err != nil {
		logger.Debug("read stderr", "agent", label, "err", err)
	}
}
