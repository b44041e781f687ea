package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transcripts writes each run's raw output lines to its own JSONL file
// under <base>/<project-slug>/. It implements agents.TranscriptSink.
type Transcripts struct {
	Dir   string
	RunID string

	mu   sync.Mutex
	seen map[string]int
}

// NewTranscripts creates the per-project transcript directory. A relative
// baseDir is resolved against workDir.
func NewTranscripts(baseDir, workDir string) (*Transcripts, error) {
	dir, err := TranscriptDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &Transcripts{
		Dir:   dir,
		RunID: runID(),
		seen:  make(map[string]int),
	}, nil
}

// Open creates the transcript file for one run. Repeated labels within an
// invocation get a numeric suffix so concurrent runs of the same agent
// never share a file.
func (t *Transcripts) Open(label string) (io.WriteCloser, error) {
	path := t.path(label)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	return file, nil
}

func (t *Transcripts) path(label string) string {
	safe := sanitizeLabel(label)

	t.mu.Lock()
	t.seen[safe]++
	n := t.seen[safe]
	t.mu.Unlock()

	name := fmt.Sprintf("%s-%s.jsonl", t.RunID, safe)
	if n > 1 {
		name = fmt.Sprintf("%s-%s-%d.jsonl", t.RunID, safe, n)
	}
	return filepath.Join(t.Dir, name)
}

// TranscriptDir returns the transcript directory for workDir without
// creating it.
func TranscriptDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("transcript base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(resolveProjectRoot(resolvedWorkDir))), nil
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

func resolveProjectRoot(workDir string) string {
	if workDir == "" {
		return "."
	}
	if _, err := exec.LookPath("git"); err == nil {
		cmd := exec.Command("git", "-C", workDir, "rev-parse", "--show-toplevel")
		if output, err := cmd.Output(); err == nil {
			if root := strings.TrimSpace(string(output)); root != "" {
				return root
			}
		}
	}
	return workDir
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "project"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if !isLabelByte(c) && c != '.' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	if slug := strings.Trim(b.String(), "_"); slug != "" {
		return slug
	}
	return "project"
}

func sanitizeLabel(input string) string {
	var b strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		if isLabelByte(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('_')
		}
	}
	if label := strings.Trim(b.String(), "_"); label != "" {
		return label
	}
	return "run"
}

func isLabelByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

// runID is a sortable timestamp plus a short random suffix.
func runID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
}
