package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/subspace-go/internal/agents"
)

func TestRunFinishedCountsOutcomes(t *testing.T) {
	rec := NewRecorder()

	rec.RunFinished(agents.RunResult{Agent: "reviewer", ExitCode: 0, Elapsed: 2 * time.Second})
	rec.RunFinished(agents.RunResult{Agent: "reviewer", ExitCode: 2, Elapsed: time.Second})
	rec.RunFinished(agents.RunResult{Agent: "tester", ExitCode: 0, Elapsed: time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("reviewer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("reviewer", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("tester", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.durations))
}

func TestBatchFinished(t *testing.T) {
	rec := NewRecorder()
	rec.BatchFinished(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, testutil.ToFloat64(rec.batchWall), 1e-9)
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.RunFinished(agents.RunResult{Agent: "reviewer", Elapsed: time.Second})

	path := filepath.Join(t.TempDir(), "subspace.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `subspace_runs_total{agent="reviewer",outcome="ok"} 1`), text)
	assert.Contains(t, text, "subspace_run_duration_seconds_bucket")
	assert.Contains(t, text, "subspace_batch_wall_seconds")
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	assert.NoError(t, NewRecorder().WriteTextfile(""))
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	rec.RunFinished(agents.RunResult{Agent: "x"})
	rec.BatchFinished(time.Second)
	assert.Nil(t, rec.Registry())
	assert.NoError(t, rec.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
