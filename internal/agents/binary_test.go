package agents

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not used on windows")
	}
	tmpDir := t.TempDir()

	execPath := filepath.Join(tmpDir, "codex")
	require.NoError(t, os.WriteFile(execPath, []byte("#!/bin/sh\necho test\n"), 0755))
	assert.NoError(t, ValidateBinary(execPath))

	assert.ErrorIs(t, ValidateBinary("/nonexistent/path/to/codex"), ErrBinaryUnusable)
	err := ValidateBinary(tmpDir)
	assert.ErrorIs(t, err, ErrBinaryUnusable)
	assert.Contains(t, err.Error(), "is a directory")

	nonExecPath := filepath.Join(tmpDir, "non_exec")
	require.NoError(t, os.WriteFile(nonExecPath, []byte("not executable"), 0644))
	err = ValidateBinary(nonExecPath)
	assert.ErrorIs(t, err, ErrBinaryUnusable)
	assert.Contains(t, err.Error(), "is not executable")
}

func TestResolveBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries are shell scripts")
	}
	tmpDir := t.TempDir()
	execPath := filepath.Join(tmpDir, "codex-stub")
	require.NoError(t, os.WriteFile(execPath, []byte("#!/bin/sh\n"), 0755))

	got, err := ResolveBinary(execPath)
	require.NoError(t, err)
	assert.Equal(t, execPath, got)

	t.Setenv("PATH", tmpDir)
	got, err = ResolveBinary("codex-stub")
	require.NoError(t, err)
	assert.Equal(t, execPath, got)

	_, err = ResolveBinary("definitely-not-installed-codex")
	assert.ErrorIs(t, err, ErrBinaryUnusable)
}
