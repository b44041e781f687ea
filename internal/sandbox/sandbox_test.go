package sandbox

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCopiesCredentials(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/me/.codex", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/home/me/.codex/config.toml", []byte("model = \"o3\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/home/me/.codex/auth.json", []byte(`{"token":"x"}`), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/home/me/.codex/history.jsonl", []byte("secret"), 0o600))

	home, err := Setup(fs, "/ws", "/home/me", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/ws", ".subspace", "codex-subagent"), home)

	data, err := afero.ReadFile(fs, filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "model = \"o3\"\n", string(data))

	info, err := fs.Stat(filepath.Join(home, "auth.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	exists, err := afero.Exists(fs, filepath.Join(home, "history.jsonl"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetupWithoutUserFiles(t *testing.T) {
	fs := afero.NewMemMapFs()

	home, err := Setup(fs, "/ws", "/home/nobody", nil)
	require.NoError(t, err)

	isDir, err := afero.DirExists(fs, home)
	require.NoError(t, err)
	assert.True(t, isDir)

	entries, err := afero.ReadDir(fs, home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetupIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/me/.codex", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/home/me/.codex/config.toml", []byte("v1"), 0o644))

	_, err := Setup(fs, "/ws", "/home/me", nil)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/home/me/.codex/config.toml", []byte("v2"), 0o644))
	home, err := Setup(fs, "/ws", "/home/me", nil)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestSetupRejectsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	userHome := t.TempDir()
	workspace := t.TempDir()
	codexHome := filepath.Join(userHome, ".codex")
	require.NoError(t, os.MkdirAll(codexHome, 0o755))

	target := filepath.Join(t.TempDir(), "elsewhere.json")
	require.NoError(t, os.WriteFile(target, []byte(`{"stolen":true}`), 0o600))
	require.NoError(t, os.Symlink(target, filepath.Join(codexHome, "auth.json")))
	require.NoError(t, os.WriteFile(filepath.Join(codexHome, "config.toml"), []byte("ok"), 0o644))

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	home, err := Setup(afero.NewOsFs(), workspace, userHome, logger)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(home))

	_, err = os.Lstat(filepath.Join(home, "auth.json"))
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
	assert.Contains(t, logs.String(), "symlink")
}
