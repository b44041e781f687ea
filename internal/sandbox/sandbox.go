// Package sandbox prepares the isolated CODEX_HOME used by subagents.
//
// Subagents run with CODEX_HOME pointing at <workspace>/.subspace/codex-subagent,
// which holds a copy of the user's codex config.toml and auth.json so the
// sandboxed process can authenticate without reading the real home.
package sandbox

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// HomeDir is the sandbox home relative to the workspace root.
const HomeDir = ".subspace/codex-subagent"

// SyncedFiles are copied from the user's codex home when present.
var SyncedFiles = []string{"config.toml", "auth.json"}

// Setup creates the sandbox home under workspace and syncs the credential
// files from <userHome>/.codex. Symlinks and non-regular files are skipped;
// copy failures are logged and skipped. It returns the absolute sandbox
// home path.
func Setup(fs afero.Fs, workspace, userHome string, logger *log.Logger) (string, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if abs, err := filepath.Abs(workspace); err == nil {
		workspace = abs
	}

	home := filepath.Join(workspace, filepath.FromSlash(HomeDir))
	if err := fs.MkdirAll(home, 0o755); err != nil {
		return "", fmt.Errorf("create sandbox home: %w", err)
	}

	if userHome == "" {
		return home, nil
	}
	codexHome := filepath.Join(userHome, ".codex")
	for _, name := range SyncedFiles {
		src := filepath.Join(codexHome, name)
		copied, err := copyRegular(fs, src, filepath.Join(home, name))
		switch {
		case err != nil:
			logger.Debug("failed to sync file", "src", src, "err", err)
		case copied:
			logger.Debug("synced file to sandbox home", "file", name, "home", home)
		}
	}
	return home, nil
}

// copyRegular copies src to dst when src is a regular file, keeping its
// permissions and modification time. It reports false for missing files
// and symlinks.
func copyRegular(fs afero.Fs, src, dst string) (bool, error) {
	info, err := lstat(fs, src)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return false, fmt.Errorf("refusing to copy symlink %s", src)
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}

	in, err := fs.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return false, err
	}
	_ = fs.Chtimes(dst, info.ModTime(), info.ModTime())
	return true, nil
}

func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}
