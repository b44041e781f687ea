package agents

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nibzard/subspace-go/internal/utils"
)

// ErrBinaryUnusable is wrapped by every ResolveBinary failure.
var ErrBinaryUnusable = errors.New("codex binary unusable")

// ResolveBinary reports the file a runner configured with name would
// execute. Bare names are searched in PATH; anything containing a path
// separator is checked in place.
func ResolveBinary(name string) (string, error) {
	if name == "" {
		name = DefaultBinary
	}
	if !strings.ContainsAny(name, `/`+string(filepath.Separator)) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %q not found in PATH", ErrBinaryUnusable, name)
		}
		return path, nil
	}
	if err := ValidateBinary(name); err != nil {
		return "", err
	}
	return name, nil
}

// ValidateBinary checks that path is a regular file the current user can
// execute. Windows has no execute bit, so the extension decides there.
func ValidateBinary(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s does not exist", ErrBinaryUnusable, path)
	case err != nil:
		return fmt.Errorf("%w: %v", ErrBinaryUnusable, err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrBinaryUnusable, path)
	}

	executable := info.Mode().Perm()&0o111 != 0
	if runtime.GOOS == "windows" {
		executable = utils.IsWindowsExecutable(path)
	}
	if !executable {
		return fmt.Errorf("%w: %s is not executable", ErrBinaryUnusable, path)
	}
	return nil
}
