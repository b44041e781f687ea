package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// codexIntegrationMarker identifies an installed guide in AGENTS.md.
const codexIntegrationMarker = "## Subspace Agent Tools"

//go:embed codex_agents.md
var codexIntegrationGuide string

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set up Codex CLI integration",
		Long:  "Install the subspace tool guide into ~/.codex/AGENTS.md so Codex can dispatch subagents and slash commands.",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
}

func (a *app) setup() error {
	if a.home == "" {
		return &ExitError{Code: 1, Err: fmt.Errorf("cannot determine home directory")}
	}
	codexDir := filepath.Join(a.home, ".codex")
	agentsFile := filepath.Join(codexDir, "AGENTS.md")

	_, lookErr := a.lookPath(a.cfg.CodexBinary)
	codexAvailable := lookErr == nil
	if !codexAvailable {
		fmt.Fprintf(a.stderr, "Warning: '%s' CLI not found in PATH\n", a.cfg.CodexBinary)
		fmt.Fprintln(a.stderr, "Install it from: https://github.com/openai/codex")
		fmt.Fprintln(a.stdout)
	}

	if err := a.fs.MkdirAll(codexDir, 0o755); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("create %s: %w", codexDir, err)}
	}

	existing, err := afero.ReadFile(a.fs, agentsFile)
	if err != nil && !os.IsNotExist(err) {
		return &ExitError{Code: 1, Err: fmt.Errorf("read %s: %w", agentsFile, err)}
	}
	if strings.Contains(string(existing), codexIntegrationMarker) {
		fmt.Fprintf(a.stdout, "✓ Subspace integration already installed in %s\n\n", agentsFile)
		fmt.Fprintf(a.stdout, "To reinstall, first remove the '%s' section.\n", codexIntegrationMarker)
		return nil
	}

	f, err := a.fs.OpenFile(agentsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("open %s: %w", agentsFile, err)}
	}
	if _, err := f.WriteString(codexIntegrationGuide); err != nil {
		f.Close()
		return &ExitError{Code: 1, Err: fmt.Errorf("write %s: %w", agentsFile, err)}
	}
	if err := f.Close(); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("close %s: %w", agentsFile, err)}
	}

	fmt.Fprintf(a.stdout, "✓ Subspace integration installed to %s\n\n", agentsFile)
	fmt.Fprintln(a.stdout, "Codex will now recognize @agent-{name} syntax and can run subagents.")
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Try these commands:")
	fmt.Fprintln(a.stdout, "  subspace subagent list            # See available agents")
	fmt.Fprintln(a.stdout, "  subspace subagent show tdd-agent  # Show agent details")
	fmt.Fprintln(a.stdout)

	if !codexAvailable {
		fmt.Fprintln(a.stdout, "Note: Install the Codex CLI to use 'subspace subagent run'")
		return exitWith(1)
	}
	return nil
}
