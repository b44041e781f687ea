// Package cmd implements the subspace command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/config"
	"github.com/nibzard/subspace-go/internal/discovery"
	"github.com/nibzard/subspace-go/internal/logging"
	"github.com/nibzard/subspace-go/internal/metrics"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ExitError ends the process with Code. A nil Err means the message was
// already printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitWith returns nil for code 0 and a silent ExitError otherwise.
func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &ExitError{Code: code}
}

// usageError marks bad flags or arguments; it exits with status 2.
type usageError struct {
	err error
}

func (e usageError) Error() string {
	return e.err.Error()
}

func (e usageError) Unwrap() error {
	return e.err
}

// app holds state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	fs     afero.Fs

	workDir    string
	home       string
	configFile string
	lookPath   func(string) (string, error)

	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Recorder
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		fs:       afero.NewOsFs(),
		lookPath: exec.LookPath,
		logger:   logging.Discard(),
	}
}

// load resolves configuration for cmd and builds the logger and metrics.
func (a *app) load(cmd *cobra.Command) error {
	if a.workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		a.workDir = wd
	}
	if a.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			a.home = home
		}
	}

	cfg, err := config.Load(config.Options{
		ConfigFile: a.configFile,
		Flags:      cmd.Flags(),
		WorkDir:    a.workDir,
	})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}
	a.cfg = cfg
	a.logger = logging.FromConfig(a.stderr, cfg.LogLevel, cfg.LogFormat, cfg.Debug)
	a.logger.Debug("subspace "+Version, "config_files", cfg.Files, "project_root", cfg.ProjectRoot)
	if cfg.MetricsTextfile != "" {
		a.metrics = metrics.NewRecorder()
	}
	return nil
}

// flush writes metrics after the command finished, whatever its outcome.
func (a *app) flush() {
	if a.cfg == nil || a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Warn("failed to write metrics", "path", a.cfg.MetricsTextfile, "err", err)
	}
}

// agentCatalog returns the agent catalog, honoring the agents_dir override.
func (a *app) agentCatalog() *discovery.Agents {
	if a.cfg.AgentsDir != "" {
		return discovery.NewAgents(a.fs, []discovery.Source{discovery.OverrideSource(a.cfg.AgentsDir)})
	}
	locator := discovery.NewLocator(a.fs, a.cfg.ProjectRoot, a.home, a.logger)
	return discovery.NewAgents(a.fs, locator.AgentSources())
}

// commandCatalog returns the command catalog, honoring the commands_dir
// override.
func (a *app) commandCatalog() *discovery.Commands {
	if a.cfg.CommandsDir != "" {
		return discovery.NewCommands(a.fs, []discovery.Source{discovery.OverrideSource(a.cfg.CommandsDir)})
	}
	locator := discovery.NewLocator(a.fs, a.cfg.ProjectRoot, a.home, a.logger)
	return discovery.NewCommands(a.fs, locator.CommandSources())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "subspace",
		Short:         "Run Codex subagents and slash commands",
		Long:          "Subspace runs specialized Codex subagents in isolated sessions and serves slash command prompts.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate("subspace version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Config file (overrides user and project config)")
	cmd.PersistentFlags().Bool(config.FlagDebug, false, "Enable debug output")
	config.BindGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(newSetupCmd(a))
	cmd.AddCommand(newSubagentCmd(a))
	cmd.AddCommand(newCommandCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd(a))
	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, newApp(stdout, stderr), args)
}

func execute(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	a.flush()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}
	if ctx.Err() != nil {
		fmt.Fprintln(a.stderr, "\nInterrupted")
		return 130
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	var usage usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// positionalArgs wraps a cobra argument validator so its failures exit 2.
func positionalArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
