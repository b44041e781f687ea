package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/config"
	"github.com/nibzard/subspace-go/internal/discovery"
	"github.com/nibzard/subspace-go/internal/validate"
)

func newCommandCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "command",
		Short: "Retrieve slash command prompts",
		Long:  "Retrieve slash command prompts for programmatic execution by agents.",
	}
	cmd.PersistentFlags().String(config.FlagCommandsDir, "", "Use a single commands directory instead of discovery")

	cmd.AddCommand(newCommandGetCmd(a))
	cmd.AddCommand(newCommandListCmd(a))
	cmd.AddCommand(newCommandShowCmd(a))
	return cmd
}

// commandPromptJSON is the --output json form of command get.
type commandPromptJSON struct {
	Command string   `json:"command"`
	Path    string   `json:"path"`
	Source  string   `json:"source"`
	Args    []string `json:"args"`
	Prompt  string   `json:"prompt"`
}

func newCommandGetCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <command> [args...]",
		Short: "Get the full prompt text for a command",
		Long:  "Retrieve the prompt text for a slash command, with $1..$n and $@ replaced by args.",
		Args:  positionalArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listOutput(output); err != nil {
				return err
			}
			name, cmdArgs := args[0], args[1:]
			clean, err := validate.CommandName(name)
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}

			def, prompt, err := a.commandCatalog().Prompt(clean)
			if err != nil {
				return lookupError("Command", "/"+clean, err)
			}
			a.logger.Debug("found command", "path", def.Path, "source", def.Source.Name)
			prompt = discovery.Interpolate(prompt, cmdArgs)

			if output == "json" {
				if cmdArgs == nil {
					cmdArgs = []string{}
				}
				return writeJSON(a.stdout, commandPromptJSON{
					Command: "/" + clean,
					Path:    def.Path,
					Source:  def.Source.Name,
					Args:    cmdArgs,
					Prompt:  prompt,
				})
			}
			fmt.Fprintln(a.stdout, prompt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text (raw prompt) or json")
	return cmd
}

func newCommandListCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available commands",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listOutput(output); err != nil {
				return err
			}
			list, err := a.commandCatalog().List()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if len(list) == 0 {
				fmt.Fprintln(a.stderr, "No commands found")
				fmt.Fprintln(a.stderr, "\nCommands are discovered from:")
				for _, dir := range []string{"./.claude/commands/", "./.codex/commands/", "~/.claude/commands/", "~/.codex/commands/"} {
					fmt.Fprintf(a.stderr, "  - %s\n", dir)
				}
				return exitWith(1)
			}
			if output == "json" {
				return writeJSON(a.stdout, list)
			}
			writeCommandTable(a.stdout, list)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}

func newCommandShowCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <command>",
		Short: "Show command details",
		Args:  positionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listOutput(output); err != nil {
				return err
			}
			clean, err := validate.CommandName(args[0])
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			details, err := a.commandCatalog().Details(clean)
			if err != nil {
				return lookupError("Command", "/"+clean, err)
			}
			if output == "json" {
				return writeJSON(a.stdout, details)
			}
			writeDetails(a.stdout, "Command", "Prompt", details)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
