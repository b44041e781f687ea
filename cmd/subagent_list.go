package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubagentListCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available agents",
		Long:  "List all discovered agents with their sources.",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listOutput(output); err != nil {
				return err
			}
			list, err := a.agentCatalog().List()
			if err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			if len(list) == 0 {
				fmt.Fprintln(a.stderr, "No agents found")
				return exitWith(1)
			}
			if output == "json" {
				return writeJSON(a.stdout, list)
			}
			writeAgentTable(a.stdout, list)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
