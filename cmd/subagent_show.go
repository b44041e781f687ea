package cmd

import (
	"github.com/spf13/cobra"
)

func newSubagentShowCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show <agent>",
		Short: "Show agent details",
		Args:  positionalArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := listOutput(output); err != nil {
				return err
			}
			details, err := a.agentCatalog().Details(args[0])
			if err != nil {
				return lookupError("Agent", args[0], err)
			}
			if output == "json" {
				return writeJSON(a.stdout, details)
			}
			writeDetails(a.stdout, "Agent", "Instructions", details)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
