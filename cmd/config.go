package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nibzard/subspace-go/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value came from",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Files) > 0 {
				fmt.Fprintf(a.stdout, "Config files: %s\n\n", strings.Join(a.cfg.Files, ", "))
			} else {
				fmt.Fprintln(a.stdout, "Config files: (none)")
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "%-18s %-40s %s\n", "KEY", "VALUE", "SOURCE")
			for _, key := range config.Keys() {
				fmt.Fprintf(a.stdout, "%-18s %-40s %s\n", key, a.cfg.Value(key), a.cfg.SourceOf(key))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "Print an example subspace.toml",
		Args:  positionalArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(a.stdout, config.ExampleConfig())
			return nil
		},
	})
	return cmd
}
