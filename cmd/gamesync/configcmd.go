package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.resolve()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "explain <path>...",
		Short: "Show which layer (defaults, environment, explicit) set each path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, resolver, err := root.resolve()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				lines, err := resolver.Explain(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintln(out, path)
				for _, line := range lines {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	})
	return cmd
}
