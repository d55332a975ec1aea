package main

import (
	"github.com/goliatone/go-gamesync/pkg/gamesync"
	"github.com/spf13/cobra"
)

func newWorkerCmd(root *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Mirror queued player data operations into the document store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.resolve()
			if err != nil {
				return err
			}
			module, err := root.module(cmd, cfg, gamesync.ModuleOptions{})
			if err != nil {
				return err
			}
			defer module.Close()

			src := module.Container().Storage.Queue
			if once {
				res, err := module.Worker().Run(cmd.Context(), src)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return module.Worker().Poll(cmd.Context(), src, cfg.Worker.PollInterval)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "drain the queue once and exit")
	return cmd
}
