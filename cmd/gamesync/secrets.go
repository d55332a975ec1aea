package main

import (
	"github.com/goliatone/go-gamesync/pkg/gamesync"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	"github.com/spf13/cobra"
)

func newSecretsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect credential resolution",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Initialise every client and print readiness plus the masked secret cache",
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

			c := module.Container()
			ready := map[string]string{}
			for name, ensure := range map[string]func() error{
				"blob":      func() error { return c.Blob.EnsureReady(cmd.Context()) },
				"documents": func() error { return c.Documents.EnsureReady(cmd.Context()) },
				"queue":     func() error { return c.Queue.EnsureReady(cmd.Context()) },
				"identity":  func() error { return c.Identity.EnsureReady(cmd.Context()) },
			} {
				if err := ensure(); err != nil {
					ready[name] = err.Error()
					continue
				}
				ready[name] = "ready"
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"clients": ready,
				"cache":   secrets.MaskEntries(c.Cache.Snapshot()),
			})
		},
	})
	return cmd
}
