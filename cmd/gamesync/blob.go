package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients/blob"
	"github.com/goliatone/go-gamesync/pkg/gamesync"
	"github.com/spf13/cobra"
)

func newBlobCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Issue and check time-limited blob links",
	}

	var ttl time.Duration
	sign := &cobra.Command{
		Use:   "sign <blob-name>",
		Short: "Print a signed URL for a stored blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := blobClient(cmd, root)
			if err != nil {
				return err
			}
			defer closeFn()
			signed := client.SignedURL(cmd.Context(), args[0], ttl)
			if signed == "" {
				return errors.New("blob storage unavailable: check blob.credential")
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	sign.Flags().DurationVar(&ttl, "ttl", blob.DefaultSignedURLTTL, "link lifetime")

	verify := &cobra.Command{
		Use:   "verify <url>",
		Short: "Check a signed URL and print the blob it grants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := blobClient(cmd, root)
			if err != nil {
				return err
			}
			defer closeFn()
			name, err := client.VerifySignedURL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.AddCommand(sign, verify)
	return cmd
}

func blobClient(cmd *cobra.Command, root *rootOptions) (*blob.Client, func(), error) {
	cfg, _, err := root.resolve()
	if err != nil {
		return nil, nil, err
	}
	module, err := root.module(cmd, cfg, gamesync.ModuleOptions{})
	if err != nil {
		return nil, nil, err
	}
	return module.Container().Blob, func() { _ = module.Close() }, nil
}
