package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-gamesync/pkg/config"
	"github.com/goliatone/go-gamesync/pkg/gamesync"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/options"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	logLevel   string
	// loadOptions lets tests replace the process environment.
	loadOptions []config.LoadOption
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&rootOptions{})
}

func buildRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gamesync",
		Short: "Player session, game state and player data synchronization",
		Long: `gamesync authenticates players, keeps their game state in the player
record store and mirrors player data into the document store through a queue.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "JSON config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newDemoCmd(opts),
		newSecretsCmd(opts),
		newBlobCmd(opts),
		newWorkerCmd(opts),
		newIdentityCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// resolve loads the layered configuration: defaults, GAMESYNC_* environment,
// then the --config file.
func (o *rootOptions) resolve() (config.Config, *options.Resolver, error) {
	var input any
	if o.configFile != "" {
		raw, err := os.ReadFile(o.configFile)
		if err != nil {
			return config.Config{}, nil, fmt.Errorf("read config: %w", err)
		}
		payload := map[string]any{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return config.Config{}, nil, fmt.Errorf("parse config %s: %w", o.configFile, err)
		}
		input = payload
	}
	cfg, resolver, err := config.Resolve(input, o.loadOptions...)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	return cfg, resolver, nil
}

func (o *rootOptions) module(cmd *cobra.Command, cfg config.Config, mod gamesync.ModuleOptions) (*gamesync.Module, error) {
	mod.Config = cfg
	if mod.Logger == nil {
		mod.Logger = logger.NewWithWriter(cmd.ErrOrStderr(), logger.ParseLevel(cfg.App.LogLevel))
	}
	return gamesync.NewModule(cmd.Context(), mod)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
