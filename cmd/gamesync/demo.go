package main

import (
	"fmt"

	"github.com/goliatone/go-gamesync/pkg/commands"
	"github.com/goliatone/go-gamesync/pkg/gamesync"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type demoOptions struct {
	email    string
	password string
	name     string
	rounds   int
}

func newDemoCmd(root *rootOptions) *cobra.Command {
	opts := &demoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Register a player, play a short session and print the saved state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "player@example.com", "player email")
	cmd.Flags().StringVar(&opts.password, "password", "secret1", "player password")
	cmd.Flags().StringVar(&opts.name, "name", "Player One", "display name")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 3, "levels to play")
	return cmd
}

func runDemo(cmd *cobra.Command, root *rootOptions, opts *demoOptions) error {
	ctx := cmd.Context()
	cfg, _, err := root.resolve()
	if err != nil {
		return err
	}
	// The demo signs local sessions with a throwaway secret unless one is configured.
	if cfg.Identity.Credential == "" {
		cfg.Identity.Credential = uuid.NewString()
	}
	if cfg.Queue.Credential == "" {
		cfg.Queue.Credential = "demo-queue"
	}
	if cfg.Documents.ConnectionString == "" && cfg.Documents.Endpoint == "" {
		cfg.Documents.ConnectionString = "demo-documents"
	}

	module, err := root.module(cmd, cfg, gamesync.ModuleOptions{})
	if err != nil {
		return err
	}
	defer module.Close()
	reg := module.Commands()

	if err := reg.Register.Execute(ctx, commands.Register{
		Email:           opts.email,
		Password:        opts.password,
		ConfirmPassword: opts.password,
		DisplayName:     opts.name,
	}); err != nil {
		if err := reg.Login.Execute(ctx, commands.Login{Email: opts.email, Password: opts.password}); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
	}
	if err := reg.LoadGame.Execute(ctx, commands.LoadGame{}); err != nil {
		return err
	}
	if err := reg.StartGame.Execute(ctx, commands.StartGame{}); err != nil {
		return err
	}
	for i := 0; i < opts.rounds; i++ {
		_ = reg.AddScore.Execute(ctx, commands.AddScore{Points: 10 * (i + 1)})
		_ = reg.LevelUp.Execute(ctx, commands.LevelUp{})
	}
	if err := reg.EndGame.Execute(ctx, commands.EndGame{}); err != nil {
		return err
	}

	state := module.Game().Snapshot()
	playerID := module.Container().Identity.Session().UserID
	if err := reg.SyncPlayerData.Execute(ctx, commands.SyncPlayerData{
		PlayerID: playerID,
		Data:     map[string]any{"score": state.State.Score, "level": state.State.Level},
	}); err != nil {
		return err
	}
	res, err := module.Worker().Run(ctx, module.Container().Storage.Queue)
	if err != nil {
		return err
	}

	out := map[string]any{
		"player":   module.Auth().State().User,
		"game":     state.State,
		"saved":    state.SaveError == nil,
		"worker":   res,
		"document": module.Container().Documents.Read(ctx, playerID),
	}
	if state.SaveError != nil {
		out["save_error"] = state.SaveError.Error()
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
