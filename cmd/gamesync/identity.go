package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-gamesync/internal/identity/local"
	identityrpc "github.com/goliatone/go-gamesync/internal/identity/rpc"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	"github.com/goliatone/go-gamesync/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/viant/jsonrpc/transport/server/http/streamable"
)

func newIdentityCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Run the identity service",
	}
	var addr, path string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve local accounts over JSON-RPC (streamable HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := root.resolve()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			lgr := logger.NewWithWriter(cmd.ErrOrStderr(), logger.ParseLevel(cfg.App.LogLevel)).With(logger.F("component", "identity"))

			providers, err := storage.Open(ctx, cfg.Storage.DSN, storage.WithRedisPrefix(cfg.Storage.RedisPrefix))
			if err != nil {
				return err
			}
			defer providers.Close()

			env := secrets.NewEnvProvider(nil, nil)
			env.Prefix = cfg.Secrets.EnvPrefix
			env.Dir = cfg.Secrets.FilesDir
			resolver := secrets.NewResolver(secrets.NewCache(cfg.Secrets.CacheTTL), env, secrets.WithLogger(lgr))
			signing, err := resolver.Resolve(ctx, secrets.FromValue(cfg.Identity.Credential))
			if err != nil {
				return err
			}
			svc, err := local.New(providers.Users, signing)
			if err != nil {
				return err
			}

			handler := identityrpc.NewHandler(svc, lgr)
			mux := http.NewServeMux()
			mux.Handle(path, streamable.New(handler.NewHandlerFunc(), streamable.WithURI(path)))
			server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

			errc := make(chan error, 1)
			go func() { errc <- server.ListenAndServe() }()
			lgr.Info("identity service listening", logger.F("addr", addr), logger.F("path", path))

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	serve.Flags().StringVar(&path, "path", "/identity", "JSON-RPC endpoint path")
	cmd.AddCommand(serve)
	return cmd
}
