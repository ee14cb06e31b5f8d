package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"today/internal/metrics"
	"today/internal/server"
	"today/internal/server/store"
)

const pruneInterval = time.Hour

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Apply the schema and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := newLogger()
			st, err := store.Open(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Migrate(ctx); err != nil {
				return err
			}

			go pruneRevoked(ctx, st, logger)

			gin.SetMode(gin.ReleaseMode)
			srv := server.New(cfg, st, server.NewGoogleAuth(cfg.Google), metrics.New(), logger)
			if err := srv.Run(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides addr in the config file)")
	return cmd
}

// pruneRevoked periodically drops revocations of sessions that expired.
func pruneRevoked(ctx context.Context, st *store.Store, logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := st.PruneSessions(ctx)
			if err != nil {
				logger.Warn("prune revoked sessions failed", "error", err)
				continue
			}
			logger.Debug("pruned revoked sessions", "count", n)
		}
	}
}
