// Package cli implements the assessctl operator commands.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stemsi/cyberassess-backend/internal/app"
	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/logger"
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "assessctl",
		Short:         "Operator tooling for the cybersecurity assessment backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newEnsureIndexesCmd())
	cmd.AddCommand(newCreateAdminCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

// env is what every command needs: configuration and a logger.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

func loadEnv() (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger.Setup(cfg.LogLevel, cfg.LogFormat, "assessctl")}, nil
}

// withStores opens the configured stores for the duration of fn.
func (e *env) withStores(ctx context.Context, fn func(*app.Stores) error) error {
	stores, err := app.OpenStores(ctx, e.cfg, e.log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stores.Close(closeCtx)
	}()
	return fn(stores)
}
