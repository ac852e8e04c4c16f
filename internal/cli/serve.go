package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/auth"
	"github.com/evcraddock/realty/internal/db"
	"github.com/evcraddock/realty/internal/logging"
	"github.com/evcraddock/realty/internal/storage"
	"github.com/evcraddock/realty/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP JSON API. Settings come from --config, a .env file and REALTY_* environment variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: from config or 8080)")

	return cmd
}

func runServe(ctx context.Context, port int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := serverConfig()
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.DevMode)

	database, err := db.OpenConfig(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(database)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("configuring image storage: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	srv := web.NewServer(database, store, tokens, web.Options{
		CORSOrigins: cfg.CORSOrigins,
		LoginRate:   cfg.Auth.LoginRate,
		LoginBurst:  cfg.Auth.LoginBurst,
	})

	if cfg.Seed.AdminEmail != "" {
		created, err := srv.Users().EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			slog.Info("seeded admin account", "email", cfg.Seed.AdminEmail)
		}
	}

	slog.Info("starting realty", "version", Version, "db", cfg.Database.Driver, "storage", cfg.Storage.Driver, "dev", cfg.DevMode)
	return srv.Run(ctx, cfg.Addr())
}
