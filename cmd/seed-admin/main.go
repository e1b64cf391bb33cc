// seed-admin creates the first super admin of an empty console. It refuses to run once any
// admin exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/config"
	"github.com/spec-kit/support-console/internal/observability"
	"github.com/spec-kit/support-console/internal/persistence"
	"github.com/spec-kit/support-console/internal/repository"
	"github.com/spec-kit/support-console/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var input service.SeedAdminInput

	flagSet := pflag.NewFlagSet("seed-admin", pflag.ContinueOnError)
	flagSet.StringVar(&input.Email, "email", "", "admin email (required)")
	flagSet.StringVar(&input.Password, "password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password, at least 8 characters (default $SEED_ADMIN_PASSWORD)")
	flagSet.StringVar(&input.Name, "name", "", "admin display name (required)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer store.Close(context.Background())

	gate := service.NewAccessGate(*cfg, service.AccessGateDependencies{
		AdminRepo:      repository.NewAdminRepository(store.Database()),
		CredentialRepo: repository.NewCredentialRepository(store.Database()),
		Logger:         logger,
	})

	admin, err := gate.SeedFirstAdmin(ctx, input)
	if err != nil {
		return err
	}
	logger.Info("seeded admin", zap.String("uid", admin.UID), zap.String("email", admin.Email))
	fmt.Printf("created super admin %s (%s)\n", admin.Email, admin.UID)
	return nil
}
