// Package commands holds the adoptctl subcommands.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/app/api"
	"github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/pet-adoption-api/internal/platform/postgres"
)

// Root builds the adoptctl command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:          "adoptctl",
		Short:        "Operational tooling for the pet adoption API",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCommand(), seedCommand(), tokenCommand())
	return root
}

func logger() *slog.Logger {
	return observability.NewLogger(os.Stderr, "text", slog.LevelInfo)
}

// connect opens the configured database. Every subcommand that touches
// storage needs a real DSN.
func connect(ctx context.Context) (*gorm.DB, func(), error) {
	cfg, err := api.LoadWorkerConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.PostgresDSN == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}
