package main

import (
	"context"
	"log/slog"

	"passgate/config"
	logs "passgate/internal/infra/log"
	"passgate/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gorm.io/gorm"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Create or update the accounts table and its unique email index.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var db *gorm.DB
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Populate(&db),
	)
	if err := app.Err(); err != nil {
		return errors.Wrap(err, "build migrate application")
	}

	if err := app.Start(ctx); err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer func() {
		if err := app.Stop(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to close database", slog.Any("error", err))
		}
	}()

	cmd.Println("Running migrations...")
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")

	return nil
}
