package main

import (
	"context"
	"log/slog"
	"os"

	"passgate/internal/delivery"
	"passgate/internal/infra/persistence/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gorm.io/gorm"
)

type startServerParams struct {
	fx.In

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Start the HTTP API serving signup, login and the authenticated identity route.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			options := append([]fx.Option{
				fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
					return &fxevent.SlogLogger{Logger: logger}
				}),
			}, serveOptions(migrate)...)
			fx.New(options...).Run()

			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")

	return cmd
}

func serveOptions(migrate bool) []fx.Option {
	options := []fx.Option{
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
	}
	if migrate {
		options = append(options, fx.Invoke(migrateOnStart))
	}

	return append(options, fx.Invoke(startServer))
}

func migrateOnStart(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("Schema migrated")

	return nil
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				params.Logger.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
