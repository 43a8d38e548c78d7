package main

import (
	"context"

	"passgate/config"
	"passgate/internal/delivery/http"
	"passgate/internal/delivery/http/middleware"
	"passgate/internal/delivery/http/router/handler"
	"passgate/internal/infra/auth"
	logs "passgate/internal/infra/log"
	"passgate/internal/infra/metrics"
	"passgate/internal/infra/persistence/postgres"
	"passgate/internal/usecase/impl"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// NewRootCmd creates the root command for the passgate CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passgate",
		Short: "passgate - account signup, login and session tokens",
		Long: `passgate registers accounts with bcrypt-hashed passwords, exchanges
credentials for signed session tokens and guards routes behind them.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		metrics.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Provide(
		postgres.NewAccountRepository,
	)
}

func injectService() fx.Option {
	return fx.Provide(
		auth.NewBcryptHasher,
		auth.NewJWTService,
	)
}

func injectUsecase() fx.Option {
	return fx.Provide(
		impl.NewCredentialService,
	)
}

func injectMiddleware() fx.Option {
	return fx.Provide(
		middleware.NewAuthMiddleware,
	)
}

func injectHandler() fx.Option {
	return fx.Provide(
		handler.NewAccountHandler,
	)
}

func injectDelivery() fx.Option {
	return fx.Provide(
		fx.Annotate(
			http.NewServer,
			fx.ResultTags(`group:"deliveries"`),
		),
	)
}
