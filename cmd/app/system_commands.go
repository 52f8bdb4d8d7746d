package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/bymjmazzei/par-noir/cmd/app/commands"
	"github.com/bymjmazzei/par-noir/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the local HTTP API",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the database registry backend",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "migrate-legacy",
			Usage: "Convert identities stored in the legacy format into versioned identities",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					registry, err := container.RegistryUseCase()
					if err != nil {
						return err
					}
					return commands.RunMigrateLegacy(
						ctx,
						registry,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
	}
}
