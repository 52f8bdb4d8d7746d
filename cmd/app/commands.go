package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/bymjmazzei/par-noir/cmd/app/commands"
	"github.com/bymjmazzei/par-noir/internal/app"
	"github.com/bymjmazzei/par-noir/internal/config"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getIdentityCommands()...)
	return cmds
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   commands.FormatText,
		Usage:   "Output format: 'text', 'json' or 'yaml'",
	}
}

func passcodeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "passcode",
		Aliases: []string{"p"},
		Usage:   "Identity passcode (read from stdin when omitted)",
	}
}

func publicKeyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "public-key",
		Aliases:  []string{"k"},
		Required: true,
		Usage:    "Identity public key (base64)",
	}
}

// withContainer builds a container from the environment and shuts it down
// once fn returns.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

// withWallet is withContainer for commands that only need the wallet.
func withWallet(
	ctx context.Context,
	fn func(container *app.Container, wallet identityUseCase.WalletUseCase) error,
) error {
	return withContainer(ctx, func(container *app.Container) error {
		wallet, err := container.WalletUseCase()
		if err != nil {
			return err
		}
		return fn(container, wallet)
	})
}
