package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bymjmazzei/par-noir/cmd/app/commands"
	"github.com/bymjmazzei/par-noir/internal/app"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

func getIdentityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-identity",
			Usage: "Create a new encrypted identity",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "username",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "Username (3-32 characters: letters, digits, '.', '_' or '-')",
				},
				&cli.StringFlag{
					Name:     "nickname",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display nickname",
				},
				passcodeFlag(),
				&cli.StringFlag{
					Name:  "recovery-email",
					Usage: "Optional recovery email",
				},
				&cli.StringFlag{
					Name:  "recovery-phone",
					Usage: "Optional recovery phone",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunCreateIdentity(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO(),
						domain.CreateIdentityInput{
							Username:      cmd.String("username"),
							Nickname:      cmd.String("nickname"),
							Passcode:      cmd.String("passcode"),
							RecoveryEmail: cmd.String("recovery-email"),
							RecoveryPhone: cmd.String("recovery-phone"),
						},
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "authenticate",
			Usage: "Unlock an identity and issue a session token",
			Flags: []cli.Flag{
				publicKeyFlag(),
				passcodeFlag(),
				&cli.StringFlag{
					Name:    "username",
					Aliases: []string{"u"},
					Usage:   "Require the identity to belong to this username",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunAuthenticate(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO(),
						cmd.String("public-key"),
						cmd.String("passcode"),
						cmd.String("username"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "list-identities",
			Usage: "List the active version of every identity",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunListIdentities(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "identity-versions",
			Usage: "List the retained versions of an identity",
			Flags: []cli.Flag{publicKeyFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunIdentityVersions(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("public-key"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "update-nickname",
			Usage: "Store a new version of an identity with a different nickname",
			Flags: []cli.Flag{
				publicKeyFlag(),
				&cli.StringFlag{
					Name:     "nickname",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "New nickname",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunUpdateNickname(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("public-key"),
						cmd.String("nickname"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "remove-identity",
			Usage: "Remove every version of an identity",
			Flags: []cli.Flag{publicKeyFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					return commands.RunRemoveIdentity(
						ctx,
						wallet,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("public-key"),
					)
				})
			},
		},
		{
			Name:  "export-identities",
			Usage: "Write an export file for moving identities to another device",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "public-key",
					Aliases: []string{"k"},
					Usage:   "Identity to export (repeatable, defaults to every active identity)",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Output file (defaults to stdout)",
				},
				&cli.BoolFlag{
					Name:  "sealed",
					Usage: "Seal the export with the keeper at EXPORT_KEEPER_URL",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					keeper, err := commands.OpenExportKeeper(
						ctx,
						container.KeeperService(),
						container.Config().ExportKeeperURL,
						cmd.Bool("sealed"),
					)
					if err != nil {
						return err
					}
					if keeper != nil {
						defer func() { _ = keeper.Close() }()
					}

					writer := commands.DefaultIO().Writer
					if path := cmd.String("output"); path != "" {
						f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
						if err != nil {
							return fmt.Errorf("failed to create output file: %w", err)
						}
						defer func() { _ = f.Close() }()
						writer = f
					}

					return commands.RunExportIdentities(
						ctx,
						wallet,
						keeper,
						container.Logger(),
						writer,
						cmd.StringSlice("public-key"),
					)
				})
			},
		},
		{
			Name:  "import-identities",
			Usage: "Import the identities of an export file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "input",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Export file to import",
				},
				passcodeFlag(),
				&cli.BoolFlag{
					Name:  "sealed",
					Usage: "Open the export with the keeper at EXPORT_KEEPER_URL",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				data, err := os.ReadFile(cmd.String("input"))
				if err != nil {
					return fmt.Errorf("failed to read export file: %w", err)
				}

				return withWallet(ctx, func(container *app.Container, wallet identityUseCase.WalletUseCase) error {
					keeper, err := commands.OpenExportKeeper(
						ctx,
						container.KeeperService(),
						container.Config().ExportKeeperURL,
						cmd.Bool("sealed"),
					)
					if err != nil {
						return err
					}
					if keeper != nil {
						defer func() { _ = keeper.Close() }()
					}

					return commands.RunImportIdentities(
						ctx,
						wallet,
						keeper,
						container.Logger(),
						commands.DefaultIO(),
						data,
						cmd.String("passcode"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
