package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

// RunCreateIdentity creates a new encrypted identity and stores it as version 1
// in the registry. The passcode is taken from input.Passcode or read from
// the IOTuple reader.
func RunCreateIdentity(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	io IOTuple,
	input domain.CreateIdentityInput,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	passcode, err := readPasscode(input.Passcode, io.Reader)
	if err != nil {
		return err
	}
	input.Passcode = passcode

	logger.Info("creating identity", slog.String("nickname", input.Nickname))

	version, err := wallet.Register(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	if format == FormatText {
		_, _ = fmt.Fprintln(io.Writer, "Identity created successfully")
		_, _ = fmt.Fprintf(io.Writer, "Public Key: %s\n", version.PublicKey)
		_, _ = fmt.Fprintf(io.Writer, "Nickname: %s\n", version.Nickname)
		_, _ = fmt.Fprintf(io.Writer, "Version: %d\n", version.Version)
	} else if err := writeStructured(io.Writer, format, toIdentityView(*version)); err != nil {
		return err
	}

	logger.Info("identity created", slog.Int("version", version.Version))
	return nil
}
