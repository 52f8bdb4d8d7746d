package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

// RunUpdateNickname stores a new version of publicKey carrying nickname.
func RunUpdateNickname(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	writer io.Writer,
	publicKey, nickname, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	version, err := wallet.UpdateNickname(ctx, publicKey, nickname)
	if err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}

	logger.Info("nickname updated", slog.Int("version", version.Version))

	if format == FormatText {
		_, _ = fmt.Fprintf(writer, "Nickname updated to %q (version %d)\n", version.Nickname, version.Version)
		return nil
	}
	return writeStructured(writer, format, toIdentityView(*version))
}

// RunRemoveIdentity deletes every version of publicKey.
func RunRemoveIdentity(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	writer io.Writer,
	publicKey string,
) error {
	if err := wallet.Remove(ctx, publicKey); err != nil {
		return fmt.Errorf("failed to remove identity: %w", err)
	}

	logger.Info("identity removed")
	_, _ = fmt.Fprintln(writer, "Identity removed")
	return nil
}
