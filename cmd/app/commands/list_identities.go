package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

// RunListIdentities prints the active version of every identity, most
// recently accessed first.
func RunListIdentities(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	versions, err := wallet.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list identities: %w", err)
	}
	logger.Debug("listed identities", slog.Int("count", len(versions)))

	if format == FormatText {
		writeIdentitiesText(writer, versions)
		return nil
	}
	return writeStructured(writer, format, toIdentityViews(versions))
}

// RunIdentityVersions prints every retained version of publicKey, newest first.
func RunIdentityVersions(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	logger *slog.Logger,
	writer io.Writer,
	publicKey, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	versions, err := wallet.Versions(ctx, publicKey)
	if err != nil {
		return fmt.Errorf("failed to get identity versions: %w", err)
	}
	logger.Debug("listed identity versions", slog.Int("count", len(versions)))

	if format == FormatText {
		writeIdentitiesText(writer, versions)
		return nil
	}
	return writeStructured(writer, format, toIdentityViews(versions))
}
