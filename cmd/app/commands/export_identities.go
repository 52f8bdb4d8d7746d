package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	identityService "github.com/bymjmazzei/par-noir/internal/identity/service"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
)

var errKeeperURLRequired = errors.New("EXPORT_KEEPER_URL is required for sealed exports")

// OpenExportKeeper opens the keeper at keeperURL when sealed is set. It
// returns a nil keeper for plain exports.
func OpenExportKeeper(
	ctx context.Context,
	keeperService identityService.KeeperService,
	keeperURL string,
	sealed bool,
) (identityService.Keeper, error) {
	if !sealed {
		return nil, nil
	}
	if keeperURL == "" {
		return nil, errKeeperURLRequired
	}
	return keeperService.OpenKeeper(ctx, keeperURL)
}

// RunExportIdentities writes an export envelope for publicKeys, or for every
// active identity when publicKeys is empty. With a keeper the envelope is
// sealed and written as base64 text.
func RunExportIdentities(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	keeper identityService.Keeper,
	logger *slog.Logger,
	writer io.Writer,
	publicKeys []string,
) error {
	envelope, err := wallet.Export(ctx, publicKeys)
	if err != nil {
		return fmt.Errorf("failed to export identities: %w", err)
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	if keeper != nil {
		sealed, err := keeper.Encrypt(ctx, data)
		if err != nil {
			return fmt.Errorf("failed to seal export: %w", err)
		}
		data = []byte(base64.StdEncoding.EncodeToString(sealed))
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("identities exported",
		slog.Int("count", len(envelope.Identities)),
		slog.Bool("sealed", keeper != nil),
	)
	return nil
}

// RunImportIdentities imports the identities of an export file. Every
// identity must unlock with the passcode before anything is written.
func RunImportIdentities(
	ctx context.Context,
	wallet identityUseCase.WalletUseCase,
	keeper identityService.Keeper,
	logger *slog.Logger,
	io IOTuple,
	data []byte,
	passcodeFlag, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	passcode, err := readPasscode(passcodeFlag, io.Reader)
	if err != nil {
		return err
	}

	if keeper != nil {
		sealed, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
		if err != nil {
			return fmt.Errorf("sealed export is not valid base64: %w", err)
		}
		data, err = keeper.Decrypt(ctx, sealed)
		if err != nil {
			return fmt.Errorf("failed to open sealed export: %w", err)
		}
	}

	imported, err := wallet.Import(ctx, data, passcode)
	if err != nil {
		logger.Warn("import rejected")
		return collapseAuthError(err)
	}

	logger.Info("identities imported", slog.Int("count", len(imported)))

	if format == FormatText {
		_, _ = fmt.Fprintf(io.Writer, "Imported %d identities\n", len(imported))
		writeIdentitiesText(io.Writer, imported)
		return nil
	}
	return writeStructured(io.Writer, format, toIdentityViews(imported))
}
