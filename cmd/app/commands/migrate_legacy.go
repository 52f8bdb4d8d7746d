package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
)

// LegacyMigrator moves identities from the pre-versioning format.
type LegacyMigrator interface {
	MigrateFromOldFormat(ctx context.Context) (*registryDomain.MigrationReport, error)
}

// RunMigrateLegacy converts the legacy single-snapshot list into versioned
// identities and prints the migration report.
func RunMigrateLegacy(
	ctx context.Context,
	migrator LegacyMigrator,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	report, err := migrator.MigrateFromOldFormat(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate legacy identities: %w", err)
	}

	logger.Info("legacy migration completed",
		slog.Int("migrated", report.Migrated),
		slog.Int("skipped", report.Skipped),
		slog.Bool("legacy_removed", report.LegacyRemoved),
	)

	if format == FormatText {
		if !report.LegacyRemoved && report.Migrated == 0 && report.Skipped == 0 {
			_, _ = fmt.Fprintln(writer, "No legacy identities found")
			return nil
		}
		_, _ = fmt.Fprintf(writer, "Migrated %d identities, skipped %d malformed entries\n",
			report.Migrated, report.Skipped)
		return nil
	}

	return writeStructured(writer, format, map[string]any{
		"migrated":      report.Migrated,
		"skipped":       report.Skipped,
		"legacyRemoved": report.LegacyRemoved,
	})
}
