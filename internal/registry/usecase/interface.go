// Package usecase implements the versioned identity registry: a bounded
// history of snapshots per public key with exactly one active version, and the
// migration from the legacy single-snapshot format.
package usecase

import (
	"context"

	"github.com/bymjmazzei/par-noir/internal/registry/domain"
)

// KVRepository is the persistence boundary. Get returns apperrors.ErrNotFound
// for a missing key; Delete of a missing key is not an error.
type KVRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RegistryUseCase defines the versioned identity registry operations.
type RegistryUseCase interface {
	// StoreIdentityVersion deactivates every version of publicKey, appends a
	// new active version and trims the group to the configured maximum.
	StoreIdentityVersion(ctx context.Context, publicKey, idFile, nickname string) (*domain.VersionedIdentity, error)

	// GetActiveIdentity returns domain.ErrIdentityNotFound when the group does
	// not exist or has no active version.
	GetActiveIdentity(ctx context.Context, publicKey string) (*domain.VersionedIdentity, error)

	// GetAllVersions returns retained versions, highest version first. An
	// unknown public key yields an empty slice.
	GetAllVersions(ctx context.Context, publicKey string) ([]domain.VersionedIdentity, error)

	// UpdateNickname stores a new version carrying the active idFile unchanged.
	UpdateNickname(ctx context.Context, publicKey, nickname string) (*domain.VersionedIdentity, error)

	// GetAllActiveIdentities returns the active version of every group, most
	// recently accessed first.
	GetAllActiveIdentities(ctx context.Context) ([]domain.VersionedIdentity, error)

	// UpdateLastAccessed touches the active version without creating a new one.
	UpdateLastAccessed(ctx context.Context, publicKey string) error

	RemoveIdentity(ctx context.Context, publicKey string) error

	// MigrateFromOldFormat moves legacy entries into the versioned format and
	// removes the legacy key. Malformed entries are reported and skipped.
	// Entries already present in the versioned format get another version.
	MigrateFromOldFormat(ctx context.Context) (*domain.MigrationReport, error)
}
