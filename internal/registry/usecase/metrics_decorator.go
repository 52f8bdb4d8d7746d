package usecase

import (
	"context"
	"time"

	"github.com/bymjmazzei/par-noir/internal/metrics"
	"github.com/bymjmazzei/par-noir/internal/registry/domain"
)

const registryDomain = "registry"

// registryUseCaseWithMetrics decorates RegistryUseCase with metrics instrumentation.
type registryUseCaseWithMetrics struct {
	next    RegistryUseCase
	metrics metrics.BusinessMetrics
}

// NewRegistryUseCaseWithMetrics wraps a RegistryUseCase with metrics recording.
func NewRegistryUseCaseWithMetrics(useCase RegistryUseCase, m metrics.BusinessMetrics) RegistryUseCase {
	return &registryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *registryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, registryDomain, operation, status)
	r.metrics.RecordDuration(ctx, registryDomain, operation, time.Since(start), status)
}

func (r *registryUseCaseWithMetrics) StoreIdentityVersion(
	ctx context.Context,
	publicKey, idFile, nickname string,
) (*domain.VersionedIdentity, error) {
	start := time.Now()
	v, err := r.next.StoreIdentityVersion(ctx, publicKey, idFile, nickname)
	r.record(ctx, "version_store", start, err)
	return v, err
}

func (r *registryUseCaseWithMetrics) GetActiveIdentity(
	ctx context.Context,
	publicKey string,
) (*domain.VersionedIdentity, error) {
	start := time.Now()
	v, err := r.next.GetActiveIdentity(ctx, publicKey)
	r.record(ctx, "active_get", start, err)
	return v, err
}

func (r *registryUseCaseWithMetrics) GetAllVersions(
	ctx context.Context,
	publicKey string,
) ([]domain.VersionedIdentity, error) {
	start := time.Now()
	versions, err := r.next.GetAllVersions(ctx, publicKey)
	r.record(ctx, "versions_list", start, err)
	return versions, err
}

func (r *registryUseCaseWithMetrics) UpdateNickname(
	ctx context.Context,
	publicKey, nickname string,
) (*domain.VersionedIdentity, error) {
	start := time.Now()
	v, err := r.next.UpdateNickname(ctx, publicKey, nickname)
	r.record(ctx, "nickname_update", start, err)
	return v, err
}

func (r *registryUseCaseWithMetrics) GetAllActiveIdentities(ctx context.Context) ([]domain.VersionedIdentity, error) {
	start := time.Now()
	active, err := r.next.GetAllActiveIdentities(ctx)
	r.record(ctx, "active_list", start, err)
	return active, err
}

func (r *registryUseCaseWithMetrics) UpdateLastAccessed(ctx context.Context, publicKey string) error {
	start := time.Now()
	err := r.next.UpdateLastAccessed(ctx, publicKey)
	r.record(ctx, "last_accessed_update", start, err)
	return err
}

func (r *registryUseCaseWithMetrics) RemoveIdentity(ctx context.Context, publicKey string) error {
	start := time.Now()
	err := r.next.RemoveIdentity(ctx, publicKey)
	r.record(ctx, "identity_remove", start, err)
	return err
}

func (r *registryUseCaseWithMetrics) MigrateFromOldFormat(ctx context.Context) (*domain.MigrationReport, error) {
	start := time.Now()
	report, err := r.next.MigrateFromOldFormat(ctx)
	r.record(ctx, "legacy_migrate", start, err)
	return report, err
}
