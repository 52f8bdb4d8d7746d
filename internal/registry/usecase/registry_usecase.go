package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/registry/domain"
)

// Option configures a registry use case.
type Option func(*registryUseCase)

// WithClock replaces time.Now for version timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *registryUseCase) {
		r.now = now
	}
}

// registryUseCase keeps the whole registry in one JSON document under
// domain.KeyVersioned. Every read-modify-write holds mu and runs inside a
// transaction so that a group never has two active versions.
type registryUseCase struct {
	mu          sync.Mutex
	txManager   database.TxManager
	repo        KVRepository
	reporter    apperrors.Reporter
	maxVersions int
	now         func() time.Time
}

// NewRegistryUseCase creates a registry over repo. maxVersions <= 0 selects
// domain.DefaultMaxVersions.
func NewRegistryUseCase(
	txManager database.TxManager,
	repo KVRepository,
	reporter apperrors.Reporter,
	maxVersions int,
	opts ...Option,
) RegistryUseCase {
	if maxVersions <= 0 {
		maxVersions = domain.DefaultMaxVersions
	}
	r := &registryUseCase{
		txManager:   txManager,
		repo:        repo,
		reporter:    reporter,
		maxVersions: maxVersions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *registryUseCase) StoreIdentityVersion(
	ctx context.Context,
	publicKey, idFile, nickname string,
) (*domain.VersionedIdentity, error) {
	if publicKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "public key is required")
	}

	var stored domain.VersionedIdentity
	err := r.mutate(ctx, func(groups map[string]*domain.VersionGroup) error {
		stored = r.appendVersion(groups, publicKey, idFile, nickname)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *registryUseCase) GetActiveIdentity(
	ctx context.Context,
	publicKey string,
) (*domain.VersionedIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	group, ok := groups[publicKey]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	idx := group.Active()
	if idx < 0 {
		return nil, domain.ErrIdentityNotFound
	}
	active := group.Versions[idx]
	return &active, nil
}

func (r *registryUseCase) GetAllVersions(
	ctx context.Context,
	publicKey string,
) ([]domain.VersionedIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	group, ok := groups[publicKey]
	if !ok {
		return []domain.VersionedIdentity{}, nil
	}

	versions := make([]domain.VersionedIdentity, len(group.Versions))
	copy(versions, group.Versions)
	sortNewestFirst(versions)
	return versions, nil
}

func (r *registryUseCase) UpdateNickname(
	ctx context.Context,
	publicKey, nickname string,
) (*domain.VersionedIdentity, error) {
	var stored domain.VersionedIdentity
	err := r.mutate(ctx, func(groups map[string]*domain.VersionGroup) error {
		group, ok := groups[publicKey]
		if !ok {
			return domain.ErrIdentityNotFound
		}
		idx := group.Active()
		if idx < 0 {
			return domain.ErrIdentityNotFound
		}
		stored = r.appendVersion(groups, publicKey, group.Versions[idx].IDFile, nickname)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *registryUseCase) GetAllActiveIdentities(ctx context.Context) ([]domain.VersionedIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]domain.VersionedIdentity, 0, len(groups))
	for _, group := range groups {
		if idx := group.Active(); idx >= 0 {
			active = append(active, group.Versions[idx])
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if !active[i].LastAccessed.Equal(active[j].LastAccessed) {
			return active[i].LastAccessed.After(active[j].LastAccessed)
		}
		return active[i].PublicKey < active[j].PublicKey
	})
	return active, nil
}

func (r *registryUseCase) UpdateLastAccessed(ctx context.Context, publicKey string) error {
	return r.mutate(ctx, func(groups map[string]*domain.VersionGroup) error {
		group, ok := groups[publicKey]
		if !ok {
			return domain.ErrIdentityNotFound
		}
		idx := group.Active()
		if idx < 0 {
			return domain.ErrIdentityNotFound
		}
		group.Versions[idx].LastAccessed = r.now().UTC()
		return nil
	})
}

func (r *registryUseCase) RemoveIdentity(ctx context.Context, publicKey string) error {
	return r.mutate(ctx, func(groups map[string]*domain.VersionGroup) error {
		if _, ok := groups[publicKey]; !ok {
			return domain.ErrIdentityNotFound
		}
		delete(groups, publicKey)
		return nil
	})
}

func (r *registryUseCase) MigrateFromOldFormat(ctx context.Context) (*domain.MigrationReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &domain.MigrationReport{}
	err := r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		raw, err := r.repo.Get(txCtx, domain.KeyLegacy)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}

		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			// Leave the legacy key in place so the data can still be recovered.
			r.report(txCtx, "registry.migrate", apperrors.Wrap(domain.ErrCorruptStore, err.Error()))
			return nil
		}

		groups, err := r.load(txCtx)
		if err != nil {
			return err
		}

		for i, entry := range entries {
			var legacy domain.LegacyIdentity
			if err := json.Unmarshal(entry, &legacy); err != nil {
				r.skip(txCtx, report, i, err.Error())
				continue
			}
			idFile := legacy.IDFileString()
			if legacy.PublicKey == "" || idFile == "" || legacy.Nickname == "" {
				r.skip(txCtx, report, i, "missing publicKey, idFile or nickname")
				continue
			}
			r.appendVersion(groups, legacy.PublicKey, idFile, legacy.Nickname)
			report.Migrated++
		}

		if err := r.save(txCtx, groups); err != nil {
			return err
		}
		if err := r.repo.Delete(txCtx, domain.KeyLegacy); err != nil {
			return err
		}
		report.LegacyRemoved = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *registryUseCase) skip(ctx context.Context, report *domain.MigrationReport, index int, reason string) {
	report.Skipped++
	r.report(ctx, "registry.migrate", apperrors.Wrap(domain.ErrMigration, fmt.Sprintf("entry %d: %s", index, reason)))
}

// appendVersion must be called with mu held. Version numbers continue from the
// highest retained version so they stay monotonic after trimming.
func (r *registryUseCase) appendVersion(
	groups map[string]*domain.VersionGroup,
	publicKey, idFile, nickname string,
) domain.VersionedIdentity {
	group, ok := groups[publicKey]
	if !ok {
		group = &domain.VersionGroup{PublicKey: publicKey}
		groups[publicKey] = group
	}

	for i := range group.Versions {
		group.Versions[i].IsActive = false
	}

	now := r.now().UTC()
	version := domain.VersionedIdentity{
		PublicKey:    publicKey,
		IDFile:       idFile,
		Nickname:     nickname,
		Version:      group.LatestVersion() + 1,
		CreatedAt:    now,
		LastAccessed: now,
		IsActive:     true,
	}
	group.Versions = append(group.Versions, version)

	sortNewestFirst(group.Versions)
	if len(group.Versions) > r.maxVersions {
		group.Versions = group.Versions[:r.maxVersions]
	}
	return version
}

// mutate loads the registry, applies fn and saves the result in one
// transaction. Nothing is written when fn fails.
func (r *registryUseCase) mutate(ctx context.Context, fn func(groups map[string]*domain.VersionGroup) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		groups, err := r.load(txCtx)
		if err != nil {
			return err
		}
		if err := fn(groups); err != nil {
			return err
		}
		return r.save(txCtx, groups)
	})
}

// load reads the versioned document. A missing key is an empty registry. A
// document that cannot be decoded is reported and also read as empty.
func (r *registryUseCase) load(ctx context.Context) (map[string]*domain.VersionGroup, error) {
	groups := make(map[string]*domain.VersionGroup)

	raw, err := r.repo.Get(ctx, domain.KeyVersioned)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return groups, nil
		}
		return nil, err
	}

	var decoded map[string]*domain.VersionGroup
	if err := json.Unmarshal(raw, &decoded); err != nil {
		r.report(ctx, "registry.load", apperrors.Wrap(domain.ErrCorruptStore, err.Error()))
		return groups, nil
	}

	for publicKey, group := range decoded {
		if group == nil {
			r.report(ctx, "registry.load", apperrors.Wrapf(domain.ErrCorruptStore, "null group for %s", publicKey))
			continue
		}
		if group.PublicKey == "" {
			group.PublicKey = publicKey
		}
		groups[publicKey] = group
	}
	return groups, nil
}

func (r *registryUseCase) save(ctx context.Context, groups map[string]*domain.VersionGroup) error {
	raw, err := json.Marshal(groups)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode registry")
	}
	return r.repo.Set(ctx, domain.KeyVersioned, raw)
}

func (r *registryUseCase) report(ctx context.Context, op string, err error) {
	if r.reporter != nil {
		r.reporter.Report(ctx, op, err)
	}
}

func sortNewestFirst(versions []domain.VersionedIdentity) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].Version > versions[j].Version
	})
}
