package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/metrics"
	"github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/registry/repository"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testRegistry struct {
	RegistryUseCase
	repo     *repository.MemoryKVRepository
	reporter *apperrors.RecordingReporter
	clock    *testClock
}

func newTestRegistry(t *testing.T, maxVersions int) *testRegistry {
	t.Helper()

	repo := repository.NewMemoryKVRepository()
	reporter := &apperrors.RecordingReporter{}
	clock := newTestClock()
	uc := NewRegistryUseCase(database.NewNoopTxManager(), repo, reporter, maxVersions, WithClock(clock.Now))

	return &testRegistry{RegistryUseCase: uc, repo: repo, reporter: reporter, clock: clock}
}

func versionNumbers(versions []domain.VersionedIdentity) []int {
	out := make([]int, len(versions))
	for i, v := range versions {
		out[i] = v.Version
	}
	return out
}

func activeCount(versions []domain.VersionedIdentity) int {
	n := 0
	for _, v := range versions {
		if v.IsActive {
			n++
		}
	}
	return n
}

// mockKVRepository is a mock implementation of KVRepository for testing.
type mockKVRepository struct {
	mock.Mock
}

func (m *mockKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Error(1)
}

func (m *mockKVRepository) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockKVRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// mockRegistryUseCase is a mock implementation of RegistryUseCase for testing.
type mockRegistryUseCase struct {
	mock.Mock
}

func (m *mockRegistryUseCase) StoreIdentityVersion(
	ctx context.Context,
	publicKey, idFile, nickname string,
) (*domain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey, idFile, nickname)
	v, _ := args.Get(0).(*domain.VersionedIdentity)
	return v, args.Error(1)
}

func (m *mockRegistryUseCase) GetActiveIdentity(ctx context.Context, publicKey string) (*domain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey)
	v, _ := args.Get(0).(*domain.VersionedIdentity)
	return v, args.Error(1)
}

func (m *mockRegistryUseCase) GetAllVersions(ctx context.Context, publicKey string) ([]domain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey)
	v, _ := args.Get(0).([]domain.VersionedIdentity)
	return v, args.Error(1)
}

func (m *mockRegistryUseCase) UpdateNickname(
	ctx context.Context,
	publicKey, nickname string,
) (*domain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey, nickname)
	v, _ := args.Get(0).(*domain.VersionedIdentity)
	return v, args.Error(1)
}

func (m *mockRegistryUseCase) GetAllActiveIdentities(ctx context.Context) ([]domain.VersionedIdentity, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.VersionedIdentity)
	return v, args.Error(1)
}

func (m *mockRegistryUseCase) UpdateLastAccessed(ctx context.Context, publicKey string) error {
	return m.Called(ctx, publicKey).Error(0)
}

func (m *mockRegistryUseCase) RemoveIdentity(ctx context.Context, publicKey string) error {
	return m.Called(ctx, publicKey).Error(0)
}

func (m *mockRegistryUseCase) MigrateFromOldFormat(ctx context.Context) (*domain.MigrationReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*domain.MigrationReport)
	return report, args.Error(1)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordCacheLookup(ctx context.Context, index string, hit bool) {
	m.Called(ctx, index, hit)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)
