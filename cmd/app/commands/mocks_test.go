package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	identityService "github.com/bymjmazzei/par-noir/internal/identity/service"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) Register(
	ctx context.Context,
	input domain.CreateIdentityInput,
) (*registryDomain.VersionedIdentity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.VersionedIdentity), args.Error(1)
}

func (m *mockWallet) Login(
	ctx context.Context,
	publicKey, passcode, expectedUsername string,
) (*domain.AuthSession, error) {
	args := m.Called(ctx, publicKey, passcode, expectedUsername)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

func (m *mockWallet) UpdateNickname(
	ctx context.Context,
	publicKey, nickname string,
) (*registryDomain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey, nickname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.VersionedIdentity), args.Error(1)
}

func (m *mockWallet) ListActive(ctx context.Context) ([]registryDomain.VersionedIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registryDomain.VersionedIdentity), args.Error(1)
}

func (m *mockWallet) Versions(ctx context.Context, publicKey string) ([]registryDomain.VersionedIdentity, error) {
	args := m.Called(ctx, publicKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registryDomain.VersionedIdentity), args.Error(1)
}

func (m *mockWallet) Remove(ctx context.Context, publicKey string) error {
	args := m.Called(ctx, publicKey)
	return args.Error(0)
}

func (m *mockWallet) Export(ctx context.Context, publicKeys []string) (*domain.ExportEnvelope, error) {
	args := m.Called(ctx, publicKeys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportEnvelope), args.Error(1)
}

func (m *mockWallet) Import(
	ctx context.Context,
	data []byte,
	passcode string,
) ([]registryDomain.VersionedIdentity, error) {
	args := m.Called(ctx, data, passcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registryDomain.VersionedIdentity), args.Error(1)
}

func (m *mockWallet) Directory(ctx context.Context, query store.Query) (store.Page, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(store.Page), args.Error(1)
}

func (m *mockWallet) VerifySession(ctx context.Context, token, did string) (*domain.TokenClaims, error) {
	args := m.Called(ctx, token, did)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenClaims), args.Error(1)
}

type mockMigrator struct {
	mock.Mock
}

func (m *mockMigrator) MigrateFromOldFormat(ctx context.Context) (*registryDomain.MigrationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.MigrationReport), args.Error(1)
}

type mockKeeperService struct {
	mock.Mock
}

func (m *mockKeeperService) OpenKeeper(ctx context.Context, keeperURL string) (identityService.Keeper, error) {
	args := m.Called(ctx, keeperURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(identityService.Keeper), args.Error(1)
}
