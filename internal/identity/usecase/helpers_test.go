package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/identity/service"
	"github.com/bymjmazzei/par-noir/internal/metrics"
)

// quickDeriver has the contract of service.PBKDF2Deriver at a fraction of the
// cost. Only the alice scenario test runs the real derivation.
type quickDeriver struct{}

func (quickDeriver) DeriveKey(passcode string, salt []byte) ([]byte, error) {
	if passcode == "" || len(salt) != domain.SaltSize {
		return nil, domain.ErrDerivation
	}
	mac := hmac.New(sha512.New, salt)
	mac.Write([]byte(passcode))
	return mac.Sum(nil)[:domain.KeySize], nil
}

func newTestIdentityUseCase(t *testing.T, deriver service.KeyDeriver) IdentityUseCase {
	t.Helper()

	keyPairs, err := service.NewKeyPairGenerator(domain.MinRSABits)
	require.NoError(t, err)
	recovery, err := service.NewRecoveryKeyGenerator(domain.DefaultRecoveryKeyCount)
	require.NoError(t, err)
	tokens, err := service.NewTokenService([]byte("test signing secret"), time.Hour)
	require.NoError(t, err)

	return NewIdentityUseCase(service.NewPayloadCipher(deriver), keyPairs, recovery, tokens)
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

// mockIdentityUseCase is a hand-written mock of IdentityUseCase.
type mockIdentityUseCase struct {
	mock.Mock
}

func (m *mockIdentityUseCase) CreateIdentity(
	ctx context.Context,
	input domain.CreateIdentityInput,
) (*domain.EncryptedIdentity, error) {
	args := m.Called(ctx, input)
	enc, _ := args.Get(0).(*domain.EncryptedIdentity)
	return enc, args.Error(1)
}

func (m *mockIdentityUseCase) AuthenticateIdentity(
	ctx context.Context,
	enc *domain.EncryptedIdentity,
	passcode, expectedUsername string,
) (*domain.AuthSession, error) {
	args := m.Called(ctx, enc, passcode, expectedUsername)
	session, _ := args.Get(0).(*domain.AuthSession)
	return session, args.Error(1)
}

func (m *mockIdentityUseCase) GenerateAuthToken(ctx context.Context, did, username string) (string, error) {
	args := m.Called(ctx, did, username)
	return args.String(0), args.Error(1)
}

func (m *mockIdentityUseCase) VerifyAuthToken(
	ctx context.Context,
	token, expectedDID string,
) (*domain.TokenClaims, error) {
	args := m.Called(ctx, token, expectedDID)
	claims, _ := args.Get(0).(*domain.TokenClaims)
	return claims, args.Error(1)
}

func (m *mockIdentityUseCase) ExportIdentities(
	ctx context.Context,
	identities []domain.EncryptedIdentity,
) (*domain.ExportEnvelope, error) {
	args := m.Called(ctx, identities)
	envelope, _ := args.Get(0).(*domain.ExportEnvelope)
	return envelope, args.Error(1)
}

func (m *mockIdentityUseCase) ParseExport(ctx context.Context, data []byte) (*domain.ExportEnvelope, error) {
	args := m.Called(ctx, data)
	envelope, _ := args.Get(0).(*domain.ExportEnvelope)
	return envelope, args.Error(1)
}

var _ IdentityUseCase = (*mockIdentityUseCase)(nil)
