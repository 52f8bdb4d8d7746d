package usecase

import (
	"context"
	"time"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/metrics"
)

const identityDomain = "identity"

// identityUseCaseWithMetrics decorates IdentityUseCase with metrics instrumentation.
type identityUseCaseWithMetrics struct {
	next    IdentityUseCase
	metrics metrics.BusinessMetrics
}

// NewIdentityUseCaseWithMetrics wraps an IdentityUseCase with metrics recording.
func NewIdentityUseCaseWithMetrics(useCase IdentityUseCase, m metrics.BusinessMetrics) IdentityUseCase {
	return &identityUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (i *identityUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	i.metrics.RecordOperation(ctx, identityDomain, operation, status)
	i.metrics.RecordDuration(ctx, identityDomain, operation, time.Since(start), status)
}

func (i *identityUseCaseWithMetrics) CreateIdentity(
	ctx context.Context,
	input domain.CreateIdentityInput,
) (*domain.EncryptedIdentity, error) {
	start := time.Now()
	enc, err := i.next.CreateIdentity(ctx, input)
	i.record(ctx, "identity_create", start, err)
	return enc, err
}

func (i *identityUseCaseWithMetrics) AuthenticateIdentity(
	ctx context.Context,
	enc *domain.EncryptedIdentity,
	passcode, expectedUsername string,
) (*domain.AuthSession, error) {
	start := time.Now()
	session, err := i.next.AuthenticateIdentity(ctx, enc, passcode, expectedUsername)
	i.record(ctx, "identity_authenticate", start, err)
	return session, err
}

func (i *identityUseCaseWithMetrics) GenerateAuthToken(ctx context.Context, did, username string) (string, error) {
	start := time.Now()
	token, err := i.next.GenerateAuthToken(ctx, did, username)
	i.record(ctx, "token_generate", start, err)
	return token, err
}

func (i *identityUseCaseWithMetrics) VerifyAuthToken(
	ctx context.Context,
	token, expectedDID string,
) (*domain.TokenClaims, error) {
	start := time.Now()
	claims, err := i.next.VerifyAuthToken(ctx, token, expectedDID)
	i.record(ctx, "token_verify", start, err)
	return claims, err
}

func (i *identityUseCaseWithMetrics) ExportIdentities(
	ctx context.Context,
	identities []domain.EncryptedIdentity,
) (*domain.ExportEnvelope, error) {
	start := time.Now()
	envelope, err := i.next.ExportIdentities(ctx, identities)
	i.record(ctx, "identity_export", start, err)
	return envelope, err
}

func (i *identityUseCaseWithMetrics) ParseExport(ctx context.Context, data []byte) (*domain.ExportEnvelope, error) {
	start := time.Now()
	envelope, err := i.next.ParseExport(ctx, data)
	i.record(ctx, "identity_parse_export", start, err)
	return envelope, err
}
