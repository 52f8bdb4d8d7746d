// Package usecase orchestrates the identity vault: creating and authenticating
// encrypted identities, and the wallet flows that tie them to the versioned
// registry and the indexed store.
package usecase

import (
	"context"

	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/identity/service"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
)

// KeyPairGenerator produces identity key pairs.
type KeyPairGenerator interface {
	GenerateKeyPair() (*service.KeyPair, error)
}

// RecoveryKeyGenerator produces the recovery keys of a new identity.
type RecoveryKeyGenerator interface {
	Generate() ([]domain.RecoveryKey, error)
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	GenerateAuthToken(did, username string) (string, error)
	VerifyAuthToken(token, expectedDID string) (*domain.TokenClaims, error)
}

// IdentityUseCase is the identity cryptography engine.
type IdentityUseCase interface {
	// CreateIdentity generates a key pair, DID and recovery keys, and returns
	// them encrypted under input.Passcode. Only the public key is plaintext.
	CreateIdentity(ctx context.Context, input domain.CreateIdentityInput) (*domain.EncryptedIdentity, error)

	// AuthenticateIdentity decrypts enc and, when expectedUsername is not
	// empty, requires the decrypted username to equal it. Failures are
	// domain.ErrDecryption, domain.ErrDerivation or domain.ErrAuthorization;
	// callers at the UI boundary must collapse them with
	// domain.IsAuthenticationFailure.
	AuthenticateIdentity(
		ctx context.Context,
		enc *domain.EncryptedIdentity,
		passcode, expectedUsername string,
	) (*domain.AuthSession, error)

	GenerateAuthToken(ctx context.Context, did, username string) (string, error)
	VerifyAuthToken(ctx context.Context, token, expectedDID string) (*domain.TokenClaims, error)

	// ExportIdentities wraps identities in a versioned export envelope.
	ExportIdentities(ctx context.Context, identities []domain.EncryptedIdentity) (*domain.ExportEnvelope, error)

	// ParseExport decodes and validates an export envelope without decrypting it.
	ParseExport(ctx context.Context, data []byte) (*domain.ExportEnvelope, error)
}

// Registry is the versioned identity registry as seen by the wallet.
type Registry interface {
	StoreIdentityVersion(ctx context.Context, publicKey, idFile, nickname string) (*registryDomain.VersionedIdentity, error)
	GetActiveIdentity(ctx context.Context, publicKey string) (*registryDomain.VersionedIdentity, error)
	GetAllVersions(ctx context.Context, publicKey string) ([]registryDomain.VersionedIdentity, error)
	UpdateNickname(ctx context.Context, publicKey, nickname string) (*registryDomain.VersionedIdentity, error)
	GetAllActiveIdentities(ctx context.Context) ([]registryDomain.VersionedIdentity, error)
	UpdateLastAccessed(ctx context.Context, publicKey string) error
	RemoveIdentity(ctx context.Context, publicKey string) error
}

// IdentityStore is the indexed identity store as seen by the wallet.
type IdentityStore interface {
	Add(identity store.Identity)
	GetByID(id string) (store.Identity, bool)
	GetAll(query store.Query) store.Page
	Update(id string, patch store.Patch)
	Delete(id string)
}

// WalletUseCase composes the engine, the registry and the store into the
// operations exposed to the CLI and the HTTP API.
type WalletUseCase interface {
	Register(ctx context.Context, input domain.CreateIdentityInput) (*registryDomain.VersionedIdentity, error)
	Login(ctx context.Context, publicKey, passcode, expectedUsername string) (*domain.AuthSession, error)
	UpdateNickname(ctx context.Context, publicKey, nickname string) (*registryDomain.VersionedIdentity, error)
	ListActive(ctx context.Context) ([]registryDomain.VersionedIdentity, error)
	Versions(ctx context.Context, publicKey string) ([]registryDomain.VersionedIdentity, error)
	Remove(ctx context.Context, publicKey string) error
	Export(ctx context.Context, publicKeys []string) (*domain.ExportEnvelope, error)
	Import(ctx context.Context, data []byte, passcode string) ([]registryDomain.VersionedIdentity, error)
	Directory(ctx context.Context, query store.Query) (store.Page, error)
	VerifySession(ctx context.Context, token, did string) (*domain.TokenClaims, error)
}
