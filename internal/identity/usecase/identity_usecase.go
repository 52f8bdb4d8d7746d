package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/identity/service"
)

type identityUseCase struct {
	cipher   service.Cipher
	keyPairs KeyPairGenerator
	recovery RecoveryKeyGenerator
	tokens   TokenService
	now      func() time.Time
}

// NewIdentityUseCase creates the identity cryptography engine.
func NewIdentityUseCase(
	cipher service.Cipher,
	keyPairs KeyPairGenerator,
	recovery RecoveryKeyGenerator,
	tokens TokenService,
) IdentityUseCase {
	return &identityUseCase{
		cipher:   cipher,
		keyPairs: keyPairs,
		recovery: recovery,
		tokens:   tokens,
		now:      time.Now,
	}
}

func (u *identityUseCase) CreateIdentity(
	ctx context.Context,
	input domain.CreateIdentityInput,
) (*domain.EncryptedIdentity, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	keyPair, err := u.keyPairs.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	recoveryKeys, err := u.recovery.Generate()
	if err != nil {
		return nil, err
	}

	payload := &domain.Payload{
		ID:                 keyPair.DID,
		Username:           input.Username,
		Nickname:           input.Nickname,
		RecoveryEmail:      input.RecoveryEmail,
		RecoveryPhone:      input.RecoveryPhone,
		CreatedAt:          u.now().UTC(),
		Status:             domain.StatusActive,
		CustodiansRequired: true,
		CustodiansSetup:    false,
		RecoveryKeys:       recoveryKeys,
		PrivateKey:         keyPair.PrivateKey,
	}
	defer payload.Wipe()

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize identity payload")
	}
	defer domain.Zero(plaintext)

	sealed, err := u.cipher.Encrypt(plaintext, input.Passcode)
	if err != nil {
		return nil, err
	}

	return domain.NewEncryptedIdentity(keyPair.PublicKey, sealed), nil
}

// AuthenticateIdentity runs derive, decrypt, parse and the username gate in
// that order. Nothing is returned until every step has passed.
func (u *identityUseCase) AuthenticateIdentity(
	ctx context.Context,
	enc *domain.EncryptedIdentity,
	passcode, expectedUsername string,
) (*domain.AuthSession, error) {
	if enc == nil || enc.Validate() != nil {
		return nil, domain.ErrDecryption
	}
	sealed, err := enc.Seal()
	if err != nil {
		return nil, domain.ErrDecryption
	}

	plaintext, err := u.cipher.Decrypt(sealed, passcode)
	if err != nil {
		return nil, err
	}
	defer domain.Zero(plaintext)

	var payload domain.Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, domain.ErrDecryption
	}
	defer payload.Wipe()

	if payload.ID == "" || payload.Username == "" {
		return nil, domain.ErrDecryption
	}
	// The public key travels in plaintext, so the payload has to prove it
	// belongs to that key before a session is issued for it.
	if !service.KeyPairMatches(enc.PublicKey, payload.PrivateKey, payload.ID) {
		return nil, domain.ErrDecryption
	}
	if expectedUsername != "" &&
		subtle.ConstantTimeCompare([]byte(payload.Username), []byte(expectedUsername)) != 1 {
		return nil, domain.ErrAuthorization
	}

	token, err := u.tokens.GenerateAuthToken(payload.ID, payload.Username)
	if err != nil {
		return nil, err
	}

	return &domain.AuthSession{
		ID:              payload.ID,
		PNName:          payload.Username,
		Nickname:        payload.Nickname,
		AccessToken:     token,
		ExpiresIn:       domain.SessionExpiresIn,
		AuthenticatedAt: u.now().UTC(),
		PublicKey:       enc.PublicKey,
	}, nil
}

func (u *identityUseCase) GenerateAuthToken(ctx context.Context, did, username string) (string, error) {
	return u.tokens.GenerateAuthToken(did, username)
}

func (u *identityUseCase) VerifyAuthToken(
	ctx context.Context,
	token, expectedDID string,
) (*domain.TokenClaims, error) {
	return u.tokens.VerifyAuthToken(token, expectedDID)
}

func (u *identityUseCase) ExportIdentities(
	ctx context.Context,
	identities []domain.EncryptedIdentity,
) (*domain.ExportEnvelope, error) {
	envelope := domain.NewExportEnvelope(identities, u.now())
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return envelope, nil
}

func (u *identityUseCase) ParseExport(ctx context.Context, data []byte) (*domain.ExportEnvelope, error) {
	var envelope domain.ExportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(domain.ErrInvalidExport, "malformed json")
	}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}
	return &envelope, nil
}
