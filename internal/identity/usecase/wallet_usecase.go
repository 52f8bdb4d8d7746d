package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/identity/domain"
	"github.com/bymjmazzei/par-noir/internal/identity/service"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	"github.com/bymjmazzei/par-noir/internal/store"
)

type walletUseCase struct {
	identity IdentityUseCase
	registry Registry
	store    IdentityStore
	reporter apperrors.Reporter
	now      func() time.Time
}

// NewWalletUseCase composes the identity engine, the registry and the store.
func NewWalletUseCase(
	identity IdentityUseCase,
	registry Registry,
	identityStore IdentityStore,
	reporter apperrors.Reporter,
) WalletUseCase {
	return &walletUseCase{
		identity: identity,
		registry: registry,
		store:    identityStore,
		reporter: reporter,
		now:      time.Now,
	}
}

// StoreID is the indexed store key for a public key. It equals the DID the
// identity was created with unless key generation fell back to a random DID.
func StoreID(publicKey string) string {
	der, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil || len(der) == 0 {
		return publicKey
	}
	return service.DIDFromPublicKey(der)
}

func (w *walletUseCase) Register(
	ctx context.Context,
	input domain.CreateIdentityInput,
) (*registryDomain.VersionedIdentity, error) {
	enc, err := w.identity.CreateIdentity(ctx, input)
	if err != nil {
		return nil, err
	}

	idFile, err := json.Marshal(enc)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to serialize identity file")
	}

	return w.registry.StoreIdentityVersion(ctx, enc.PublicKey, string(idFile), input.Nickname)
}

func (w *walletUseCase) Login(
	ctx context.Context,
	publicKey, passcode, expectedUsername string,
) (*domain.AuthSession, error) {
	active, err := w.registry.GetActiveIdentity(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	var enc domain.EncryptedIdentity
	if err := json.Unmarshal([]byte(active.IDFile), &enc); err != nil || enc.PublicKey != publicKey {
		return nil, domain.ErrDecryption
	}

	session, err := w.identity.AuthenticateIdentity(ctx, &enc, passcode, expectedUsername)
	if err != nil {
		return nil, err
	}

	// The session is valid from here on; bookkeeping failures are reported only.
	if err := w.registry.UpdateLastAccessed(ctx, publicKey); err != nil {
		w.report(ctx, "wallet.login", err)
	}

	now := w.now().UTC()
	id := StoreID(publicKey)
	if rec, ok := w.store.GetByID(id); ok {
		loginCount := rec.LoginCount + 1
		w.store.Update(id, store.Patch{
			DisplayName:  &active.Nickname,
			LoginCount:   &loginCount,
			LastAccessed: &now,
		})
	} else {
		w.store.Add(store.Identity{
			ID:           id,
			PublicKey:    publicKey,
			DID:          session.ID,
			Alias:        session.PNName,
			DisplayName:  active.Nickname,
			Status:       store.StatusActive,
			LoginCount:   1,
			CreatedAt:    now,
			UpdatedAt:    now,
			LastAccessed: now,
		})
	}

	return session, nil
}

func (w *walletUseCase) UpdateNickname(
	ctx context.Context,
	publicKey, nickname string,
) (*registryDomain.VersionedIdentity, error) {
	if err := domain.ValidateNickname(nickname); err != nil {
		return nil, err
	}

	version, err := w.registry.UpdateNickname(ctx, publicKey, nickname)
	if err != nil {
		return nil, err
	}

	w.store.Update(StoreID(publicKey), store.Patch{DisplayName: &nickname})
	return version, nil
}

func (w *walletUseCase) ListActive(ctx context.Context) ([]registryDomain.VersionedIdentity, error) {
	return w.registry.GetAllActiveIdentities(ctx)
}

func (w *walletUseCase) Versions(ctx context.Context, publicKey string) ([]registryDomain.VersionedIdentity, error) {
	return w.registry.GetAllVersions(ctx, publicKey)
}

func (w *walletUseCase) Remove(ctx context.Context, publicKey string) error {
	if err := w.registry.RemoveIdentity(ctx, publicKey); err != nil {
		return err
	}
	w.store.Delete(StoreID(publicKey))
	return nil
}

// Export envelopes the active version of each public key, or of every
// identity when publicKeys is empty.
func (w *walletUseCase) Export(ctx context.Context, publicKeys []string) (*domain.ExportEnvelope, error) {
	var versions []registryDomain.VersionedIdentity
	if len(publicKeys) == 0 {
		active, err := w.registry.GetAllActiveIdentities(ctx)
		if err != nil {
			return nil, err
		}
		versions = active
	} else {
		for _, publicKey := range publicKeys {
			active, err := w.registry.GetActiveIdentity(ctx, publicKey)
			if err != nil {
				return nil, err
			}
			versions = append(versions, *active)
		}
	}

	identities := make([]domain.EncryptedIdentity, 0, len(versions))
	for _, v := range versions {
		var enc domain.EncryptedIdentity
		if err := json.Unmarshal([]byte(v.IDFile), &enc); err != nil {
			return nil, apperrors.Wrapf(registryDomain.ErrCorruptStore, "identity file for %s", v.PublicKey)
		}
		identities = append(identities, enc)
	}

	return w.identity.ExportIdentities(ctx, identities)
}

// Import stores every identity of an export envelope as a new version. All
// identities must open with passcode before anything is written.
func (w *walletUseCase) Import(
	ctx context.Context,
	data []byte,
	passcode string,
) ([]registryDomain.VersionedIdentity, error) {
	envelope, err := w.identity.ParseExport(ctx, data)
	if err != nil {
		return nil, err
	}

	nicknames := make([]string, len(envelope.Identities))
	for i := range envelope.Identities {
		session, err := w.identity.AuthenticateIdentity(ctx, &envelope.Identities[i], passcode, "")
		if err != nil {
			return nil, err
		}
		nicknames[i] = session.Nickname
	}

	imported := make([]registryDomain.VersionedIdentity, 0, len(envelope.Identities))
	for i, enc := range envelope.Identities {
		idFile, err := json.Marshal(enc)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to serialize identity file")
		}
		version, err := w.registry.StoreIdentityVersion(ctx, enc.PublicKey, string(idFile), nicknames[i])
		if err != nil {
			return nil, err
		}
		imported = append(imported, *version)
	}
	return imported, nil
}

func (w *walletUseCase) Directory(ctx context.Context, query store.Query) (store.Page, error) {
	if err := ctx.Err(); err != nil {
		return store.Page{}, err
	}
	return w.store.GetAll(query), nil
}

func (w *walletUseCase) VerifySession(ctx context.Context, token, did string) (*domain.TokenClaims, error) {
	return w.identity.VerifyAuthToken(ctx, token, did)
}

func (w *walletUseCase) report(ctx context.Context, op string, err error) {
	if w.reporter != nil {
		w.reporter.Report(ctx, op, err)
	}
}
