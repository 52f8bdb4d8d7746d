package app

import (
	"encoding/base64"
	"fmt"

	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	identityHTTP "github.com/bymjmazzei/par-noir/internal/identity/http"
	identityService "github.com/bymjmazzei/par-noir/internal/identity/service"
	identityUseCase "github.com/bymjmazzei/par-noir/internal/identity/usecase"
	"github.com/bymjmazzei/par-noir/internal/store"
)

// KeyDeriver returns the PBKDF2 key deriver.
func (c *Container) KeyDeriver() (identityService.KeyDeriver, error) {
	return lazy(c, &c.keyDeriverInit, "keyDeriver", &c.keyDeriver, func() (identityService.KeyDeriver, error) {
		return identityService.NewPBKDF2Deriver(c.config.KDFIterations)
	})
}

// KeyPairGenerator returns the RSA key pair and DID generator.
func (c *Container) KeyPairGenerator() (identityUseCase.KeyPairGenerator, error) {
	return lazy(c, &c.keyPairGeneratorInit, "keyPairGenerator", &c.keyPairGenerator,
		func() (identityUseCase.KeyPairGenerator, error) {
			return identityService.NewKeyPairGenerator(c.config.RSAKeyBits)
		})
}

// RecoveryKeyGenerator returns the recovery key generator.
func (c *Container) RecoveryKeyGenerator() (identityUseCase.RecoveryKeyGenerator, error) {
	return lazy(c, &c.recoveryKeysInit, "recoveryKeys", &c.recoveryKeys,
		func() (identityUseCase.RecoveryKeyGenerator, error) {
			return identityService.NewRecoveryKeyGenerator(c.config.RecoveryKeyCount)
		})
}

// TokenService returns the session token service.
func (c *Container) TokenService() (identityUseCase.TokenService, error) {
	return lazy(c, &c.tokenServiceInit, "tokenService", &c.tokenService, c.initTokenService)
}

// KeeperService returns the service that opens export keepers.
func (c *Container) KeeperService() identityService.KeeperService {
	c.keeperServiceInit.Do(func() {
		c.keeperService = identityService.NewKeeperService()
	})
	return c.keeperService
}

// IdentityUseCase returns the identity cryptography engine.
func (c *Container) IdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	return lazy(c, &c.identityUseCaseInit, "identityUseCase", &c.identityUseCase, c.initIdentityUseCase)
}

// IdentityStore returns the indexed identity store. Its batch processor is
// started by the server command.
func (c *Container) IdentityStore() (*store.Store, error) {
	return lazy(c, &c.identityStoreInit, "identityStore", &c.identityStore, c.initIdentityStore)
}

// WalletUseCase returns the wallet flows used by the CLI and the HTTP API.
func (c *Container) WalletUseCase() (identityUseCase.WalletUseCase, error) {
	return lazy(c, &c.walletUseCaseInit, "walletUseCase", &c.walletUseCase, c.initWalletUseCase)
}

// IdentityHandler returns the identity HTTP handler.
func (c *Container) IdentityHandler() (*identityHTTP.IdentityHandler, error) {
	return lazy(c, &c.identityHandlerInit, "identityHandler", &c.identityHandler,
		func() (*identityHTTP.IdentityHandler, error) {
			wallet, err := c.WalletUseCase()
			if err != nil {
				return nil, fmt.Errorf("failed to get wallet use case for identity handler: %w", err)
			}
			return identityHTTP.NewIdentityHandler(wallet, c.Logger()), nil
		})
}

func (c *Container) initTokenService() (identityUseCase.TokenService, error) {
	var secret []byte
	if c.config.SessionSigningKey != "" {
		decoded, err := base64.StdEncoding.DecodeString(c.config.SessionSigningKey)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "SESSION_SIGNING_KEY must be base64")
		}
		secret = decoded
	}
	return identityService.NewTokenService(secret, c.config.SessionTokenTTL)
}

func (c *Container) initIdentityUseCase() (identityUseCase.IdentityUseCase, error) {
	deriver, err := c.KeyDeriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key deriver for identity use case: %w", err)
	}

	keyPairs, err := c.KeyPairGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get key pair generator for identity use case: %w", err)
	}

	recovery, err := c.RecoveryKeyGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get recovery key generator for identity use case: %w", err)
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for identity use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for identity use case: %w", err)
	}

	useCase := identityUseCase.NewIdentityUseCase(
		identityService.NewPayloadCipher(deriver),
		keyPairs,
		recovery,
		tokens,
	)
	return identityUseCase.NewIdentityUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initIdentityStore() (*store.Store, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for identity store: %w", err)
	}

	cfg := store.Config{
		CacheTTL:      c.config.StoreCacheTTL,
		CacheCapacity: c.config.StoreCacheCapacity,
		BatchInterval: c.config.StoreBatchInterval,
		DebounceDelay: c.config.StoreBatchDebounce,
	}

	return store.New(cfg,
		store.WithReporter(c.Reporter()),
		store.WithMetrics(businessMetrics),
		store.WithLogger(c.Logger()),
	), nil
}

func (c *Container) initWalletUseCase() (identityUseCase.WalletUseCase, error) {
	identity, err := c.IdentityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity use case for wallet: %w", err)
	}

	registry, err := c.RegistryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry use case for wallet: %w", err)
	}

	identityStore, err := c.IdentityStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity store for wallet: %w", err)
	}

	return identityUseCase.NewWalletUseCase(identity, registry, identityStore, c.Reporter()), nil
}
