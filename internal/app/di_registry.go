package app

import (
	"context"
	"fmt"

	"github.com/bymjmazzei/par-noir/internal/config"
	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
	"github.com/bymjmazzei/par-noir/internal/http"
	registryDomain "github.com/bymjmazzei/par-noir/internal/registry/domain"
	registryRepository "github.com/bymjmazzei/par-noir/internal/registry/repository"
	registryUseCase "github.com/bymjmazzei/par-noir/internal/registry/usecase"
)

// KVRepository returns the registry persistence backend selected by REGISTRY_BACKEND.
func (c *Container) KVRepository() (registryUseCase.KVRepository, error) {
	return lazy(c, &c.kvRepositoryInit, "kvRepository", &c.kvRepository, c.initKVRepository)
}

// RegistryUseCase returns the versioned identity registry.
func (c *Container) RegistryUseCase() (registryUseCase.RegistryUseCase, error) {
	return lazy(c, &c.registryUseCaseInit, "registryUseCase", &c.registryUseCase, c.initRegistryUseCase)
}

// ReadinessChecks returns the probes served by /ready.
func (c *Container) ReadinessChecks() []http.ReadinessCheck {
	checks := []http.ReadinessCheck{{
		Name: "registry",
		Check: func(ctx context.Context) error {
			repo, err := c.KVRepository()
			if err != nil {
				return err
			}
			_, err = repo.Get(ctx, registryDomain.KeyVersioned)
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		},
	}}

	if c.config.RegistryBackend == config.RegistryBackendDatabase {
		checks = append(checks, http.ReadinessCheck{
			Name: "database",
			Check: func(ctx context.Context) error {
				db, err := c.DB()
				if err != nil {
					return err
				}
				return db.PingContext(ctx)
			},
		})
	}

	return checks
}

func (c *Container) initKVRepository() (registryUseCase.KVRepository, error) {
	switch c.config.RegistryBackend {
	case config.RegistryBackendMemory:
		return registryRepository.NewMemoryKVRepository(), nil

	case config.RegistryBackendBlob:
		repo, err := registryRepository.OpenBlobKVRepository(c.ctx, c.config.RegistryBlobURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open registry bucket: %w", err)
		}
		return repo, nil

	case config.RegistryBackendDatabase:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for registry repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			return registryRepository.NewMySQLKVRepository(db), nil
		case database.DriverPostgres:
			return registryRepository.NewPostgreSQLKVRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}

	default:
		return nil, fmt.Errorf("unsupported registry backend: %s", c.config.RegistryBackend)
	}
}

func (c *Container) initRegistryUseCase() (registryUseCase.RegistryUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for registry use case: %w", err)
	}

	repo, err := c.KVRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry repository for registry use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for registry use case: %w", err)
	}

	useCase := registryUseCase.NewRegistryUseCase(txManager, repo, c.Reporter(), c.config.RegistryMaxVersions)
	return registryUseCase.NewRegistryUseCaseWithMetrics(useCase, businessMetrics), nil
}
