// Package repository implements the registry's key-value persistence boundary.
// Values are opaque JSON documents addressed by a string key. Backends exist for
// memory, gocloud blob buckets, PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

// PostgreSQLKVRepository stores registry documents in the kv_entries table.
type PostgreSQLKVRepository struct {
	db *sql.DB
}

// Get returns the value stored under key or apperrors.ErrNotFound.
func (p *PostgreSQLKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT entry_value FROM kv_entries WHERE entry_key = $1`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get kv entry")
	}
	return value, nil
}

// Set inserts or replaces the value stored under key.
func (p *PostgreSQLKVRepository) Set(ctx context.Context, key string, value []byte) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (entry_key)
			  DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to set kv entry")
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *PostgreSQLKVRepository) Delete(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM kv_entries WHERE entry_key = $1`

	if _, err := querier.ExecContext(ctx, query, key); err != nil {
		return apperrors.Wrap(err, "failed to delete kv entry")
	}
	return nil
}

// NewPostgreSQLKVRepository creates a new PostgreSQL key-value repository.
func NewPostgreSQLKVRepository(db *sql.DB) *PostgreSQLKVRepository {
	return &PostgreSQLKVRepository{db: db}
}
