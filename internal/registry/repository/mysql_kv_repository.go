package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/bymjmazzei/par-noir/internal/database"
	apperrors "github.com/bymjmazzei/par-noir/internal/errors"
)

// MySQLKVRepository stores registry documents in the kv_entries table.
type MySQLKVRepository struct {
	db *sql.DB
}

// Get returns the value stored under key or apperrors.ErrNotFound.
func (m *MySQLKVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT entry_value FROM kv_entries WHERE entry_key = ?`

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
func (m *MySQLKVRepository) Set(ctx context.Context, key string, value []byte) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO kv_entries (entry_key, entry_value, updated_at)
			  VALUES (?, ?, ?)
			  ON DUPLICATE KEY UPDATE entry_value = VALUES(entry_value), updated_at = VALUES(updated_at)`

	_, err := querier.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to set kv entry")
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MySQLKVRepository) Delete(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM kv_entries WHERE entry_key = ?`

	if _, err := querier.ExecContext(ctx, query, key); err != nil {
		return apperrors.Wrap(err, "failed to delete kv entry")
	}
	return nil
}

// NewMySQLKVRepository creates a new MySQL key-value repository.
func NewMySQLKVRepository(db *sql.DB) *MySQLKVRepository {
	return &MySQLKVRepository{db: db}
}
