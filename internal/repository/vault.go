// Package repository provides persistence implementations for the vault
// and authentication services using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresVaultRepository stores each user's document as one row per
// populated storage key. The upsert on (user_login, key) is what gives
// merge-write semantics: a write to one key can never touch a sibling.
type PostgresVaultRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresVaultRepository creates a new PostgresVaultRepository using
// the provided *sql.DB. db must be a valid connection to a PostgreSQL
// instance.
func NewPostgresVaultRepository(db *sql.DB) *PostgresVaultRepository {
	return &PostgresVaultRepository{DB: db}
}

// GetValue fetches one field of the user's document.
// Returns sql.ErrNoRows unchanged when the field was never written, so
// callers can distinguish absence from failure.
func (r *PostgresVaultRepository) GetValue(ctx context.Context, login, key string) (json.RawMessage, error) {
	var value []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT value FROM vault_entries WHERE user_login = $1 AND key = $2
	`, login, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("GetValue: %w", err)
	}
	return value, nil
}

// GetDocument fetches the user's full document, one field per populated
// key. A user with no data yields an empty map, not an error.
func (r *PostgresVaultRepository) GetDocument(ctx context.Context, login string) (map[string]json.RawMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT key, value FROM vault_entries WHERE user_login = $1
	`, login)
	if err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	defer rows.Close()

	doc := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		doc[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	return doc, nil
}

// PutValue merge-writes one field of the user's document. The document is
// created implicitly on the first write; there is no explicit create step.
func (r *PostgresVaultRepository) PutValue(ctx context.Context, login, key string, value json.RawMessage) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO vault_entries (user_login, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_login, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`, login, key, []byte(value))
	if err != nil {
		return fmt.Errorf("PutValue: %w", err)
	}
	return nil
}

// DeleteDocument removes the user's entire document. Irreversible.
func (r *PostgresVaultRepository) DeleteDocument(ctx context.Context, login string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM vault_entries WHERE user_login = $1
	`, login)
	if err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	return nil
}
