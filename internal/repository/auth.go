package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/addictsagenda/agenda/internal/models"
)

// PostgresAuthRepository implements authentication persistence using a
// PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the
// given database connection.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// UserExists checks whether a user with the specified login exists.
func (r *PostgresAuthRepository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)`,
		login,
	).Scan(&exists)
	return exists, err
}

// RegisterUser creates a new user record with the given login and password
// hash. Registering an existing login is a no-op thanks to ON CONFLICT.
func (r *PostgresAuthRepository) RegisterUser(ctx context.Context, login string, passwordHash []byte) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		login, passwordHash,
	)
	return err
}

// GetUser fetches a user's credentials by login.
func (r *PostgresAuthRepository) GetUser(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT login, password_hash FROM users WHERE login = $1`,
		login,
	).Scan(&user.Login, &user.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return &user, nil
}

// DeleteUser removes the user record. Vault rows go with it via the
// ON DELETE CASCADE on vault_entries.
func (r *PostgresAuthRepository) DeleteUser(ctx context.Context, login string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE login = $1`, login)
	return err
}
