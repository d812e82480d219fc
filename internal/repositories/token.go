package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
)

// TokenRepository implements [models.TokenStore] on the tokens table.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get returns the value stored under key, or [shared.ErrTokenNotFound].
func (r *TokenRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM tokens WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrTokenNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query token: %w", err)
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *TokenRepository) Set(key, value string) error {
	query := `
		INSERT INTO tokens (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *TokenRepository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM tokens WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// SaveSession stores the token and username of a login in one transaction.
func (r *TokenRepository) SaveSession(session models.Session) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO tokens (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		for key, value := range map[string]string{models.TokenKey: session.Token, models.UsernameKey: session.Username} {
			if _, err := tx.Exec(query, key, value); err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}
		}
		return nil
	})
}

// LoadSession returns the persisted session. Missing keys leave the matching field empty.
func (r *TokenRepository) LoadSession() (models.Session, error) {
	var session models.Session

	token, err := r.Get(models.TokenKey)
	if err != nil && !errors.Is(err, shared.ErrTokenNotFound) {
		return session, err
	}
	session.Token = token

	username, err := r.Get(models.UsernameKey)
	if err != nil && !errors.Is(err, shared.ErrTokenNotFound) {
		return session, err
	}
	session.Username = username

	return session, nil
}

// ClearSession removes the token and username.
func (r *TokenRepository) ClearSession() error {
	_, err := r.db.Exec("DELETE FROM tokens WHERE key IN (?, ?)", models.TokenKey, models.UsernameKey)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
