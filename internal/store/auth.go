package store

import (
	"database/sql"
	"errors"
	"fmt"

	"segment-leader/internal/auth"
)

// Load retrieves the stored token. It returns auth.ErrNoToken when no token
// has been saved yet.
func (db *DB) Load() (auth.Token, error) {
	row := db.QueryRow(`
		SELECT access_token, refresh_token, expires_at
		FROM auth
		WHERE id = 1
	`)

	var tok auth.Token
	err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Token{}, auth.ErrNoToken
	}
	if err != nil {
		return auth.Token{}, fmt.Errorf("reading token: %w", err)
	}
	return tok, nil
}

// Save replaces the stored token
func (db *DB) Save(tok auth.Token) error {
	_, err := db.Exec(`
		INSERT INTO auth (id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

var _ auth.TokenStore = (*DB)(nil)
