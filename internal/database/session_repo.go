package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SessionRepository stores serialized cookie sets keyed by account
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.GetConn()}
}

// Get returns the stored blob for key. The bool is false when nothing has
// been stored yet.
func (sr *SessionRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := sr.db.QueryRowContext(ctx, `SELECT cookies FROM sessions WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read session %s: %w", key, err)
	}
	return data, true, nil
}

// Upsert replaces the blob stored for key
func (sr *SessionRepository) Upsert(ctx context.Context, key string, data []byte) error {
	_, err := sr.db.ExecContext(ctx, `
		INSERT INTO sessions (key, cookies, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			cookies = excluded.cookies,
			updated_at = CURRENT_TIMESTAMP
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", key, err)
	}
	return nil
}
