// Package sqlite provides a SQLite-backed implementation of storage.SessionStore.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
)

// Ensure SQLiteStore implements storage.SessionStore
var _ storage.SessionStore = (*SQLiteStore)(nil)

// SQLiteStore implements storage.SessionStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSession replaces the stored session.
func (s *SQLiteStore) SaveSession(ctx context.Context, token string, user *models.User) error {
	var userJSON sql.NullString
	if user != nil {
		b, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		userJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_json, saved_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_json = excluded.user_json,
			saved_at = excluded.saved_at
	`, token, userJSON, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, or an empty token when none exists.
func (s *SQLiteStore) LoadSession(ctx context.Context) (string, *models.User, error) {
	var (
		token    string
		userJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_json FROM session WHERE id = 1",
	).Scan(&token, &userJSON)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load session: %w", err)
	}

	if !userJSON.Valid || userJSON.String == "" {
		return token, nil, nil
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(userJSON.String), user); err != nil {
		return "", nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return token, user, nil
}

// ClearSession removes the stored session.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
