// Package storage provides abstractions for durable client-side storage.
package storage

import (
	"context"

	"github.com/mmynk/storefront/internal/models"
)

// SessionStore persists the session between process runs, the way a
// mini-program keeps its token in local storage.
// This abstraction allows swapping backends (SQLite, a keychain, a file)
// without changing the session package.
type SessionStore interface {
	// SaveSession replaces the stored session.
	SaveSession(ctx context.Context, token string, user *models.User) error

	// LoadSession returns the stored session. It returns an empty token and
	// nil user when nothing is stored.
	LoadSession(ctx context.Context) (token string, user *models.User, err error)

	// ClearSession removes the stored session. Clearing an empty store is not an error.
	ClearSession(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
