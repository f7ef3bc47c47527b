// Package session holds the caller's authentication token and cached
// profile. It is the single source of truth for "is the caller logged in".
//
// A Store is created empty, populated by login and cleared by logout or by
// the gateway on a 401. Every mutation replaces or clears both fields
// together. Reads treat a missing token as logged out even if a profile is
// still cached.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/storefront/internal/auth"
	"github.com/mmynk/storefront/internal/models"
	"github.com/mmynk/storefront/internal/storage"
)

// Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *models.User

	persist storage.SessionStore
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPersistence backs Save, Restore and Clear with durable storage.
func WithPersistence(p storage.SessionStore) Option {
	return func(s *Store) { s.persist = p }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the current token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the cached profile, or nil when logged out.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return nil
	}
	return s.user
}

// LoggedIn reports whether a token is present.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}

// Set replaces the session. An empty token is equivalent to Clear.
func (s *Store) Set(token string, user *models.User) {
	if token == "" {
		s.Clear()
		return
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// SetUser replaces the cached profile of the current session. It is a
// no-op when logged out.
func (s *Store) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.user = user
}

// Clear removes the token and profile, in memory and in durable storage.
// It never fails: logout must always appear to succeed, so storage errors
// are swallowed. Safe to call repeatedly and from error paths.
func (s *Store) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.persist == nil {
		return
	}
	defer func() {
		// Storage failures, including panics from a closed backend, are ignored.
		_ = recover()
	}()
	_ = s.persist.ClearSession(context.Background())
}

// Save writes the current session to durable storage. Without persistence
// configured it is a no-op.
func (s *Store) Save(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	s.mu.RLock()
	token, user := s.token, s.user
	s.mu.RUnlock()

	if token == "" {
		return s.persist.ClearSession(ctx)
	}
	if err := s.persist.SaveSession(ctx, token, user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Restore loads a previously saved session. A stored JWT that has already
// expired is discarded, leaving the Store logged out.
func (s *Store) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}

	token, user, err := s.persist.LoadSession(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if token == "" {
		return nil
	}
	if auth.Expired(token, s.now()) {
		s.logger.Debug("Stored session expired, discarding")
		s.Clear()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return nil
}
