package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/storefront/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrUsernameExists     = errors.New("username already registered")
	ErrUsernameRequired   = errors.New("username is required")
)

// Account is a user together with its password hash.
type Account struct {
	User         models.User
	PasswordHash string
}

// AccountStorage defines the persistence the authenticator needs.
// GetAccountByUsername returns nil, nil when no account exists.
type AccountStorage interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccountByUsername(ctx context.Context, username string) (*Account, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage AccountStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
// cost is the bcrypt cost; zero selects bcrypt.DefaultCost.
func NewPasswordAuthenticator(storage AccountStorage, cost int) *PasswordAuthenticator {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordAuthenticator{
		storage: storage,
		cost:    cost,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 6 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if err := a.ValidateCredential(req.Password); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &Account{
		User: models.User{
			Username: username,
			Nickname: req.Nickname,
			Email:    req.Email,
			Phone:    req.Phone,
		},
		PasswordHash: string(hashed),
	}
	if err := a.storage.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return &account.User, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	account, err := a.storage.GetAccountByUsername(ctx, username)
	if err != nil || account == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	user := account.User
	return &user, nil
}
