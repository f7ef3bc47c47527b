package auth

import (
	"context"

	"github.com/mmynk/storefront/internal/models"
)

// Authenticator defines the interface for credential checks behind the
// login and register endpoints of the mock backend.
type Authenticator interface {
	// Register creates a new account. The credential format depends on the
	// implementation. Returns the created user or an error if registration fails.
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)

	// Authenticate verifies the credentials and returns the user if successful.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
