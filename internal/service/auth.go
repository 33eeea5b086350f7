package service

import (
	"context"

	"storyweaver/internal/domain"
)

// AuthService authenticates users against the credential store and creates
// new credential records.
type AuthService interface {
	// Register creates a new user. Fails with domain.ErrFieldsRequired on an
	// empty username or password and domain.ErrUserAlreadyExists on a taken
	// username.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// Login verifies the credentials. Unknown usernames and wrong passwords
	// both fail with domain.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*domain.User, error)
}
