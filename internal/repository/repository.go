package repository

import (
	"context"

	"storyweaver/internal/domain"
)

// UserRepository is the durable credential store. Register must be atomic
// with respect to the username uniqueness invariant: no two successful
// creates for the same username.
type UserRepository interface {
	// GetUserByUsername returns the stored record or domain.ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// CreateUser inserts a new record iff the username is free; otherwise it
	// fails with domain.ErrUserAlreadyExists and performs no mutation.
	CreateUser(ctx context.Context, user *domain.User) error
}
