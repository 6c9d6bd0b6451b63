package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskflow/notify/internal/domain"
)

// UserStore defines the user lookups this service performs: contact info for
// the email channel and credentials for the login endpoint.
type UserStore interface {
	// Create persists a new user.
	// Returns ErrEmailExists if the email address is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
