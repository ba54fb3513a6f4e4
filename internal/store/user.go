package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. The password must already be hashed.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves all users ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.User, error)

	// Update modifies an existing user's email, display name and password
	// hash. Returns ErrUserNotFound if the user does not exist and
	// ErrEmailExists when updating to a taken email.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user from the store by their ID.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore that runs all operations on the given
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
