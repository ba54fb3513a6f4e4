package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
)

// GroupStore defines the interface for group and membership persistence.
type GroupStore interface {
	// Create saves a new group.
	// Returns ErrGroupNameExists if the name is already taken.
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group by its unique ID.
	// Returns ErrGroupNotFound if the group does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)

	// GetByName retrieves a group by its unique name.
	// Returns ErrGroupNotFound if the group does not exist.
	GetByName(ctx context.Context, name string) (*domain.Group, error)

	// List retrieves all groups ordered by name.
	List(ctx context.Context) ([]*domain.Group, error)

	// Delete removes a group. Membership rows are removed by cascade.
	// Returns ErrGroupNotFound if the group does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember adds a user to the group. Adding an existing member is a
	// no-op. Returns ErrGroupNotFound or ErrUserNotFound for missing
	// references.
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error

	// IsMember reports whether the user belongs to the group with the given
	// name. A missing group simply reports false.
	IsMember(ctx context.Context, userID uuid.UUID, groupName string) (bool, error)

	// ListMemberGroups returns the names of all groups the user belongs to.
	ListMemberGroups(ctx context.Context, userID uuid.UUID) ([]string, error)

	// WithTx returns a GroupStore that runs all operations on the given
	// transaction.
	WithTx(tx *sql.Tx) GroupStore
}
