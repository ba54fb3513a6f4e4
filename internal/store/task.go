package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
)

// TaskStore defines the interface for task persistence, including the task's
// append-only status ledger and its assignee set.
type TaskStore interface {
	// Create saves a new task and writes the initial "New" ledger entry.
	// Both writes must land together, so callers that need atomicity run
	// Create through WithTx inside RunInTransaction.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task and locks its row for the duration of
	// the surrounding transaction. Only meaningful through WithTx; it is the
	// serialization point for status transitions on one task.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List retrieves all tasks ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.Task, error)

	// Update modifies a task's title and description.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task. Ledger entries, comments and assignee rows are
	// removed by cascade.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CurrentStatus returns the status of the most recently inserted ledger
	// entry for the task. Returns ErrNoStatusEntries if the ledger is empty.
	CurrentStatus(ctx context.Context, taskID uuid.UUID) (domain.Status, error)

	// AppendStatus appends a new ledger entry for the task. Entries are
	// immutable history; nothing ever updates an existing one.
	AppendStatus(ctx context.Context, taskID uuid.UUID, status domain.Status) (*domain.StatusEntry, error)

	// ListStatuses returns the task's full ledger in insertion order,
	// earliest first.
	ListStatuses(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusEntry, error)

	// AddAssignee adds a user to the task's assignee set. Reports whether the
	// user was newly added; re-adding an existing assignee is a no-op that
	// returns false.
	// Returns ErrTaskNotFound or ErrUserNotFound for missing references.
	AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error)

	// ListAssignees returns the IDs of all users assigned to the task.
	ListAssignees(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a TaskStore that runs all operations on the given
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
