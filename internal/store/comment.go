package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create saves a new comment.
	// Returns ErrInvalidEntity if the referenced task or user does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by its unique ID.
	// Returns ErrCommentNotFound if the comment does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// List retrieves all comments ordered by creation time, newest first.
	List(ctx context.Context) ([]*domain.Comment, error)

	// ListByTask retrieves a task's comments ordered by creation time,
	// earliest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// Delete removes a comment. Authorization is the service layer's concern;
	// the store deletes unconditionally.
	// Returns ErrCommentNotFound if the comment does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CommentStore that runs all operations on the given
	// transaction.
	WithTx(tx *sql.Tx) CommentStore
}
