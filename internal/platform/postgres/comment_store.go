package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// CommentStore implements the store.CommentStore interface using a
// PostgreSQL database as the storage backend.
type CommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCommentStore creates a new PostgreSQL implementation of the
// CommentStore interface.
func NewCommentStore(db store.DBTX, logger *slog.Logger) *CommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

var _ store.CommentStore = (*CommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *CommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &CommentStore{db: tx, logger: s.logger}
}

// Create implements store.CommentStore.Create
func (s *CommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO comments (id, user_id, task_id, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		comment.ID, comment.UserID, comment.TaskID, comment.Text,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "task_id") {
			return fmt.Errorf("%w: task %s not found", store.ErrInvalidEntity, comment.TaskID)
		}
		if isForeignKeyViolation(err, "user_id") {
			return fmt.Errorf("%w: user %s not found", store.ErrInvalidEntity, comment.UserID)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	log.Info("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", comment.TaskID.String()))
	return nil
}

// GetByID implements store.CommentStore.GetByID
func (s *CommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, task_id, comment, created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	var comment domain.Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.UserID, &comment.TaskID, &comment.Text,
		&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		log.Error("failed to get comment by ID",
			slog.String("error", err.Error()),
			slog.String("comment_id", id.String()))
		return nil, err
	}

	return &comment, nil
}

// List implements store.CommentStore.List
func (s *CommentStore) List(ctx context.Context) ([]*domain.Comment, error) {
	query := `
		SELECT id, user_id, task_id, comment, created_at, updated_at
		FROM comments
		ORDER BY created_at DESC
	`
	return s.queryComments(ctx, query)
}

// ListByTask implements store.CommentStore.ListByTask
func (s *CommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	query := `
		SELECT id, user_id, task_id, comment, created_at, updated_at
		FROM comments
		WHERE task_id = $1
		ORDER BY created_at ASC
	`
	return s.queryComments(ctx, query, taskID)
}

func (s *CommentStore) queryComments(ctx context.Context, query string, args ...any) ([]*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query comments", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var comments []*domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.UserID, &comment.TaskID,
			&comment.Text, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// Delete implements store.CommentStore.Delete
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrCommentNotFound
	}

	log.Info("comment deleted", slog.String("comment_id", id.String()))
	return nil
}
