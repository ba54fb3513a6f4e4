package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// CommentService provides comment operations. Deletion is restricted to
// members of the admin group.
type CommentService interface {
	// CreateComment creates a comment on a task, authored by authorID.
	CreateComment(ctx context.Context, authorID, taskID uuid.UUID, text string) (*domain.Comment, error)

	// GetComment retrieves a comment by its ID.
	GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error)

	// ListComments retrieves all comments.
	ListComments(ctx context.Context) ([]*domain.Comment, error)

	// DeleteComment removes a comment on behalf of requesterID.
	// Returns ErrNotAuthorized unless the requester belongs to the
	// admin group; the comment is left untouched in that case.
	DeleteComment(ctx context.Context, requesterID, commentID uuid.UUID) error
}

// commentServiceImpl implements the CommentService interface.
type commentServiceImpl struct {
	comments store.CommentStore
	groups   store.GroupStore
	logger   *slog.Logger
}

var _ CommentService = (*commentServiceImpl)(nil)

// NewCommentService creates a new CommentService.
// It panics if any required dependency is nil.
func NewCommentService(comments store.CommentStore, groups store.GroupStore, log *slog.Logger) CommentService {
	if comments == nil {
		panic("commentService requires a non-nil comment store")
	}
	if groups == nil {
		panic("commentService requires a non-nil group store")
	}
	if log == nil {
		log = slog.Default()
	}

	return &commentServiceImpl{
		comments: comments,
		groups:   groups,
		logger:   log.With(slog.String("component", "comment_service")),
	}
}

// CreateComment implements CommentService.CreateComment
func (s *commentServiceImpl) CreateComment(
	ctx context.Context,
	authorID, taskID uuid.UUID,
	text string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewComment(authorID, taskID, text)
	if err != nil {
		return nil, NewCommentServiceError("create_comment", "invalid comment", err)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}

	log.Info("comment created",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()))
	return comment, nil
}

// GetComment implements CommentService.GetComment
func (s *commentServiceImpl) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// ListComments implements CommentService.ListComments
func (s *commentServiceImpl) ListComments(ctx context.Context) ([]*domain.Comment, error) {
	return s.comments.List(ctx)
}

// DeleteComment implements CommentService.DeleteComment
func (s *commentServiceImpl) DeleteComment(ctx context.Context, requesterID, commentID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Existence is checked before authorization so a missing comment
	// surfaces as not-found for admins and non-admins alike.
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}

	isAdmin, err := s.groups.IsMember(ctx, requesterID, domain.AdminGroup)
	if err != nil {
		return NewCommentServiceError("delete_comment", "failed to check group membership", err)
	}
	if !isAdmin {
		log.Warn("comment deletion refused",
			slog.String("comment_id", commentID.String()),
			slog.String("user_id", requesterID.String()))
		return ErrNotAuthorized
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	log.Info("comment deleted",
		slog.String("comment_id", commentID.String()),
		slog.String("user_id", requesterID.String()))
	return nil
}
