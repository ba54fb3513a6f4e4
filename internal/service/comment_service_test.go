package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/store"
)

func TestCreateComment(t *testing.T) {
	comments := &mockCommentStore{}
	svc := NewCommentService(comments, &mockGroupStore{}, testLogger())

	authorID := uuid.New()
	taskID := uuid.New()

	comment, err := svc.CreateComment(context.Background(), authorID, taskID, "needs review")
	require.NoError(t, err)
	assert.Equal(t, authorID, comment.UserID)
	assert.Equal(t, taskID, comment.TaskID)
	assert.Equal(t, "needs review", comment.Text)
}

func TestCreateCommentEmptyText(t *testing.T) {
	svc := NewCommentService(&mockCommentStore{}, &mockGroupStore{}, testLogger())

	_, err := svc.CreateComment(context.Background(), uuid.New(), uuid.New(), "")
	assert.Error(t, err)
}

func TestDeleteCommentAsAdmin(t *testing.T) {
	comments := &mockCommentStore{}
	groups := &mockGroupStore{
		isMemberFn: func(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
			assert.Equal(t, domain.AdminGroup, groupName)
			return true, nil
		},
	}
	svc := NewCommentService(comments, groups, testLogger())

	commentID := uuid.New()
	err := svc.DeleteComment(context.Background(), uuid.New(), commentID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{commentID}, comments.deleted)
}

func TestDeleteCommentAsNonAdmin(t *testing.T) {
	comments := &mockCommentStore{}
	svc := NewCommentService(comments, &mockGroupStore{}, testLogger())

	err := svc.DeleteComment(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, comments.deleted, "the comment must survive a refused deletion")
}

func TestDeleteCommentMissing(t *testing.T) {
	comments := &mockCommentStore{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
			return nil, store.ErrCommentNotFound
		},
	}
	groups := &mockGroupStore{
		isMemberFn: func(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
			return true, nil
		},
	}
	svc := NewCommentService(comments, groups, testLogger())

	err := svc.DeleteComment(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrCommentNotFound)
}
