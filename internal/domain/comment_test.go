package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComment(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	comment, err := NewComment(userID, taskID, "looks good")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, comment.ID)
	assert.Equal(t, userID, comment.UserID)
	assert.Equal(t, taskID, comment.TaskID)
	assert.Equal(t, "looks good", comment.Text)
	assert.False(t, comment.CreatedAt.IsZero())
}

func TestNewCommentValidation(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	_, err := NewComment(uuid.Nil, taskID, "text")
	assert.ErrorIs(t, err, ErrCommentUserIDEmpty)

	_, err = NewComment(userID, uuid.Nil, "text")
	assert.ErrorIs(t, err, ErrCommentTaskIDEmpty)

	_, err = NewComment(userID, taskID, "")
	assert.ErrorIs(t, err, ErrCommentTextEmpty)
}
