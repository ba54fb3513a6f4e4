package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment-specific validation errors
var (
	// ErrCommentIDEmpty is returned when a comment ID is empty or nil.
	ErrCommentIDEmpty = errors.New("comment ID cannot be empty")

	// ErrCommentUserIDEmpty is returned when a comment's author ID is empty or nil.
	ErrCommentUserIDEmpty = errors.New("comment user ID cannot be empty")

	// ErrCommentTaskIDEmpty is returned when a comment's task ID is empty or nil.
	ErrCommentTaskIDEmpty = errors.New("comment task ID cannot be empty")

	// ErrCommentTextEmpty is returned when a comment's text is empty.
	ErrCommentTextEmpty = errors.New("comment text cannot be empty")
)

// Comment is a user's remark attached to a task. Comments are ordered by
// creation time and cascade-deleted with their task. Only members of the
// administrative group may delete them.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	TaskID    uuid.UUID `json:"task"`
	Text      string    `json:"comment"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"modified"`
}

// NewComment creates a new Comment authored by userID on taskID.
// Returns an error if validation fails.
func NewComment(userID, taskID uuid.UUID, text string) (*Comment, error) {
	comment := &Comment{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
// Returns an error if any field fails validation.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCommentIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrCommentUserIDEmpty
	}

	if c.TaskID == uuid.Nil {
		return ErrCommentTaskIDEmpty
	}

	if c.Text == "" {
		return ErrCommentTextEmpty
	}

	return nil
}
