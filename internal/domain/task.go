package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleTooLong is returned when a task title exceeds the column limit.
	ErrTaskTitleTooLong = errors.New("task title cannot exceed 50 characters")
)

// DefaultTaskTitle is used when a task is created without a title.
const DefaultTaskTitle = "Task"

// maxTaskTitleLen matches the title column width.
const maxTaskTitleLen = 50

// Task represents a tracked unit of work. It owns a status ledger
// (StatusEntry rows, cascade-deleted with the task), a set of assignees and a
// list of comments. Once persisted a task always has at least one ledger
// entry; the store writes the initial "New" entry in the same transaction
// that creates the task.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	About     string    `json:"about"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task with the given title and description.
// An empty title falls back to DefaultTaskTitle. Returns an error if
// validation fails.
func NewTask(title, about string) (*Task, error) {
	if title == "" {
		title = DefaultTaskTitle
	}

	task := &Task{
		ID:        uuid.New(),
		Title:     title,
		About:     about,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if len(t.Title) > maxTaskTitleLen {
		return ErrTaskTitleTooLong
	}

	return nil
}
