package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents one step in the fixed task workflow.
type Status string

// The workflow is a fixed linear sequence. Tasks move one step at a time,
// forward or backward, and never skip steps.
const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In progress"
	StatusCompleted  Status = "Completed"
	StatusArchived   Status = "Archived"
)

// Statuses is the ordered workflow sequence. Index order is transition order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusArchived}

// ErrInvalidTransition is returned when a task is moved forward past the last
// status or backward past the first. It is a validation signal, not a fault:
// the API layer maps it to a 400 response.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned when a status value is not part of the workflow.
var ErrUnknownStatus = errors.New("unknown status")

// index returns the position of s in the workflow sequence, or -1.
func (s Status) index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid reports whether s is one of the workflow statuses.
func (s Status) IsValid() bool {
	return s.index() >= 0
}

// Next returns the status one step forward in the workflow.
// Returns ErrInvalidTransition when s is the final status,
// or ErrUnknownStatus when s is not part of the workflow.
func (s Status) Next() (Status, error) {
	i := s.index()
	if i < 0 {
		return "", ErrUnknownStatus
	}
	if i == len(Statuses)-1 {
		return "", ErrInvalidTransition
	}
	return Statuses[i+1], nil
}

// Prev returns the status one step backward in the workflow.
// Returns ErrInvalidTransition when s is the initial status,
// or ErrUnknownStatus when s is not part of the workflow.
func (s Status) Prev() (Status, error) {
	i := s.index()
	if i < 0 {
		return "", ErrUnknownStatus
	}
	if i == 0 {
		return "", ErrInvalidTransition
	}
	return Statuses[i-1], nil
}

// StatusEntry is one immutable record in a task's status ledger.
// Transitions append new entries; existing entries are never edited.
// The ID is assigned by the store in insertion order, so the entry with the
// highest ID for a task is its current status. Ordering by insertion rather
// than by timestamp makes "most recently inserted wins" exact even when two
// entries share a creation time.
type StatusEntry struct {
	ID        int64     `json:"id"`
	TaskID    uuid.UUID `json:"task_id"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
