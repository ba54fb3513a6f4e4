package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Group-specific validation errors
var (
	ErrGroupIDEmpty   = errors.New("group ID cannot be empty")
	ErrGroupNameEmpty = errors.New("group name cannot be empty")
)

// AdminGroup is the administrative group name. Membership grants elevated
// permission; currently that means comment deletion.
const AdminGroup = "ADMIN"

// Group is a named set of users.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGroup creates a new Group with the given name.
// Returns an error if validation fails.
func NewGroup(name string) (*Group, error) {
	group := &Group{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	return group, nil
}

// Validate checks if the Group has valid data.
func (g *Group) Validate() error {
	if g.ID == uuid.Nil {
		return ErrGroupIDEmpty
	}

	if g.Name == "" {
		return ErrGroupNameEmpty
	}

	return nil
}
