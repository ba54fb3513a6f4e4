package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/service"
)

// RegisterRequest is the request for user registration.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the request for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the response for successful registration or login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateTaskRequest is the request for creating a task. The title is
// optional; an absent title falls back to the server-side default.
type CreateTaskRequest struct {
	Title string `json:"title" validate:"max=50"`
	About string `json:"about"`
}

// UpdateTaskRequest is the request for updating a task's fields.
type UpdateTaskRequest struct {
	Title string `json:"title" validate:"max=50"`
	About string `json:"about"`
}

// AssignRequest names the user to add to a task's assignee set.
type AssignRequest struct {
	UserID uuid.UUID `json:"user" validate:"required"`
}

// CommentResponse is the API representation of a comment.
type CommentResponse struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user"`
	TaskID   uuid.UUID `json:"task"`
	Text     string    `json:"comment"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// TaskResponse is the API representation of a task, including its derived
// state: current ledger status, assignees and comments.
type TaskResponse struct {
	ID            uuid.UUID         `json:"id"`
	Title         string            `json:"title"`
	About         string            `json:"about"`
	CurrentStatus string            `json:"current_status"`
	Assignees     []uuid.UUID       `json:"assignees"`
	Comments      []CommentResponse `json:"comments"`
	Created       time.Time         `json:"created"`
	Modified      time.Time         `json:"modified"`
}

// StatusEntryResponse is one row of a task's status history.
type StatusEntryResponse struct {
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
}

// CreateCommentRequest is the request for commenting on a task. The author
// is the authenticated user.
type CreateCommentRequest struct {
	TaskID uuid.UUID `json:"task" validate:"required"`
	Text   string    `json:"comment" validate:"required"`
}

// UpdateUserRequest is the request for updating a user account. Empty
// fields are left unchanged.
type UpdateUserRequest struct {
	Email       string `json:"email" validate:"omitempty,email"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Password    string `json:"password" validate:"omitempty,min=8,max=72"`
}

// UserResponse is the API representation of a user. Password material is
// never included.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Groups      []string  `json:"groups"`
	Created     time.Time `json:"created_at"`
}

// CreateGroupRequest is the request for creating a group.
type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddMemberRequest names the user to add to a group.
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// GroupResponse is the API representation of a group.
type GroupResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created_at"`
}

// newCommentResponse converts a domain comment to its API shape.
func newCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:       c.ID,
		UserID:   c.UserID,
		TaskID:   c.TaskID,
		Text:     c.Text,
		Created:  c.CreatedAt,
		Modified: c.UpdatedAt,
	}
}

// newTaskResponse converts assembled task details to their API shape.
func newTaskResponse(d *service.TaskDetails) TaskResponse {
	assignees := d.Assignees
	if assignees == nil {
		assignees = []uuid.UUID{}
	}

	comments := make([]CommentResponse, 0, len(d.Comments))
	for _, c := range d.Comments {
		comments = append(comments, newCommentResponse(c))
	}

	return TaskResponse{
		ID:            d.Task.ID,
		Title:         d.Task.Title,
		About:         d.Task.About,
		CurrentStatus: string(d.CurrentStatus),
		Assignees:     assignees,
		Comments:      comments,
		Created:       d.Task.CreatedAt,
		Modified:      d.Task.UpdatedAt,
	}
}

// newUserResponse converts a domain user and their group names to the API
// shape.
func newUserResponse(u *domain.User, groups []string) UserResponse {
	if groups == nil {
		groups = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Groups:      groups,
		Created:     u.CreatedAt,
	}
}

// newGroupResponse converts a domain group to its API shape.
func newGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:      g.ID,
		Name:    g.Name,
		Created: g.CreatedAt,
	}
}
