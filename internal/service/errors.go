// Package service provides application-level services for managing tasks,
// comments, users and groups.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers use errors.Is to check for specific conditions; the API layer maps
// them to HTTP status codes.
var (
	// ErrNotAuthorized indicates the requesting user lacks the group
	// membership required for the operation.
	ErrNotAuthorized = errors.New("user is not authorized for this operation")
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CommentServiceError is a custom error type for comment service errors.
type CommentServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CommentServiceError.
func (e *CommentServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("comment service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("comment service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CommentServiceError) Unwrap() error {
	return e.Err
}

// NewCommentServiceError creates a new CommentServiceError.
func NewCommentServiceError(operation, message string, err error) *CommentServiceError {
	return &CommentServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
