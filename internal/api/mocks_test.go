package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/service"
)

// mockTaskService is a configurable TaskService double.
type mockTaskService struct {
	createFn        func(ctx context.Context, title, about string) (*domain.Task, error)
	getFn           func(ctx context.Context, id uuid.UUID) (*service.TaskDetails, error)
	listFn          func(ctx context.Context) ([]*service.TaskDetails, error)
	updateFn        func(ctx context.Context, id uuid.UUID, title, about string) (*domain.Task, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	forwardFn       func(ctx context.Context, id uuid.UUID) (domain.Status, error)
	backwardFn      func(ctx context.Context, id uuid.UUID) (domain.Status, error)
	statusHistoryFn func(ctx context.Context, id uuid.UUID) ([]*domain.StatusEntry, error)
	assignFn        func(ctx context.Context, taskID, userID uuid.UUID) error
}

var _ service.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) CreateTask(ctx context.Context, title, about string) (*domain.Task, error) {
	return m.createFn(ctx, title, about)
}

func (m *mockTaskService) GetTask(ctx context.Context, id uuid.UUID) (*service.TaskDetails, error) {
	return m.getFn(ctx, id)
}

func (m *mockTaskService) ListTasks(ctx context.Context) ([]*service.TaskDetails, error) {
	return m.listFn(ctx)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, id uuid.UUID, title, about string) (*domain.Task, error) {
	return m.updateFn(ctx, id, title, about)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockTaskService) Forward(ctx context.Context, id uuid.UUID) (domain.Status, error) {
	return m.forwardFn(ctx, id)
}

func (m *mockTaskService) Backward(ctx context.Context, id uuid.UUID) (domain.Status, error) {
	return m.backwardFn(ctx, id)
}

func (m *mockTaskService) StatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusEntry, error) {
	return m.statusHistoryFn(ctx, id)
}

func (m *mockTaskService) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	return m.assignFn(ctx, taskID, userID)
}

// mockCommentService is a configurable CommentService double.
type mockCommentService struct {
	createFn func(ctx context.Context, authorID, taskID uuid.UUID, text string) (*domain.Comment, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	listFn   func(ctx context.Context) ([]*domain.Comment, error)
	deleteFn func(ctx context.Context, requesterID, commentID uuid.UUID) error
}

var _ service.CommentService = (*mockCommentService)(nil)

func (m *mockCommentService) CreateComment(
	ctx context.Context,
	authorID, taskID uuid.UUID,
	text string,
) (*domain.Comment, error) {
	return m.createFn(ctx, authorID, taskID, text)
}

func (m *mockCommentService) GetComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return m.getFn(ctx, id)
}

func (m *mockCommentService) ListComments(ctx context.Context) ([]*domain.Comment, error) {
	return m.listFn(ctx)
}

func (m *mockCommentService) DeleteComment(ctx context.Context, requesterID, commentID uuid.UUID) error {
	return m.deleteFn(ctx, requesterID, commentID)
}

// mockUserService is a configurable UserService double.
type mockUserService struct {
	registerFn     func(ctx context.Context, email, displayName, password string) (*domain.User, error)
	authenticateFn func(ctx context.Context, email, password string) (*domain.User, error)
	getFn          func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	listFn         func(ctx context.Context) ([]*domain.User, error)
	updateFn       func(ctx context.Context, id uuid.UUID, email, displayName, password string) (*domain.User, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	memberGroupsFn func(ctx context.Context, id uuid.UUID) ([]string, error)
}

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, displayName, password string) (*domain.User, error) {
	return m.registerFn(ctx, email, displayName, password)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	return m.authenticateFn(ctx, email, password)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return m.listFn(ctx)
}

func (m *mockUserService) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	email, displayName, password string,
) (*domain.User, error) {
	return m.updateFn(ctx, id, email, displayName, password)
}

func (m *mockUserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockUserService) MemberGroups(ctx context.Context, id uuid.UUID) ([]string, error) {
	if m.memberGroupsFn != nil {
		return m.memberGroupsFn(ctx, id)
	}
	return nil, nil
}
