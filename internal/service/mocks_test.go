package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/job"
	"github.com/pmackinlay/taskboard/internal/metrics"
	"github.com/pmackinlay/taskboard/internal/platform/mail"
	"github.com/pmackinlay/taskboard/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

// mockTaskStore is a configurable in-memory TaskStore double. Unset function
// fields fall back to simple defaults.
type mockTaskStore struct {
	createFn         func(ctx context.Context, task *domain.Task) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	currentStatusFn  func(ctx context.Context, taskID uuid.UUID) (domain.Status, error)
	appendStatusFn   func(ctx context.Context, taskID uuid.UUID, status domain.Status) (*domain.StatusEntry, error)
	addAssigneeFn    func(ctx context.Context, taskID, userID uuid.UUID) (bool, error)
	listFn           func(ctx context.Context) ([]*domain.Task, error)
	updateFn         func(ctx context.Context, task *domain.Task) error
	deleteFn         func(ctx context.Context, id uuid.UUID) error
	listAssigneesFn  func(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
	appendedStatuses []domain.Status
}

var _ store.TaskStore = (*mockTaskStore)(nil)

func (m *mockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Task{ID: id, Title: "Task"}, nil
}

func (m *mockTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, task)
	}
	return nil
}

func (m *mockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTaskStore) CurrentStatus(ctx context.Context, taskID uuid.UUID) (domain.Status, error) {
	if m.currentStatusFn != nil {
		return m.currentStatusFn(ctx, taskID)
	}
	return domain.StatusNew, nil
}

func (m *mockTaskStore) AppendStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status domain.Status,
) (*domain.StatusEntry, error) {
	if m.appendStatusFn != nil {
		return m.appendStatusFn(ctx, taskID, status)
	}
	m.appendedStatuses = append(m.appendedStatuses, status)
	return &domain.StatusEntry{TaskID: taskID, Status: status}, nil
}

func (m *mockTaskStore) ListStatuses(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusEntry, error) {
	return nil, nil
}

func (m *mockTaskStore) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	if m.addAssigneeFn != nil {
		return m.addAssigneeFn(ctx, taskID, userID)
	}
	return true, nil
}

func (m *mockTaskStore) ListAssignees(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	if m.listAssigneesFn != nil {
		return m.listAssigneesFn(ctx, taskID)
	}
	return nil, nil
}

func (m *mockTaskStore) WithTx(tx *sql.Tx) store.TaskStore { return m }

// mockCommentStore is a configurable CommentStore double.
type mockCommentStore struct {
	createFn     func(ctx context.Context, comment *domain.Comment) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	listFn       func(ctx context.Context) ([]*domain.Comment, error)
	listByTaskFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	deleted      []uuid.UUID
}

var _ store.CommentStore = (*mockCommentStore)(nil)

func (m *mockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return &domain.Comment{ID: id}, nil
}

func (m *mockCommentStore) List(ctx context.Context) ([]*domain.Comment, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCommentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	if m.listByTaskFn != nil {
		return m.listByTaskFn(ctx, taskID)
	}
	return nil, nil
}

func (m *mockCommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return m }

// mockGroupStore only implements what the services exercise; the rest
// returns zero values.
type mockGroupStore struct {
	isMemberFn         func(ctx context.Context, userID uuid.UUID, groupName string) (bool, error)
	listMemberGroupsFn func(ctx context.Context, userID uuid.UUID) ([]string, error)
}

var _ store.GroupStore = (*mockGroupStore)(nil)

func (m *mockGroupStore) Create(ctx context.Context, group *domain.Group) error { return nil }
func (m *mockGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return nil, store.ErrGroupNotFound
}
func (m *mockGroupStore) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	return nil, store.ErrGroupNotFound
}
func (m *mockGroupStore) List(ctx context.Context) ([]*domain.Group, error)      { return nil, nil }
func (m *mockGroupStore) Delete(ctx context.Context, id uuid.UUID) error         { return nil }
func (m *mockGroupStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return nil
}

func (m *mockGroupStore) IsMember(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, userID, groupName)
	}
	return false, nil
}

func (m *mockGroupStore) ListMemberGroups(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if m.listMemberGroupsFn != nil {
		return m.listMemberGroupsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockGroupStore) WithTx(tx *sql.Tx) store.GroupStore { return m }

// mockUserStore is a configurable UserStore double.
type mockUserStore struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	updateFn     func(ctx context.Context, user *domain.User) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
}

var _ store.UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) List(ctx context.Context) ([]*domain.User, error) { return nil, nil }

func (m *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockSubmitter records submitted jobs.
type mockSubmitter struct {
	submitted []job.Job
	err       error
}

var _ job.Submitter = (*mockSubmitter)(nil)

func (m *mockSubmitter) Submit(ctx context.Context, j job.Job) error {
	if m.err != nil {
		return m.err
	}
	m.submitted = append(m.submitted, j)
	return nil
}

// noopMailer satisfies the mailer dependency of the notification factory.
type noopMailer struct{}

var _ mail.Mailer = (*noopMailer)(nil)

func (noopMailer) Send(ctx context.Context, msg mail.Message) error { return nil }

func testNotificationFactory(t *testing.T, tasks *mockTaskStore, users *mockUserStore) *job.NotificationFactory {
	t.Helper()
	factory, err := job.NewNotificationFactory(users, tasks, noopMailer{}, testLogger(), nil)
	require.NoError(t, err)
	return factory
}
