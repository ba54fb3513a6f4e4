package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/store"
)

func newTaskStoreFixture(t *testing.T) (*TaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTaskStore(db, log), mock
}

func taskColumns() []string {
	return []string{"id", "title", "about", "created_at", "updated_at"}
}

func fkViolation(constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: pgForeignKeyViolationCode, ConstraintName: constraint}
}

func TestTaskStoreCreateWritesInitialStatus(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	task, err := domain.NewTask("Fix login flow", "steps to reproduce inside")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(task.ID, task.Title, task.About, task.CreatedAt, task.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO task_statuses").
		WithArgs(task.ID, domain.StatusNew, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreCreateExistingLedgerUntouched(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	task, err := domain.NewTask("Re-saved task", "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tasks").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// WHERE NOT EXISTS guard skips the insert, which is not an error.
	mock.ExpectExec("INSERT INTO task_statuses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreGetByIDNotFound(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	mock.ExpectQuery("SELECT id, title, about").
		WillReturnRows(sqlmock.NewRows(taskColumns()))

	_, err := s.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreGetByIDForUpdateLocksRow(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(taskColumns()).
			AddRow(id.String(), "Locked task", "", now, now))

	task, err := s.GetByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, "Locked task", task.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreUpdateNotFound(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	task, err := domain.NewTask("Gone", "")
	require.NoError(t, err)

	mock.ExpectExec("UPDATE tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Update(context.Background(), task), store.ErrTaskNotFound)
}

func TestTaskStoreCurrentStatus(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	taskID := uuid.New()
	mock.ExpectQuery("ORDER BY id DESC").
		WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("In progress"))

	status, err := s.CurrentStatus(context.Background(), taskID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)
}

func TestTaskStoreCurrentStatusEmptyLedger(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	mock.ExpectQuery("ORDER BY id DESC").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := s.CurrentStatus(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNoStatusEntries)
}

func TestTaskStoreAppendStatus(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	taskID := uuid.New()
	mock.ExpectQuery("INSERT INTO task_statuses").
		WithArgs(taskID, domain.StatusCompleted, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	entry, err := s.AppendStatus(context.Background(), taskID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(7), entry.ID)
	assert.Equal(t, domain.StatusCompleted, entry.Status)
	assert.Equal(t, taskID, entry.TaskID)
}

func TestTaskStoreAppendStatusRejectsUnknown(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	_, err := s.AppendStatus(context.Background(), uuid.New(), domain.Status("Done"))
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreAppendStatusMissingTask(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	mock.ExpectQuery("INSERT INTO task_statuses").
		WillReturnError(fkViolation("task_statuses_task_id_fkey"))

	_, err := s.AppendStatus(context.Background(), uuid.New(), domain.StatusInProgress)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStoreAddAssignee(t *testing.T) {
	t.Run("new assignment reports added", func(t *testing.T) {
		s, mock := newTaskStoreFixture(t)

		taskID, userID := uuid.New(), uuid.New()
		mock.ExpectExec("INSERT INTO task_assignees").
			WithArgs(taskID, userID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		added, err := s.AddAssignee(context.Background(), taskID, userID)
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("conflict reports not added", func(t *testing.T) {
		s, mock := newTaskStoreFixture(t)

		mock.ExpectExec("INSERT INTO task_assignees").
			WillReturnResult(sqlmock.NewResult(0, 0))

		added, err := s.AddAssignee(context.Background(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("missing user maps to user not found", func(t *testing.T) {
		s, mock := newTaskStoreFixture(t)

		mock.ExpectExec("INSERT INTO task_assignees").
			WillReturnError(fkViolation("task_assignees_user_id_fkey"))

		_, err := s.AddAssignee(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("missing task maps to task not found", func(t *testing.T) {
		s, mock := newTaskStoreFixture(t)

		mock.ExpectExec("INSERT INTO task_assignees").
			WillReturnError(fkViolation("task_assignees_task_id_fkey"))

		_, err := s.AddAssignee(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskStoreListStatusesOrdersByLedgerID(t *testing.T) {
	s, mock := newTaskStoreFixture(t)

	taskID := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "task_id", "status", "created_at", "updated_at"}).
		AddRow(int64(1), taskID.String(), "New", now, now).
		AddRow(int64(2), taskID.String(), "In progress", now, now)

	mock.ExpectQuery("ORDER BY id ASC").
		WithArgs(taskID).
		WillReturnRows(rows)

	entries, err := s.ListStatuses(context.Background(), taskID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StatusNew, entries[0].Status)
	assert.Equal(t, domain.StatusInProgress, entries[1].Status)
}
