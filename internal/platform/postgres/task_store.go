package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend. The status ledger lives in the
// task_statuses table, whose bigserial primary key fixes insertion order, and
// the assignee set in task_assignees.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

// Create implements store.TaskStore.Create
// It inserts the task row and, when the ledger is still empty, the initial
// "New" ledger entry. Run through WithTx when both inserts must be atomic.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, about, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.About, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if err := s.ensureInitialStatus(ctx, task.ID); err != nil {
		return err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("title", task.Title))
	return nil
}

// ensureInitialStatus writes the "New" ledger entry unless the task already
// has one. Saving an already-ledgered task never grows the ledger.
func (s *TaskStore) ensureInitialStatus(ctx context.Context, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		INSERT INTO task_statuses (task_id, status, created_at, updated_at)
		SELECT $1, $2, $3, $3
		WHERE NOT EXISTS (SELECT 1 FROM task_statuses WHERE task_id = $1)
	`
	_, err := s.db.ExecContext(ctx, query, taskID, domain.StatusNew, now)
	if err != nil {
		log.Error("failed to write initial status entry",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return err
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
// The row lock only outlives the call when the store was obtained via WithTx.
func (s *TaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, id, true)
}

func (s *TaskStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, about, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var task domain.Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.About, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return &task, nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, about, created_at, updated_at
		FROM tasks
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.About, &task.CreatedAt, &task.UpdatedAt); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update
// Only title and about are mutable; the ledger and assignee set have their
// own operations.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, about = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title, task.About, time.Now().UTC(), task.ID)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// CurrentStatus implements store.TaskStore.CurrentStatus
// The highest ledger id wins; insertion order, not timestamps, defines
// recency.
func (s *TaskStore) CurrentStatus(ctx context.Context, taskID uuid.UUID) (domain.Status, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT status
		FROM task_statuses
		WHERE task_id = $1
		ORDER BY id DESC
		LIMIT 1
	`
	var status domain.Status
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", store.ErrNoStatusEntries
		}
		log.Error("failed to get current status",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return "", err
	}

	return status, nil
}

// AppendStatus implements store.TaskStore.AppendStatus
func (s *TaskStore) AppendStatus(ctx context.Context, taskID uuid.UUID, status domain.Status) (*domain.StatusEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return nil, domain.ErrUnknownStatus
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO task_statuses (task_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`
	entry := &domain.StatusEntry{
		TaskID:    taskID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.db.QueryRowContext(ctx, query, taskID, status, now).Scan(&entry.ID)
	if err != nil {
		if isForeignKeyViolation(err, "task_id") {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to append status entry",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)))
		return nil, err
	}

	log.Info("status entry appended",
		slog.String("task_id", taskID.String()),
		slog.String("status", string(status)))
	return entry, nil
}

// ListStatuses implements store.TaskStore.ListStatuses
func (s *TaskStore) ListStatuses(ctx context.Context, taskID uuid.UUID) ([]*domain.StatusEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, status, created_at, updated_at
		FROM task_statuses
		WHERE task_id = $1
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list status entries",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.StatusEntry
	for rows.Next() {
		var entry domain.StatusEntry
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// AddAssignee implements store.TaskStore.AddAssignee
// The insert is a set-add: ON CONFLICT DO NOTHING makes re-assigning an
// already-assigned user report false without touching the row.
func (s *TaskStore) AddAssignee(ctx context.Context, taskID, userID uuid.UUID) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO task_assignees (task_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, user_id) DO NOTHING
	`
	result, err := s.db.ExecContext(ctx, query, taskID, userID, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err, "task_id") {
			return false, store.ErrTaskNotFound
		}
		if isForeignKeyViolation(err, "user_id") {
			return false, store.ErrUserNotFound
		}
		log.Error("failed to add assignee",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	added := affected > 0
	if added {
		log.Info("assignee added",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
	}
	return added, nil
}

// ListAssignees implements store.TaskStore.ListAssignees
func (s *TaskStore) ListAssignees(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id
		FROM task_assignees
		WHERE task_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list assignees",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
