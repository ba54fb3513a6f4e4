package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/job"
	"github.com/pmackinlay/taskboard/internal/metrics"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// TaskDetails bundles a task with its derived state: the current ledger
// status, the assignee set and the task's comments.
type TaskDetails struct {
	Task          *domain.Task
	CurrentStatus domain.Status
	Assignees     []uuid.UUID
	Comments      []*domain.Comment
}

// TaskService provides task lifecycle operations: CRUD, workflow
// transitions and assignment.
type TaskService interface {
	// CreateTask creates a task with an initial "New" ledger entry.
	// An empty title falls back to the default title.
	CreateTask(ctx context.Context, title, about string) (*domain.Task, error)

	// GetTask retrieves a task together with its current status,
	// assignees and comments.
	GetTask(ctx context.Context, id uuid.UUID) (*TaskDetails, error)

	// ListTasks retrieves all tasks with their derived state.
	ListTasks(ctx context.Context) ([]*TaskDetails, error)

	// UpdateTask modifies a task's title and description.
	UpdateTask(ctx context.Context, id uuid.UUID, title, about string) (*domain.Task, error)

	// DeleteTask removes a task and, by cascade, its ledger, comments
	// and assignee rows.
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// Forward advances the task to the next workflow status and returns
	// the new status. Returns domain.ErrInvalidTransition when the task
	// is already at the final status.
	Forward(ctx context.Context, id uuid.UUID) (domain.Status, error)

	// Backward reverts the task to the previous workflow status and
	// returns the new status. Returns domain.ErrInvalidTransition when
	// the task is already at the initial status.
	Backward(ctx context.Context, id uuid.UUID) (domain.Status, error)

	// StatusHistory returns the task's full status ledger in insertion
	// order, earliest first.
	StatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusEntry, error)

	// Assign adds a user to the task's assignee set. A newly added
	// assignee is notified by email through a background job; re-adding
	// an existing assignee is a no-op and sends nothing.
	Assign(ctx context.Context, taskID, userID uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	db            *sql.DB
	tasks         store.TaskStore
	comments      store.CommentStore
	jobs          job.Submitter
	notifications *job.NotificationFactory
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// It panics if any required dependency is nil.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	comments store.CommentStore,
	jobs job.Submitter,
	notifications *job.NotificationFactory,
	m *metrics.Metrics,
	log *slog.Logger,
) TaskService {
	if db == nil {
		panic("taskService requires a non-nil db")
	}
	if tasks == nil {
		panic("taskService requires a non-nil task store")
	}
	if comments == nil {
		panic("taskService requires a non-nil comment store")
	}
	if jobs == nil {
		panic("taskService requires a non-nil job submitter")
	}
	if notifications == nil {
		panic("taskService requires a non-nil notification factory")
	}
	if m == nil {
		panic("taskService requires non-nil metrics")
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		db:            db,
		tasks:         tasks,
		comments:      comments,
		jobs:          jobs,
		notifications: notifications,
		metrics:       m,
		logger:        log.With(slog.String("component", "task_service")),
	}
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, title, about string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(title, about)
	if err != nil {
		return nil, NewTaskServiceError("create_task", "invalid task", err)
	}

	// The task row and its initial ledger entry must land together.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("title", task.Title))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*TaskDetails, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assembleDetails(ctx, task)
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*TaskDetails, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	details := make([]*TaskDetails, 0, len(tasks))
	for _, task := range tasks {
		d, err := s.assembleDetails(ctx, task)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// assembleDetails loads the derived state for a task.
func (s *taskServiceImpl) assembleDetails(ctx context.Context, task *domain.Task) (*TaskDetails, error) {
	status, err := s.tasks.CurrentStatus(ctx, task.ID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to load current status", err)
	}

	assignees, err := s.tasks.ListAssignees(ctx, task.ID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to load assignees", err)
	}

	comments, err := s.comments.ListByTask(ctx, task.ID)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to load comments", err)
	}

	return &TaskDetails{
		Task:          task,
		CurrentStatus: status,
		Assignees:     assignees,
		Comments:      comments,
	}, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id uuid.UUID, title, about string) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		task.Title = title
	}
	task.About = about

	if err := task.Validate(); err != nil {
		return nil, NewTaskServiceError("update_task", "invalid task", err)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, err
	}

	return task, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// Forward implements TaskService.Forward
func (s *taskServiceImpl) Forward(ctx context.Context, id uuid.UUID) (domain.Status, error) {
	return s.transition(ctx, id, "forward", domain.Status.Next)
}

// Backward implements TaskService.Backward
func (s *taskServiceImpl) Backward(ctx context.Context, id uuid.UUID) (domain.Status, error) {
	return s.transition(ctx, id, "backward", domain.Status.Prev)
}

// transition appends a ledger entry moving the task one step in the given
// direction. The task row is locked for the duration of the transaction so
// concurrent transitions on the same task serialize instead of both reading
// the same current status.
func (s *taskServiceImpl) transition(
	ctx context.Context,
	id uuid.UUID,
	direction string,
	step func(domain.Status) (domain.Status, error),
) (domain.Status, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var next domain.Status
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if _, err := txTasks.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}

		current, err := txTasks.CurrentStatus(ctx, id)
		if err != nil {
			return err
		}

		next, err = step(current)
		if err != nil {
			return err
		}

		_, err = txTasks.AppendStatus(ctx, id, next)
		return err
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrInvalidTransition) {
			outcome = "rejected"
		}
		s.metrics.StatusTransitions.WithLabelValues(direction, outcome).Inc()
		return "", err
	}

	s.metrics.StatusTransitions.WithLabelValues(direction, "success").Inc()
	log.Info("task status changed",
		slog.String("task_id", id.String()),
		slog.String("direction", direction),
		slog.String("status", string(next)))
	return next, nil
}

// StatusHistory implements TaskService.StatusHistory
func (s *taskServiceImpl) StatusHistory(ctx context.Context, id uuid.UUID) ([]*domain.StatusEntry, error) {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.tasks.ListStatuses(ctx, id)
}

// Assign implements TaskService.Assign
func (s *taskServiceImpl) Assign(ctx context.Context, taskID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Verify the task exists up front so a missing task surfaces as
	// not-found rather than a foreign key failure.
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}

	added, err := s.tasks.AddAssignee(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !added {
		log.Debug("user already assigned",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
		return nil
	}

	// Notification is best effort. The assignment itself is already
	// committed, so an enqueue failure must not fail the request.
	notification := s.notifications.NewAssignmentNotification(taskID, userID)
	if err := s.jobs.Submit(ctx, notification); err != nil {
		log.Warn("failed to enqueue assignment notification",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()),
			slog.String("user_id", userID.String()))
	}

	log.Info("user assigned to task",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}
