package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/metrics"
	"github.com/pmackinlay/taskboard/internal/platform/mail"
)

// Common errors
var (
	ErrNilUserGetter = errors.New("user getter cannot be nil")
	ErrNilTaskGetter = errors.New("task getter cannot be nil")
	ErrNilMailer     = errors.New("mailer cannot be nil")
	ErrUnknownType   = errors.New("unknown job type")
)

// UserGetter is the slice of the user store the notification job needs.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TaskGetter is the slice of the task store the notification job needs.
type TaskGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// assignmentPayload is the serialized job data: which user was assigned to
// which task.
type assignmentPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
}

// AssignmentNotificationJob sends an email to a user who was newly assigned
// to a task. Delivery is fire-and-forget: a send failure is logged and
// swallowed, never retried or surfaced to the caller.
type AssignmentNotificationJob struct {
	id      uuid.UUID
	payload assignmentPayload
	status  Status

	users   UserGetter
	tasks   TaskGetter
	mailer  mail.Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ Job = (*AssignmentNotificationJob)(nil)

// ID implements Job.ID
func (j *AssignmentNotificationJob) ID() uuid.UUID { return j.id }

// Type implements Job.Type
func (j *AssignmentNotificationJob) Type() string { return TypeAssignmentNotification }

// Status implements Job.Status
func (j *AssignmentNotificationJob) Status() Status { return j.status }

// Payload implements Job.Payload
func (j *AssignmentNotificationJob) Payload() []byte {
	data, err := json.Marshal(j.payload)
	if err != nil {
		// A struct of two UUIDs cannot fail to marshal.
		panic(fmt.Sprintf("failed to marshal assignment payload: %v", err))
	}
	return data
}

// Execute implements Job.Execute
// Missing task or user is a job failure; a mail transport failure is not.
func (j *AssignmentNotificationJob) Execute(ctx context.Context) error {
	log := j.logger.With(
		slog.String("job_id", j.id.String()),
		slog.String("task_id", j.payload.TaskID.String()),
		slog.String("user_id", j.payload.UserID.String()),
	)

	task, err := j.tasks.GetByID(ctx, j.payload.TaskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}

	user, err := j.users.GetByID(ctx, j.payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	msg := mail.AssignmentMessage(user.Email, task.Title)
	if err := j.mailer.Send(ctx, msg); err != nil {
		// Fire and forget: the assignment already happened and the email is
		// best-effort. Log and move on.
		log.Warn("assignment email not delivered", slog.String("error", err.Error()))
		if j.metrics != nil {
			j.metrics.EmailsSent.WithLabelValues("failure").Inc()
		}
		return nil
	}

	log.Info("assignment email sent", slog.String("to", user.Email))
	if j.metrics != nil {
		j.metrics.EmailsSent.WithLabelValues("success").Inc()
	}
	return nil
}

// NotificationFactory builds assignment notification jobs, both for fresh
// submissions and for records recovered from the store.
type NotificationFactory struct {
	users   UserGetter
	tasks   TaskGetter
	mailer  mail.Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewNotificationFactory creates a NotificationFactory. Metrics may be nil.
func NewNotificationFactory(
	users UserGetter,
	tasks TaskGetter,
	mailer mail.Mailer,
	logger *slog.Logger,
	m *metrics.Metrics,
) (*NotificationFactory, error) {
	if users == nil {
		return nil, ErrNilUserGetter
	}
	if tasks == nil {
		return nil, ErrNilTaskGetter
	}
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationFactory{
		users:   users,
		tasks:   tasks,
		mailer:  mailer,
		logger:  logger.With(slog.String("component", "notification_factory")),
		metrics: m,
	}, nil
}

// NewAssignmentNotification creates a job that emails userID about their
// assignment to taskID.
func (f *NotificationFactory) NewAssignmentNotification(taskID, userID uuid.UUID) *AssignmentNotificationJob {
	return &AssignmentNotificationJob{
		id:      uuid.New(),
		payload: assignmentPayload{TaskID: taskID, UserID: userID},
		status:  StatusPending,
		users:   f.users,
		tasks:   f.tasks,
		mailer:  f.mailer,
		logger:  f.logger,
		metrics: f.metrics,
	}
}

var _ Hydrator = (*NotificationFactory)(nil)

// Hydrate implements Hydrator.Hydrate
func (f *NotificationFactory) Hydrate(rec Record) (Job, error) {
	if rec.Type != TypeAssignmentNotification {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, rec.Type)
	}

	var payload assignmentPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment payload: %w", err)
	}

	return &AssignmentNotificationJob{
		id:      rec.ID,
		payload: payload,
		status:  rec.Status,
		users:   f.users,
		tasks:   f.tasks,
		mailer:  f.mailer,
		logger:  f.logger,
		metrics: f.metrics,
	}, nil
}
