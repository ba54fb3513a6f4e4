// Package mail provides the outbound email transport used by the
// notification pipeline.
package mail

import (
	"context"
	"fmt"
	"log/slog"
)

// Message is a plain-text email ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the transport over which notification emails are delivered.
type Mailer interface {
	// Send delivers the message. Errors report transport failure only;
	// whether a failure matters is the caller's policy.
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. It backs
// deployments with no SMTP host configured, such as local development.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a Mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.Send
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email suppressed, no SMTP host configured",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}

// AssignmentMessage composes the email sent to a user who was newly assigned
// to a task.
func AssignmentMessage(to, taskTitle string) Message {
	return Message{
		To:      to,
		Subject: "New assignment",
		Body:    fmt.Sprintf(`You have been assigned to the "%s" task`, taskTitle),
	}
}
