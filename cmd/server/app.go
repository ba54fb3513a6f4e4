package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pmackinlay/taskboard/internal/config"
	"github.com/pmackinlay/taskboard/internal/job"
	"github.com/pmackinlay/taskboard/internal/metrics"
	"github.com/pmackinlay/taskboard/internal/platform/mail"
	"github.com/pmackinlay/taskboard/internal/platform/postgres"
	"github.com/pmackinlay/taskboard/internal/service"
	"github.com/pmackinlay/taskboard/internal/service/auth"
	"github.com/pmackinlay/taskboard/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	taskStore    store.TaskStore
	commentStore store.CommentStore
	userStore    store.UserStore
	groupStore   store.GroupStore
	jobStore     job.Store

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	taskService      service.TaskService
	commentService   service.CommentService
	userService      service.UserService

	// Background jobs
	mailer    mail.Mailer
	jobRunner *job.Runner

	// Observability
	metrics  *metrics.Metrics
	registry *prometheus.Registry
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established before
// application wiring: configuration, logger and the database connection.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.registry = prometheus.NewRegistry()
	app.metrics = metrics.NewMetrics(app.registry)

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.taskStore = postgres.NewTaskStore(db, logger)
	app.commentStore = postgres.NewCommentStore(db, logger)
	app.userStore = postgres.NewUserStore(db, logger)
	app.groupStore = postgres.NewGroupStore(db, logger)
	app.jobStore = postgres.NewJobStore(db, logger)

	// Mail transport. No SMTP host means notifications are logged only.
	if cfg.SMTP.Host != "" {
		app.mailer, err = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SMTP mailer: %w", err)
		}
	} else {
		app.mailer = mail.NewLogMailer(logger)
	}

	notificationFactory, err := job.NewNotificationFactory(
		app.userStore,
		app.taskStore,
		app.mailer,
		logger,
		app.metrics,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification factory: %w", err)
	}

	app.jobRunner, err = setupJobRunner(app, notificationFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to set up job runner: %w", err)
	}

	// Services
	app.taskService = service.NewTaskService(
		db,
		app.taskStore,
		app.commentStore,
		app.jobRunner,
		notificationFactory,
		app.metrics,
		logger,
	)
	app.commentService = service.NewCommentService(app.commentStore, app.groupStore, logger)
	app.userService = service.NewUserService(
		app.userStore,
		app.groupStore,
		app.passwordVerifier,
		cfg.Auth.BcryptCost,
		logger,
	)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupJobRunner initializes and starts the background job processor.
func setupJobRunner(app *application, hydrator job.Hydrator) (*job.Runner, error) {
	cfg := job.DefaultRunnerConfig()
	if app.config.Worker.Count > 0 {
		cfg.WorkerCount = app.config.Worker.Count
	}
	if app.config.Worker.QueueSize > 0 {
		cfg.QueueSize = app.config.Worker.QueueSize
	}
	if app.config.Worker.StuckJobAgeMinutes > 0 {
		cfg.StuckJobAge = time.Duration(app.config.Worker.StuckJobAgeMinutes) * time.Minute
	}
	if app.config.Worker.StuckJobCheckInterval > 0 {
		cfg.StuckJobCheckInterval = time.Duration(app.config.Worker.StuckJobCheckInterval) * time.Minute
	}

	runner := job.NewRunner(app.jobStore, hydrator, cfg, app.logger, app.metrics)
	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start job runner: %w", err)
	}

	return runner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.jobRunner != nil {
		app.logger.Info("stopping job runner")
		app.jobRunner.Stop()
	}
}
