package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/job"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// JobStore implements the job.Store interface using PostgreSQL. The jobs
// table is the durable side of the in-memory queue: it lets the runner
// requeue work that a crash left behind.
type JobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewJobStore creates a new PostgreSQL implementation of the job.Store
// interface.
func NewJobStore(db store.DBTX, logger *slog.Logger) *JobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &JobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

var _ job.Store = (*JobStore)(nil)

// WithTx implements job.Store.WithTx
func (s *JobStore) WithTx(tx *sql.Tx) job.Store {
	return &JobStore{db: tx, logger: s.logger}
}

// SaveJob implements job.Store.SaveJob
func (s *JobStore) SaveJob(ctx context.Context, j job.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := time.Now().UTC()
	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	_, err := s.db.ExecContext(ctx, query, j.ID(), j.Type(), j.Payload(), j.Status(), now)
	if err != nil {
		log.Error("failed to save job",
			slog.String("job_id", j.ID().String()),
			slog.String("job_type", j.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save job: %w", err)
	}

	return nil
}

// UpdateJobStatus implements job.Store.UpdateJobStatus
func (s *JobStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status job.Status, errMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, status, errMsg, time.Now().UTC(), jobID)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		// Missing job rows are a no-op; the queue entry is authoritative.
		log.Warn("no job found to update", slog.String("job_id", jobID.String()))
	}

	return nil
}

// GetPendingJobs implements job.Store.GetPendingJobs
func (s *JobStore) GetPendingJobs(ctx context.Context) ([]job.Record, error) {
	return s.getJobsByStatus(ctx, job.StatusPending, 0)
}

// GetProcessingJobs implements job.Store.GetProcessingJobs
func (s *JobStore) GetProcessingJobs(ctx context.Context, olderThan time.Duration) ([]job.Record, error) {
	return s.getJobsByStatus(ctx, job.StatusProcessing, olderThan)
}

func (s *JobStore) getJobsByStatus(ctx context.Context, status job.Status, olderThan time.Duration) ([]job.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}
	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query jobs by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []job.Record
	for rows.Next() {
		var rec job.Record
		var errMsg sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Payload, &rec.Status,
			&errMsg, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		rec.ErrorMessage = errMsg.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating job rows: %w", err)
	}

	return records, nil
}
