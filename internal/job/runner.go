package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pmackinlay/taskboard/internal/metrics"
)

// Common errors returned by the Runner
var (
	ErrQueueFull    = errors.New("job queue is full")
	ErrRunnerClosed = errors.New("job runner is stopped")
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue.
	QueueSize int

	// StuckJobAge defines how long a job may sit in processing state before
	// it is considered stuck and reset.
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs.
	// Zero means the 5 minute default.
	StuckJobCheckInterval time.Duration
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// Runner manages background job processing: it persists submitted jobs,
// queues them on a buffered channel and drains the channel with a fixed
// worker pool. On startup it requeues jobs left over from a previous run.
type Runner struct {
	store    Store
	hydrator Hydrator
	jobChan  chan Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	config   RunnerConfig
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	stopped bool
}

// NewRunner creates a new Runner. The hydrator rebuilds executable jobs from
// recovered records; metrics may be nil.
func NewRunner(store Store, hydrator Hydrator, cfg RunnerConfig, logger *slog.Logger, m *metrics.Metrics) *Runner {
	if cfg.StuckJobCheckInterval == 0 {
		cfg.StuckJobCheckInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:    store,
		hydrator: hydrator,
		jobChan:  make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		config:   cfg,
		logger:   logger.With(slog.String("component", "job_runner")),
		metrics:  m,
	}
}

var _ Submitter = (*Runner)(nil)

// Submit implements Submitter.Submit
// The job is saved before it is queued so a crash between the two steps is
// recovered on the next startup.
func (r *Runner) Submit(ctx context.Context, j Job) error {
	r.mu.Lock()
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return ErrRunnerClosed
	}

	if err := r.store.SaveJob(ctx, j); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	select {
	case r.jobChan <- j:
		r.observeQueueDepth()
		r.logger.Debug("job submitted",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"queue_len", len(r.jobChan),
			"queue_cap", cap(r.jobChan))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(r.jobChan))
	}
}

// Start requeues unfinished jobs and launches the worker pool and the stuck
// job monitor.
func (r *Runner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	r.logger.Info("job runner started",
		"worker_count", r.config.WorkerCount,
		"queue_size", cap(r.jobChan))
	return nil
}

// Stop gracefully shuts down the runner, waiting for in-flight jobs.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	close(r.jobChan)
	r.logger.Info("job runner stopped")
}

// recover loads unfinished jobs from the store and puts them back on the
// queue. Jobs caught mid-processing by a crash are reset to pending first.
func (r *Runner) recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processing, err := r.store.GetProcessingJobs(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	if len(pending)+len(processing) > 0 {
		r.logger.Info("recovering unfinished jobs",
			"pending_count", len(pending),
			"processing_count", len(processing))
	}

	for _, rec := range processing {
		if err := r.store.UpdateJobStatus(ctx, rec.ID, StatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job",
				"job_id", rec.ID,
				"error", err)
			continue
		}
		r.requeue(rec)
	}

	for _, rec := range pending {
		r.requeue(rec)
	}

	return nil
}

// requeue hydrates a recovered record and puts it on the queue.
func (r *Runner) requeue(rec Record) {
	j, err := r.hydrator.Hydrate(rec)
	if err != nil {
		r.logger.Error("failed to hydrate recovered job",
			"job_id", rec.ID,
			"job_type", rec.Type,
			"error", err)
		if updErr := r.store.UpdateJobStatus(context.Background(), rec.ID, StatusFailed, err.Error()); updErr != nil {
			r.logger.Error("failed to mark unhydratable job failed",
				"job_id", rec.ID,
				"error", updErr)
		}
		return
	}

	select {
	case r.jobChan <- j:
		r.observeQueueDepth()
	default:
		r.logger.Error("failed to requeue job, queue is full",
			"job_id", rec.ID,
			"job_type", rec.Type)
	}
}

// worker processes jobs from the queue until the runner is stopped.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case j, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.observeQueueDepth()
			r.processJob(j, id)
		}
	}
}

// processJob handles execution of a single job.
func (r *Runner) processJob(j Job, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		"job_id", j.ID(),
		"job_type", j.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateJobStatus(ctx, j.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to update job status to processing", "error", err)
		return
	}

	log.Info("processing job")

	if err := j.Execute(ctx); err != nil {
		log.Error("job execution failed", "error", err)
		if updErr := r.store.UpdateJobStatus(ctx, j.ID(), StatusFailed, err.Error()); updErr != nil {
			log.Error("failed to update job status to failed", "error", updErr)
		}
		if r.metrics != nil {
			r.metrics.NotificationJobs.WithLabelValues("failed").Inc()
		}
		return
	}

	log.Info("job completed")
	if err := r.store.UpdateJobStatus(ctx, j.ID(), StatusCompleted, ""); err != nil {
		log.Error("failed to update job status to completed", "error", err)
	}
	if r.metrics != nil {
		r.metrics.NotificationJobs.WithLabelValues("completed").Inc()
	}
}

// stuckJobMonitor periodically resets jobs that have been in processing state
// for longer than the configured age.
func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingJobs(ctx, r.config.StuckJobAge)
			if err != nil {
				r.logger.Error("failed to check for stuck jobs", "error", err)
				continue
			}

			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck jobs", "count", len(stuck))
			for _, rec := range stuck {
				if err := r.store.UpdateJobStatus(ctx, rec.ID, StatusPending, "reset after being stuck in processing"); err != nil {
					r.logger.Error("failed to reset stuck job",
						"job_id", rec.ID,
						"error", err)
					continue
				}
				r.requeue(rec)
			}
		}
	}
}

func (r *Runner) observeQueueDepth() {
	if r.metrics != nil {
		r.metrics.QueueDepth.Set(float64(len(r.jobChan)))
	}
}
