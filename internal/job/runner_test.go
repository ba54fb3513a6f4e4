package job

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockJob implements the Job interface for testing.
type mockJob struct {
	id      uuid.UUID
	jobType string
	payload []byte
	status  Status
	execFn  func(ctx context.Context) error
}

func (m *mockJob) ID() uuid.UUID  { return m.id }
func (m *mockJob) Type() string   { return m.jobType }
func (m *mockJob) Payload() []byte { return m.payload }
func (m *mockJob) Status() Status { return m.status }

func (m *mockJob) Execute(ctx context.Context) error {
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func newMockJob(execFn func(ctx context.Context) error) *mockJob {
	return &mockJob{
		id:      uuid.New(),
		jobType: "mock",
		payload: []byte(`{}`),
		status:  StatusPending,
		execFn:  execFn,
	}
}

// memoryJobStore is an in-memory job.Store for runner tests.
type memoryJobStore struct {
	mu       sync.Mutex
	statuses map[uuid.UUID]Status
	records  []Record
	saveErr  error
}

func newMemoryJobStore() *memoryJobStore {
	return &memoryJobStore{statuses: make(map[uuid.UUID]Status)}
}

func (s *memoryJobStore) SaveJob(_ context.Context, j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.statuses[j.ID()] = StatusPending
	return nil
}

func (s *memoryJobStore) UpdateJobStatus(_ context.Context, jobID uuid.UUID, status Status, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[jobID] = status
	return nil
}

func (s *memoryJobStore) GetPendingJobs(_ context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if s.statuses[rec.ID] == StatusPending {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memoryJobStore) GetProcessingJobs(_ context.Context, _ time.Duration) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if s.statuses[rec.ID] == StatusProcessing {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memoryJobStore) WithTx(_ *sql.Tx) Store { return s }

func (s *memoryJobStore) statusOf(id uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

// staticHydrator returns pre-built jobs keyed by record ID.
type staticHydrator struct {
	jobs map[uuid.UUID]Job
}

func (h *staticHydrator) Hydrate(rec Record) (Job, error) {
	if j, ok := h.jobs[rec.ID]; ok {
		return j, nil
	}
	return nil, ErrUnknownType
}

func testRunnerConfig(queueSize int) RunnerConfig {
	return RunnerConfig{
		WorkerCount:           1,
		QueueSize:             queueSize,
		StuckJobAge:           time.Minute,
		StuckJobCheckInterval: time.Hour, // keep the monitor quiet during tests
	}
}

func TestRunnerSubmitAndProcess(t *testing.T) {
	store := newMemoryJobStore()
	executed := make(chan uuid.UUID, 1)
	j := newMockJob(func(context.Context) error {
		executed <- uuid.Nil
		return nil
	})

	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(10), testLogger(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), j))

	select {
	case <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not executed")
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(j.ID()) == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerFailedJob(t *testing.T) {
	store := newMemoryJobStore()
	j := newMockJob(func(context.Context) error {
		return errors.New("boom")
	})

	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(10), testLogger(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), j))

	assert.Eventually(t, func() bool {
		return store.statusOf(j.ID()) == StatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerSubmitQueueFull(t *testing.T) {
	store := newMemoryJobStore()

	// Runner not started: nothing drains the queue.
	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(1), testLogger(), nil)

	require.NoError(t, runner.Submit(context.Background(), newMockJob(nil)))

	err := runner.Submit(context.Background(), newMockJob(nil))
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestRunnerSubmitSaveFailure(t *testing.T) {
	store := newMemoryJobStore()
	store.saveErr = errors.New("db down")

	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(10), testLogger(), nil)

	err := runner.Submit(context.Background(), newMockJob(nil))
	assert.Error(t, err)
}

func TestRunnerSubmitAfterStop(t *testing.T) {
	store := newMemoryJobStore()
	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(10), testLogger(), nil)
	require.NoError(t, runner.Start())
	runner.Stop()

	err := runner.Submit(context.Background(), newMockJob(nil))
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestRunnerRecovery(t *testing.T) {
	store := newMemoryJobStore()

	executed := make(chan uuid.UUID, 2)
	pending := newMockJob(func(context.Context) error {
		executed <- uuid.Nil
		return nil
	})
	interrupted := newMockJob(func(context.Context) error {
		executed <- uuid.Nil
		return nil
	})

	// Simulate rows left behind by a previous run: one pending, one caught
	// mid-processing by a crash.
	store.statuses[pending.ID()] = StatusPending
	store.statuses[interrupted.ID()] = StatusProcessing
	store.records = []Record{
		{ID: pending.ID(), Type: "mock", Payload: pending.Payload(), Status: StatusPending},
		{ID: interrupted.ID(), Type: "mock", Payload: interrupted.Payload(), Status: StatusProcessing},
	}

	hydrator := &staticHydrator{jobs: map[uuid.UUID]Job{
		pending.ID():     pending,
		interrupted.ID(): interrupted,
	}}

	runner := NewRunner(store, hydrator, testRunnerConfig(10), testLogger(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-executed:
		case <-time.After(2 * time.Second):
			t.Fatalf("recovered job %d was not executed", i)
		}
	}

	assert.Eventually(t, func() bool {
		return store.statusOf(pending.ID()) == StatusCompleted &&
			store.statusOf(interrupted.ID()) == StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	store := newMemoryJobStore()
	runner := NewRunner(store, &staticHydrator{}, testRunnerConfig(10), testLogger(), nil)
	require.NoError(t, runner.Start())

	runner.Stop()
	runner.Stop() // must not panic on double close
}
