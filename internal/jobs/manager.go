// Package jobs owns the background job lifecycle: pending -> processing ->
// completed or failed. Terminal statuses are final, progress is monotone,
// and every job is bounded by a wall-clock timeout plus a staleness
// sweeper for jobs whose worker died without reporting.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/cache"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/config"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/store"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// ReportFunc lets a running job publish progress. progress is clamped to
// [0, 100]; message replaces the job's current status message.
type ReportFunc func(progress int, message string)

// Runner is the unit of work a job executes. The returned raw JSON is
// stored as the job result. A non-nil error fails the job with the error
// text; a panic fails it with a generic message.
type Runner func(ctx context.Context, report ReportFunc) (json.RawMessage, error)

// Manager starts and tracks background jobs.
type Manager struct {
	store store.Store
	cache cache.Cache
	cfg   config.JobsConfig
	wg    sync.WaitGroup
}

// NewManager creates a job manager. cache may be nil; job status is then
// served from the store only.
func NewManager(st store.Store, c cache.Cache, cfg config.JobsConfig) *Manager {
	return &Manager{store: st, cache: c, cfg: cfg}
}

// Start launches run as a background job for the given trip and kind. If a
// pending or processing job for the same pair already exists, that job is
// returned instead and run is not invoked; the second return value reports
// whether a new job was started.
func (m *Manager) Start(ctx context.Context, tripID uuid.UUID, kind string, run Runner) (*models.Job, bool, error) {
	if !models.ValidJobKind(kind) {
		return nil, false, fmt.Errorf("unknown job kind %q", kind)
	}

	if existing, err := m.store.GetActiveJob(ctx, tripID, kind); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("check active job: %w", err)
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:        uuid.New(),
		TripID:    tripID,
		Kind:      kind,
		Status:    models.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.CreateJob(ctx, job); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// Lost a race with a concurrent start; reuse the winner.
			if existing, getErr := m.store.GetActiveJob(ctx, tripID, kind); getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create job: %w", err)
	}
	m.mirror(ctx, job)

	m.wg.Add(1)
	go m.execute(job.ID, run)

	return job, true, nil
}

// Get returns a job by id, ErrNotFound if it does not exist.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	if m.cache != nil {
		if raw, ok, err := m.cache.GetJobStatus(ctx, id); err == nil && ok {
			var job models.Job
			if err := json.Unmarshal([]byte(raw), &job); err == nil {
				return &job, nil
			}
		}
	}
	return m.store.GetJob(ctx, id)
}

// Progress records a progress update. The first update moves a pending job
// to processing. Updates against terminal jobs are no-ops.
func (m *Manager) Progress(ctx context.Context, id uuid.UUID, progress int, message string) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	job, err := m.store.UpdateJob(ctx, id,
		store.WithStatus(models.JobStatusProcessing),
		store.WithProgress(progress),
		store.WithMessage(message))
	if err != nil {
		slog.Error("job progress update failed", "job_id", id, "error", err)
		return
	}
	m.mirror(ctx, job)
}

// execute runs the job body under the configured wall-clock timeout and
// records the outcome.
func (m *Manager) execute(id uuid.UUID, run Runner) {
	defer m.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "job_id", id, "panic", r)
			m.fail(context.Background(), id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	report := func(progress int, message string) {
		m.Progress(ctx, id, progress, message)
	}

	result, err := run(ctx, report)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			reason = fmt.Sprintf("job exceeded %s time limit", m.cfg.Timeout)
		}
		// The timeout context may be spent; record the failure regardless.
		m.fail(context.Background(), id, reason)
		return
	}

	m.complete(context.Background(), id, result)
}

func (m *Manager) complete(ctx context.Context, id uuid.UUID, result json.RawMessage) {
	opts := []store.JobUpdateOption{
		store.WithStatus(models.JobStatusCompleted),
		store.WithProgress(100),
	}
	if result != nil {
		opts = append(opts, store.WithResult(result))
	}
	job, err := m.store.UpdateJob(ctx, id, opts...)
	if err != nil {
		slog.Error("job completion update failed", "job_id", id, "error", err)
		return
	}
	m.mirror(ctx, job)
	slog.Info("job completed", "job_id", id, "kind", job.Kind)
}

func (m *Manager) fail(ctx context.Context, id uuid.UUID, reason string) {
	job, err := m.store.UpdateJob(ctx, id,
		store.WithStatus(models.JobStatusFailed),
		store.WithErrorMessage(reason))
	if err != nil {
		slog.Error("job failure update failed", "job_id", id, "error", err)
		return
	}
	m.mirror(ctx, job)
	slog.Warn("job failed", "job_id", id, "kind", job.Kind, "reason", reason)
}

// mirror publishes the job snapshot to the cache for fast polling.
func (m *Manager) mirror(ctx context.Context, job *models.Job) {
	if m.cache == nil {
		return
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := m.cache.SetJobStatus(ctx, job.ID, string(raw), m.cfg.StatusTTL); err != nil {
		slog.Warn("job status cache write failed", "job_id", job.ID, "error", err)
	}
}

// Wait blocks until all in-flight jobs have finished. Used on shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}
