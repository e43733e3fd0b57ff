package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/models"
	"github.com/noah-isme/content-review-api/pkg/cache"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
	"github.com/noah-isme/content-review-api/pkg/jobs"
)

const (
	sweepJobType     = "review_sweep"
	sweepLockKey     = "content-review:sweep-lock"
	lastSweepTTL     = 7 * 24 * time.Hour
	defaultSweepLock = 30 * time.Minute
)

type sweepRunner interface {
	RunDailySweep(ctx context.Context) (*models.SweepReport, error)
}

type sweepLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*cache.Lock, error)
}

// SweepWorkerConfig tunes the sweep queue.
type SweepWorkerConfig struct {
	LockTTL    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// SweepWorker serialises sweep runs: triggers are queued, and each run holds a Redis
// lease so that only one process sweeps at a time.
type SweepWorker struct {
	runner  sweepRunner
	locker  sweepLocker
	cache   *CacheService
	lockTTL time.Duration
	logger  *zap.Logger
	queue   *jobs.Queue

	mu   sync.RWMutex
	last *models.SweepReport
}

// NewSweepWorker builds the worker and its single-worker queue. locker may be nil when
// only one process runs sweeps.
func NewSweepWorker(runner sweepRunner, locker sweepLocker, cacheSvc *CacheService, cfg SweepWorkerConfig, logger *zap.Logger) *SweepWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultSweepLock
	}
	w := &SweepWorker{runner: runner, locker: locker, cache: cacheSvc, lockTTL: cfg.LockTTL, logger: logger}
	w.queue = jobs.NewQueue("review-sweep", w.Handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 4,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		Coalesce:   true,
	})
	return w
}

// Start begins consuming sweep jobs.
func (w *SweepWorker) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Stop waits for the running sweep, if any, to return.
func (w *SweepWorker) Stop() {
	w.queue.Stop()
}

// Trigger queues a sweep and returns its job ID. source names the caller for the logs.
// A sweep already waiting in the queue makes further triggers fail with ErrSweepRunning.
func (w *SweepWorker) Trigger(source string) (string, error) {
	job := jobs.Job{ID: uuid.NewString(), Type: sweepJobType, Payload: source}
	if err := w.queue.Enqueue(job); err != nil {
		if errors.Is(err, jobs.ErrAlreadyQueued) {
			return "", appErrors.Clone(appErrors.ErrSweepRunning, "a review sweep is already queued")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue review sweep")
	}
	return job.ID, nil
}

// Handle runs one sweep job. A held lease or a configuration error is not retried.
func (w *SweepWorker) Handle(ctx context.Context, job jobs.Job) error {
	log := w.logger.With(zap.String("job_id", job.ID), zap.Any("source", job.Payload), zap.Int("attempt", job.Attempt))

	if w.locker != nil {
		lock, err := w.locker.Acquire(ctx, sweepLockKey, w.lockTTL)
		if errors.Is(err, cache.ErrLockHeld) {
			log.Info("review sweep already running elsewhere")
			return jobs.Permanent(appErrors.ErrSweepRunning)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(context.Background()); err != nil {
				log.Warn("failed to release sweep lock", zap.Error(err))
			}
		}()
	}

	report, err := w.runner.RunDailySweep(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrConfiguration) {
			return jobs.Permanent(err)
		}
		return err
	}

	w.mu.Lock()
	w.last = report
	w.mu.Unlock()
	w.cache.Set(ctx, cacheKeyLastSweep, report, lastSweepTTL)
	if report.SkippedReviewed > 0 {
		w.cache.InvalidateReports(ctx)
	}
	return nil
}

// LastReport returns the most recent sweep report from this or any other process.
func (w *SweepWorker) LastReport(ctx context.Context) (*models.SweepReport, error) {
	var report models.SweepReport
	if w.cache.Get(ctx, cacheKeyLastSweep, &report) {
		return &report, nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no review sweep has run yet")
	}
	return w.last, nil
}
