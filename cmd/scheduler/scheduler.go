package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/tasks"
	"go.uber.org/zap"
)

const (
	reconcileLockPrefix = "reconcile:lock:"
	reconcileLockTTL    = 36 * time.Hour
)

// DayLock is the subset of the Redis client the scheduler uses to claim a day
type DayLock interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// TaskEnqueuer is the subset of the asynq client the scheduler uses
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues the daily reconciliation of the previous calendar day
type Scheduler struct {
	cron     *cron.Cron
	lock     DayLock
	queue    TaskEnqueuer
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a scheduler firing on the standard cron expression "schedule",
// evaluated in "loc"
func NewScheduler(schedule string, lock DayLock, queue TaskEnqueuer, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		lock:     lock,
		queue:    queue,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, func() {
		_ = s.enqueueReconcile(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start starts the cron loop. Yesterday is also enqueued right away, so a run missed while
// the scheduler was down is caught up.
func (s *Scheduler) Start() {
	s.logger.Info("Scheduler started")
	_ = s.enqueueReconcile(context.Background())
	s.cron.Start()
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// enqueueReconcile claims yesterday in Redis and enqueues its reconciliation task.
// Only one scheduler instance enqueues a given day; the task id rejects a second enqueue
// if the lock expired in between.
func (s *Scheduler) enqueueReconcile(ctx context.Context) error {
	date := calendar.Of(s.now(), s.location).AddDays(-1)
	key := reconcileLockPrefix + date.String()

	acquired, err := s.lock.SetNX(ctx, key, s.now().UTC().Format(time.RFC3339), reconcileLockTTL).Result()
	if err != nil {
		s.logger.Error("Failed to acquire reconcile lock", zap.String("date", date.String()), zap.Error(err))
		return fmt.Errorf("failed to acquire reconcile lock: %w", err)
	}
	if !acquired {
		s.logger.Debug("Reconcile already enqueued", zap.String("date", date.String()))
		return nil
	}

	task, opts, err := tasks.NewReconcileDayTask(date)
	if err != nil {
		s.release(ctx, key)
		return err
	}

	info, err := s.queue.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.logger.Info("Reconcile task already queued", zap.String("date", date.String()))
		return nil
	}
	if err != nil {
		s.release(ctx, key)
		s.logger.Error("Failed to enqueue reconcile task", zap.String("date", date.String()), zap.Error(err))
		return fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}

	s.logger.Info("Enqueued reconcile task", zap.String("date", date.String()), zap.String("task_id", info.ID))
	return nil
}

// release drops the day lock so the next run retries the enqueue
func (s *Scheduler) release(ctx context.Context, key string) {
	if err := s.lock.Del(ctx, key).Err(); err != nil {
		s.logger.Error("Failed to release reconcile lock", zap.String("key", key), zap.Error(err))
	}
}
