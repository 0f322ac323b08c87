package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/models"
	"github.com/studycards/backend/internal/tasks"
	"go.uber.org/zap"
)

// Reconciler defines the reconciliation service the worker runs
type Reconciler interface {
	// ReconcileDay raises every active user's Daily Progress row of "date" to the totals of
	// their completed sessions.
	//
	// The report is returned together with the joined per-user errors when some users failed.
	ReconcileDay(ctx context.Context, date calendar.Date) (*models.ReconcileReport, error)
}

// Worker processes the engine's background tasks
type Worker struct {
	reconciler Reconciler
	logger     *zap.Logger
}

// NewWorker creates a new worker instance
func NewWorker(reconciler Reconciler, logger *zap.Logger) *Worker {
	return &Worker{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleReconcileDay processes a TypeReconcileDay task.
// A malformed payload is not retried; a failed run is, since raising rows is idempotent.
func (w *Worker) HandleReconcileDay(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseReconcileDay(t)
	if err != nil {
		w.logger.Error("Invalid reconcile task", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	report, err := w.reconciler.ReconcileDay(ctx, payload.Date)
	if report != nil {
		w.logger.Info("Reconciled daily progress",
			zap.String("date", report.Date.String()),
			zap.Int("users", report.Users),
			zap.Int("corrected", report.Corrected),
			zap.Int("failed", report.Failed),
		)
	}
	if err != nil {
		w.logger.Error("Reconcile run failed", zap.String("date", payload.Date.String()), zap.Error(err))
		return fmt.Errorf("failed to reconcile %s: %w", payload.Date, err)
	}
	return nil
}
