package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

type reconcileService struct {
	tx       Transactor
	sessions StudySessionRepository
	daily    DailyProgressRepository
	rules    Rules
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReconcileService creates a new service that repairs daily progress drift from session history
func NewReconcileService(
	tx Transactor,
	sessions StudySessionRepository,
	daily DailyProgressRepository,
	rules Rules,
	m *metrics.Metrics,
	logger *zap.Logger,
) *reconcileService {
	return &reconcileService{
		tx:       tx,
		sessions: sessions,
		daily:    daily,
		rules:    rules,
		metrics:  m,
		logger:   logger,
	}
}

// ReconcileDay raises every daily progress row of "date" to the totals of the completed
// sessions started that day
//
// Rows are only ever raised, so running it again or concurrently with completions never
// double-adds. cards_learned is not derivable from session history and is left as is.
// Each user is reconciled in its own transaction; a failing user does not stop the run and
// all failures are returned joined together with the report.
func (s *reconcileService) ReconcileDay(ctx context.Context, date calendar.Date) (*models.ReconcileReport, error) {
	start, end := date.Bounds(s.rules.Location)
	users, err := s.sessions.ListUsersWithCompletedBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("failed to list users to reconcile", zap.Stringer("date", date), zap.Error(err))
		return nil, err
	}

	report := &models.ReconcileReport{Date: date, Users: len(users)}
	var errs []error
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var changed bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			activity, err := s.sessions.SumCompletedBetween(ctx, userID, start, end)
			if err != nil {
				return err
			}
			changed, err = s.daily.RaiseTo(ctx, &models.DailyProgress{
				UserID:           userID,
				Date:             date,
				CardsStudied:     activity.Answers,
				TimeSpentMinutes: activity.Minutes,
				XPEarned:         activity.XP,
			})
			return err
		})
		if err != nil {
			report.Failed++
			s.metrics.TxFailures.WithLabelValues("reconcile_day").Inc()
			errs = append(errs, fmt.Errorf("user %d: %w", userID, err))
			continue
		}
		if changed {
			report.Corrected++
			s.metrics.ReconcileCorrection.Inc()
			s.logger.Info("daily progress corrected", zap.Int("user_id", userID), zap.Stringer("date", date))
		}
	}

	s.logger.Info("reconciliation finished",
		zap.Stringer("date", date),
		zap.Int("users", report.Users),
		zap.Int("corrected", report.Corrected),
		zap.Int("failed", report.Failed),
	)
	return report, errors.Join(errs...)
}
