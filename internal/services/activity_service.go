package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/models"
	"github.com/studycards/backend/internal/streak"
	"go.uber.org/zap"
)

type activityService struct {
	tx       Transactor
	accounts AccountRepository
	sessions StudySessionRepository
	rules    Rules
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewActivityService creates a new service evaluating login checkpoints
func NewActivityService(
	tx Transactor,
	accounts AccountRepository,
	sessions StudySessionRepository,
	rules Rules,
	m *metrics.Metrics,
	logger *zap.Logger,
) *activityService {
	return &activityService{
		tx:       tx,
		accounts: accounts,
		sessions: sessions,
		rules:    rules,
		metrics:  m,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// RecordLogin runs the streak checkpoint for a login
//
// The account row is locked for the whole evaluation. When the last activity was yesterday,
// yesterday's aggregate is read from the session history inside the same transaction; a failed
// read fails the checkpoint and nothing is written.
//
// "request" carries the ID of the user who logged in.
//
// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
func (s *activityService) RecordLogin(ctx context.Context, request models.LoginRequest) (*models.StreakResult, error) {
	if err := validateStruct(s.validate, request); err != nil {
		return nil, err
	}

	userID := request.UserID
	today := calendar.Of(s.now(), s.rules.Location)

	var result models.StreakResult
	var outcome streak.Outcome
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := s.accounts.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		state := streak.State{
			Current:        account.Streak,
			Longest:        account.LongestStreak,
			LastActiveDate: account.LastActiveDate,
		}

		var yesterday streak.Activity
		if streak.Plan(state, today).NeedsYesterday {
			start, end := today.AddDays(-1).Bounds(s.rules.Location)
			activity, err := s.sessions.SumActivityBetween(ctx, userID, start, end)
			if err != nil {
				return fmt.Errorf("failed to read previous day activity: %w", err)
			}
			yesterday = streak.Activity{
				Minutes:        activity.DurationSeconds / 60,
				CorrectAnswers: activity.CorrectAnswers,
			}
		}

		next, o := streak.Evaluate(state, today, yesterday)
		outcome = o
		result = models.StreakResult{Streak: next.Current, LongestStreak: next.Longest}
		if o == streak.OutcomeUnchanged {
			return nil
		}

		return s.accounts.UpdateStreak(ctx, userID, next.Current, next.Longest, *next.LastActiveDate)
	})
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("record_login").Inc()
		s.logger.Warn("login checkpoint failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.metrics.StreakOutcomes.WithLabelValues(string(outcome)).Inc()
	s.logger.Debug("login checkpoint",
		zap.Int("user_id", userID),
		zap.String("outcome", string(outcome)),
		zap.Int("streak", result.Streak),
	)
	return &result, nil
}
