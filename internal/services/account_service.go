package services

import (
	"context"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/studycards/backend/internal/auth"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/metrics"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

// recentDays is the number of days of daily progress returned with the account summary
const recentDays = 7

type accountService struct {
	tx       Transactor
	accounts AccountRepository
	sessions StudySessionRepository
	daily    DailyProgressRepository
	rules    Rules
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewAccountService creates a new service for account creation, guest migration and progress reads
func NewAccountService(
	tx Transactor,
	accounts AccountRepository,
	sessions StudySessionRepository,
	daily DailyProgressRepository,
	rules Rules,
	m *metrics.Metrics,
	logger *zap.Logger,
) *accountService {
	return &accountService{
		tx:       tx,
		accounts: accounts,
		sessions: sessions,
		daily:    daily,
		rules:    rules,
		metrics:  m,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateAccount creates the account of a newly registered user
//
// When "request" carries a guest token, the guest's sessions are migrated in the same
// transaction, so no reader can observe the account without them.
//
// If the account already exists, an error wrapping apperrors.ErrAlreadyExists will be returned together with "nil" value.
func (s *accountService) CreateAccount(ctx context.Context, request models.CreateAccountRequest) (*models.MigrationResult, error) {
	if err := validateStruct(s.validate, request); err != nil {
		return nil, err
	}

	account := &models.Account{UserID: request.UserID}
	s.rules.project(account)

	var result *models.MigrationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			return err
		}
		if request.GuestToken == "" {
			result = &models.MigrationResult{Account: account}
			return nil
		}

		migrated, err := s.migrate(ctx, request.UserID, request.GuestToken)
		if err != nil {
			return err
		}
		result = migrated
		return nil
	})
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("create_account").Inc()
		s.logger.Warn("account creation failed", zap.Int("user_id", request.UserID), zap.Error(err))
		return nil, err
	}

	s.metrics.GuestSessionsMoved.Add(float64(result.MigratedCount))
	s.logger.Info("account created",
		zap.Int("user_id", request.UserID),
		zap.Int("migrated_sessions", result.MigratedCount),
	)
	return result, nil
}

// MigrateGuestActivity folds the guest sessions bearing the token into an existing account
//
// Calling it again with the same token finds no guest session and returns a zero count with
// the account unchanged.
//
// "userID" parameter is the ID of the account receiving the sessions.
// "request" carries the guest token.
//
// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
func (s *accountService) MigrateGuestActivity(ctx context.Context, userID int, request models.MigrationRequest) (*models.MigrationResult, error) {
	if userID <= 0 {
		return nil, validationUserID()
	}
	if err := validateStruct(s.validate, request); err != nil {
		return nil, err
	}

	var result *models.MigrationResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		migrated, err := s.migrate(ctx, userID, request.GuestToken)
		if err != nil {
			return err
		}
		result = migrated
		return nil
	})
	if err != nil {
		s.metrics.TxFailures.WithLabelValues("migrate_guest").Inc()
		s.logger.Warn("guest migration failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.metrics.GuestSessionsMoved.Add(float64(result.MigratedCount))
	s.logger.Info("guest activity migrated", zap.Int("user_id", userID), zap.Int("migrated_sessions", result.MigratedCount))
	return result, nil
}

// migrate must run inside a transaction.
//
// Guest session rows are taken first by the reassignment, then daily rows in date order, then
// the account row, which is the order every completion transaction uses too.
func (s *accountService) migrate(ctx context.Context, userID int, guestToken string) (*models.MigrationResult, error) {
	migrationID := s.newID()
	count, err := s.sessions.ReassignGuestSessions(ctx, auth.HashGuestToken(guestToken), userID, migrationID)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		account, err := s.accounts.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.rules.project(account)
		return &models.MigrationResult{MigratedCount: 0, Account: account}, nil
	}

	sessions, err := s.sessions.ListByMigrationID(ctx, migrationID)
	if err != nil {
		return nil, err
	}

	delta, days := s.summarizeMigrated(userID, sessions)
	for _, day := range days {
		if err := s.daily.AddDelta(ctx, day); err != nil {
			return nil, err
		}
	}

	account, err := s.accounts.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.rules.applyDelta(account, delta)
	if err := s.accounts.UpdateCounters(ctx, account); err != nil {
		return nil, err
	}

	return &models.MigrationResult{MigratedCount: count, Account: account}, nil
}

// summarizeMigrated builds the account delta and the per-day daily progress deltas of the
// migrated sessions. Days are returned oldest first.
func (s *accountService) summarizeMigrated(userID int, sessions []models.StudySession) (models.CounterDelta, []*models.DailyProgress) {
	var delta models.CounterDelta
	totalSeconds := 0
	byDay := make(map[calendar.Date]*models.DailyProgress)

	for _, session := range sessions {
		delta.XP += session.SessionXP
		totalSeconds += session.DurationSeconds
		if session.Status != models.SessionStatusCompleted {
			continue
		}

		answers := session.CorrectCount + session.IncorrectCount
		delta.DecksCompleted++
		delta.CorrectAnswers += session.CorrectCount
		delta.Answers += answers

		date := calendar.Of(session.StartedAt, s.rules.Location)
		day, ok := byDay[date]
		if !ok {
			day = &models.DailyProgress{UserID: userID, Date: date}
			byDay[date] = day
		}
		day.CardsStudied += answers
		day.TimeSpentMinutes += session.Minutes()
		day.XPEarned += session.SessionXP
	}
	delta.Minutes = totalSeconds / 60

	days := make([]*models.DailyProgress, 0, len(byDay))
	for _, day := range byDay {
		days = append(days, day)
	}
	slices.SortFunc(days, func(a, b *models.DailyProgress) int {
		return a.Date.DaysSince(b.Date)
	})
	return delta, days
}

// GetProgress returns the account summary of the user with the level fields projected on read
//
// If the account does not exist, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
func (s *accountService) GetProgress(ctx context.Context, userID int) (*models.ProgressSummary, error) {
	if userID <= 0 {
		return nil, validationUserID()
	}

	account, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.rules.project(account)

	today := calendar.Of(s.now(), s.rules.Location)
	recent, err := s.daily.ListRange(ctx, userID, today.AddDays(-(recentDays - 1)), today)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []models.DailyProgress{}
	}

	return &models.ProgressSummary{Account: account, Recent: recent}, nil
}
