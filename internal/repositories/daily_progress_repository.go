package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

type dailyProgressRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewDailyProgressRepository creates a new daily progress repository
func NewDailyProgressRepository(db *sqlx.DB, logger *zap.Logger) *dailyProgressRepository {
	return &dailyProgressRepository{
		db:     db,
		logger: logger,
	}
}

// Method AddDelta folds a delta into the (user, date) row, creating it when missing.
//
// The merge happens inside the upsert under the row's key lock, so concurrent deltas for the
// same day commute and none is lost.
func (r *dailyProgressRepository) AddDelta(ctx context.Context, delta *models.DailyProgress) error {
	if delta.IsEmpty() {
		return nil
	}

	query := `
		INSERT INTO daily_progress (user_id, progress_date, cards_studied, cards_learned, time_spent_minutes, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			cards_studied = cards_studied + VALUES(cards_studied),
			cards_learned = cards_learned + VALUES(cards_learned),
			time_spent_minutes = time_spent_minutes + VALUES(time_spent_minutes),
			xp_earned = xp_earned + VALUES(xp_earned)
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		delta.UserID, delta.Date, delta.CardsStudied, delta.CardsLearned, delta.TimeSpentMinutes, delta.XPEarned,
	)
	if err != nil {
		r.logger.Error("failed to add daily progress",
			zap.Int("user_id", delta.UserID),
			zap.Stringer("date", delta.Date),
			zap.Error(err),
		)
		return apperrors.Storage("add daily progress", err)
	}

	return nil
}

// Method RaiseTo lifts the (user, date) row to at least the given floor.
// cards_studied, time_spent_minutes and xp_earned never decrease; cards_learned is
// left as recorded. Returns true when the row was inserted or changed.
func (r *dailyProgressRepository) RaiseTo(ctx context.Context, floor *models.DailyProgress) (bool, error) {
	query := `
		INSERT INTO daily_progress (user_id, progress_date, cards_studied, cards_learned, time_spent_minutes, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			cards_studied = GREATEST(cards_studied, VALUES(cards_studied)),
			time_spent_minutes = GREATEST(time_spent_minutes, VALUES(time_spent_minutes)),
			xp_earned = GREATEST(xp_earned, VALUES(xp_earned))
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		floor.UserID, floor.Date, floor.CardsStudied, floor.CardsLearned, floor.TimeSpentMinutes, floor.XPEarned,
	)
	if err != nil {
		r.logger.Error("failed to raise daily progress",
			zap.Int("user_id", floor.UserID),
			zap.Stringer("date", floor.Date),
			zap.Error(err),
		)
		return false, apperrors.Storage("raise daily progress", err)
	}

	// MySQL reports 1 for an insert, 2 for an update and 0 when the row already satisfied the floor
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Storage("get affected rows", err)
	}
	return rows > 0, nil
}

// Method ListRange returns the user's rows for dates in [from, to], oldest first
func (r *dailyProgressRepository) ListRange(ctx context.Context, userID int, from, to calendar.Date) ([]models.DailyProgress, error) {
	query := `
		SELECT user_id, progress_date, cards_studied, cards_learned, time_spent_minutes, xp_earned
		FROM daily_progress
		WHERE user_id = ? AND progress_date BETWEEN ? AND ?
		ORDER BY progress_date
	`

	var rows []models.DailyProgress
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, userID, from, to); err != nil {
		r.logger.Error("failed to list daily progress", zap.Int("user_id", userID), zap.Error(err))
		return nil, apperrors.Storage("list daily progress", err)
	}
	return rows, nil
}
