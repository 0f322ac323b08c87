package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

type cardProgressRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewCardProgressRepository creates a new card progress repository
func NewCardProgressRepository(db *sqlx.DB, logger *zap.Logger) *cardProgressRepository {
	return &cardProgressRepository{
		db:     db,
		logger: logger,
	}
}

// Method LockForUser makes sure a row exists for every card and locks those rows until the
// surrounding transaction ends.
//
// Missing rows are created as "new" first: a FOR UPDATE read of an absent key takes no lock
// under READ COMMITTED, so two completions touching the same unseen card would otherwise race.
// "cardIDs" must be sorted so concurrent transactions lock rows in the same order.
func (r *cardProgressRepository) LockForUser(ctx context.Context, userID int, cardIDs []int) ([]models.CardProgress, error) {
	if !inTx(ctx) {
		return nil, errLockOutsideTx
	}
	if len(cardIDs) == 0 {
		return nil, nil
	}

	// Build a multi-row insert of placeholder rows
	placeholders := make([]string, len(cardIDs))
	args := make([]any, 0, len(cardIDs)*2)
	for i, cardID := range cardIDs {
		placeholders[i] = "(?, ?, 'new', 0, 0, 0)"
		args = append(args, userID, cardID)
	}
	ensure := `
		INSERT IGNORE INTO card_progress (user_id, card_id, status, times_seen, times_correct, times_incorrect)
		VALUES ` + strings.Join(placeholders, ", ")

	ext := executor(ctx, r.db)
	if _, err := ext.ExecContext(ctx, ensure, args...); err != nil {
		r.logger.Error("failed to ensure card progress rows", zap.Int("user_id", userID), zap.Error(err))
		return nil, apperrors.Storage("ensure card progress rows", err)
	}

	query, inArgs, err := sqlx.In(`
		SELECT user_id, card_id, status, times_seen, times_correct, times_incorrect
		FROM card_progress
		WHERE user_id = ? AND card_id IN (?)
		ORDER BY card_id
		FOR UPDATE`, userID, cardIDs)
	if err != nil {
		return nil, apperrors.Storage("build card progress query", err)
	}

	var progress []models.CardProgress
	if err := sqlx.SelectContext(ctx, ext, &progress, ext.Rebind(query), inArgs...); err != nil {
		r.logger.Error("failed to lock card progress", zap.Int("user_id", userID), zap.Error(err))
		return nil, apperrors.Storage("lock card progress", err)
	}
	return progress, nil
}

// Method UpdateBatch writes the counters and status of already locked rows in one statement
func (r *cardProgressRepository) UpdateBatch(ctx context.Context, progress []models.CardProgress) error {
	if len(progress) == 0 {
		return nil
	}

	placeholders := make([]string, len(progress))
	args := make([]any, 0, len(progress)*6)
	for i, p := range progress {
		placeholders[i] = "(?, ?, ?, ?, ?, ?)"
		args = append(args, p.UserID, p.CardID, p.Status, p.TimesSeen, p.TimesCorrect, p.TimesIncorrect)
	}

	query := `
		INSERT INTO card_progress (user_id, card_id, status, times_seen, times_correct, times_incorrect)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			times_seen = VALUES(times_seen),
			times_correct = VALUES(times_correct),
			times_incorrect = VALUES(times_incorrect)
	`

	if _, err := executor(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update card progress", zap.Int("count", len(progress)), zap.Error(err))
		return apperrors.Storage("update card progress", err)
	}
	return nil
}
