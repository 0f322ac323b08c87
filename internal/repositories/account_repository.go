package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the server error number for a primary or unique key collision
const mysqlDuplicateEntry = 1062

var errLockOutsideTx = errors.New("row lock requested outside of a transaction")

const accountColumns = `user_id, total_xp, current_xp, next_level_xp, level, streak, longest_streak,
	last_active_date, total_time_spent, total_cards_learned, total_decks_completed,
	total_correct_answers, total_answers, created_at, updated_at`

type accountRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sqlx.DB, logger *zap.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// Method Create inserts a new account row with its initial counters.
// Returns apperrors.ErrAlreadyExists when the user already has an account.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (user_id, total_xp, current_xp, next_level_xp, level, streak, longest_streak,
			last_active_date, total_time_spent, total_cards_learned, total_decks_completed,
			total_correct_answers, total_answers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		account.UserID, account.TotalXP, account.CurrentXP, account.NextLevelXP, account.Level,
		account.Streak, account.LongestStreak, account.LastActiveDate, account.TotalTimeSpent,
		account.TotalCardsLearned, account.TotalDecksCompleted, account.TotalCorrectAnswers,
		account.TotalAnswers,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("account for user %d %w", account.UserID, apperrors.ErrAlreadyExists)
		}
		r.logger.Error("failed to create account", zap.Int("user_id", account.UserID), zap.Error(err))
		return apperrors.Storage("create account", err)
	}

	return nil
}

// Method GetByID reads an account without locking it
func (r *accountRepository) GetByID(ctx context.Context, userID int) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ?`
	return r.get(ctx, query, userID)
}

// Method GetByIDForUpdate reads an account and locks its row until the surrounding
// transaction ends
func (r *accountRepository) GetByIDForUpdate(ctx context.Context, userID int) (*models.Account, error) {
	if !inTx(ctx) {
		return nil, errLockOutsideTx
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = ? FOR UPDATE`
	return r.get(ctx, query, userID)
}

func (r *accountRepository) get(ctx context.Context, query string, userID int) (*models.Account, error) {
	var account models.Account
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &account, query, userID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("account")
	}
	if err != nil {
		r.logger.Error("failed to get account", zap.Int("user_id", userID), zap.Error(err))
		return nil, apperrors.Storage("get account", err)
	}
	return &account, nil
}

// Method UpdateStreak persists the streak fields of an account.
// The row must be locked by the caller's transaction.
func (r *accountRepository) UpdateStreak(ctx context.Context, userID int, streak, longestStreak int, lastActiveDate calendar.Date) error {
	query := `
		UPDATE accounts
		SET streak = ?, longest_streak = ?, last_active_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`

	if _, err := executor(ctx, r.db).ExecContext(ctx, query, streak, longestStreak, lastActiveDate, userID); err != nil {
		r.logger.Error("failed to update streak", zap.Int("user_id", userID), zap.Error(err))
		return apperrors.Storage("update streak", err)
	}

	return nil
}

// Method UpdateCounters persists the cumulative counters and the level projection of an account.
// The row must be locked by the caller's transaction, so writing absolute values cannot lose
// a concurrent delta.
func (r *accountRepository) UpdateCounters(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET total_xp = ?, current_xp = ?, next_level_xp = ?, level = ?,
			total_time_spent = ?, total_cards_learned = ?, total_decks_completed = ?,
			total_correct_answers = ?, total_answers = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		account.TotalXP, account.CurrentXP, account.NextLevelXP, account.Level,
		account.TotalTimeSpent, account.TotalCardsLearned, account.TotalDecksCompleted,
		account.TotalCorrectAnswers, account.TotalAnswers, account.UserID,
	)
	if err != nil {
		r.logger.Error("failed to update account counters", zap.Int("user_id", account.UserID), zap.Error(err))
		return apperrors.Storage("update account counters", err)
	}

	return nil
}
