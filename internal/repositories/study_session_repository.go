package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/models"
	"go.uber.org/zap"
)

const sessionColumns = `id, user_id, is_guest, guest_token_hash, deck_id, status, started_at, completed_at,
	duration_seconds, correct_count, incorrect_count, session_xp, migration_id`

// activityAggregate sums sessions per calendar day. Minutes are summed per session so the
// result matches the minutes credited when each session completed.
const activityAggregate = `
	SELECT COUNT(*) AS sessions,
		COALESCE(SUM(duration_seconds), 0) AS duration_seconds,
		COALESCE(SUM(duration_seconds DIV 60), 0) AS minutes,
		COALESCE(SUM(correct_count), 0) AS correct_answers,
		COALESCE(SUM(correct_count + incorrect_count), 0) AS answers,
		COALESCE(SUM(session_xp), 0) AS xp
	FROM study_sessions
	WHERE user_id = ? AND started_at >= ? AND started_at < ?`

type studySessionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStudySessionRepository creates a new study session repository
func NewStudySessionRepository(db *sqlx.DB, logger *zap.Logger) *studySessionRepository {
	return &studySessionRepository{
		db:     db,
		logger: logger,
	}
}

// Method Create inserts a new in-progress session and sets its ID
func (r *studySessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	query := `
		INSERT INTO study_sessions (user_id, is_guest, guest_token_hash, deck_id, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		session.UserID, session.IsGuest, session.GuestTokenHash, session.DeckID, session.Status, session.StartedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("failed to create study session", zap.Int("deck_id", session.DeckID), zap.Error(err))
		return apperrors.Storage("create study session", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get study session id", zap.Error(err))
		return apperrors.Storage("get study session id", err)
	}
	session.ID = id

	return nil
}

// Method GetByIDForUpdate reads a session and locks its row until the surrounding transaction ends
func (r *studySessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.StudySession, error) {
	if !inTx(ctx) {
		return nil, errLockOutsideTx
	}

	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = ? FOR UPDATE`

	var session models.StudySession
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &session, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("study session")
	}
	if err != nil {
		r.logger.Error("failed to get study session", zap.Int64("session_id", id), zap.Error(err))
		return nil, apperrors.Storage("get study session", err)
	}
	return &session, nil
}

// Method Complete is the terminal write of a finished session.
// It only applies to an in-progress session and reports false when the session had
// already reached a terminal state.
func (r *studySessionRepository) Complete(ctx context.Context, session *models.StudySession) (bool, error) {
	query := `
		UPDATE study_sessions
		SET status = ?, completed_at = ?, duration_seconds = ?, correct_count = ?, incorrect_count = ?, session_xp = ?
		WHERE id = ? AND status = ?
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		models.SessionStatusCompleted, session.CompletedAt, session.DurationSeconds, session.CorrectCount,
		session.IncorrectCount, session.SessionXP, session.ID, models.SessionStatusInProgress,
	)
	if err != nil {
		r.logger.Error("failed to complete study session", zap.Int64("session_id", session.ID), zap.Error(err))
		return false, apperrors.Storage("complete study session", err)
	}

	return terminalApplied(result)
}

// Method Abandon moves an in-progress session to abandoned without crediting any activity
func (r *studySessionRepository) Abandon(ctx context.Context, id int64, durationSeconds int, at time.Time) (bool, error) {
	query := `
		UPDATE study_sessions
		SET status = ?, completed_at = ?, duration_seconds = ?
		WHERE id = ? AND status = ?
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		models.SessionStatusAbandoned, at.UTC(), durationSeconds, id, models.SessionStatusInProgress,
	)
	if err != nil {
		r.logger.Error("failed to abandon study session", zap.Int64("session_id", id), zap.Error(err))
		return false, apperrors.Storage("abandon study session", err)
	}

	return terminalApplied(result)
}

func terminalApplied(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Storage("get affected rows", err)
	}
	return rows == 1, nil
}

// Method ReassignGuestSessions moves every in-progress or completed guest session bearing
// the token digest to the account and stamps them with migrationID.
// Reassigned sessions no longer match the guest predicate, so a repeated call returns 0.
func (r *studySessionRepository) ReassignGuestSessions(ctx context.Context, tokenHash string, userID int, migrationID string) (int, error) {
	query := `
		UPDATE study_sessions
		SET user_id = ?, is_guest = FALSE, migration_id = ?
		WHERE guest_token_hash = ? AND user_id IS NULL AND is_guest = TRUE
			AND status IN (?, ?)
	`

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		userID, migrationID, tokenHash, models.SessionStatusInProgress, models.SessionStatusCompleted,
	)
	if err != nil {
		r.logger.Error("failed to reassign guest sessions", zap.Int("user_id", userID), zap.Error(err))
		return 0, apperrors.Storage("reassign guest sessions", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage("get affected rows", err)
	}
	return int(rows), nil
}

// Method ListByMigrationID returns the sessions reassigned by one migration, ordered by start time
func (r *studySessionRepository) ListByMigrationID(ctx context.Context, migrationID string) ([]models.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE migration_id = ? ORDER BY started_at, id`

	var sessions []models.StudySession
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &sessions, query, migrationID); err != nil {
		r.logger.Error("failed to list migrated sessions", zap.String("migration_id", migrationID), zap.Error(err))
		return nil, apperrors.Storage("list migrated sessions", err)
	}
	return sessions, nil
}

// Method SumActivityBetween aggregates every session of the user started in [start, end),
// whatever its status
func (r *studySessionRepository) SumActivityBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error) {
	return r.sumActivity(ctx, activityAggregate, userID, start.UTC(), end.UTC())
}

// Method SumCompletedBetween aggregates the completed sessions of the user started in [start, end)
func (r *studySessionRepository) SumCompletedBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error) {
	return r.sumActivity(ctx, activityAggregate+` AND status = ?`, userID, start.UTC(), end.UTC(), models.SessionStatusCompleted)
}

func (r *studySessionRepository) sumActivity(ctx context.Context, query string, userID int, args ...any) (*models.DayActivity, error) {
	var activity models.DayActivity
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &activity, query, append([]any{userID}, args...)...); err != nil {
		r.logger.Error("failed to aggregate session activity", zap.Int("user_id", userID), zap.Error(err))
		return nil, apperrors.Storage("aggregate session activity", err)
	}
	return &activity, nil
}

// Method ListUsersWithCompletedBetween returns the accounts owning at least one completed
// session started in [start, end)
func (r *studySessionRepository) ListUsersWithCompletedBetween(ctx context.Context, start, end time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT user_id
		FROM study_sessions
		WHERE user_id IS NOT NULL AND status = ? AND started_at >= ? AND started_at < ?
		ORDER BY user_id
	`

	var userIDs []int
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &userIDs, query, models.SessionStatusCompleted, start.UTC(), end.UTC()); err != nil {
		r.logger.Error("failed to list active users", zap.Time("start", start), zap.Error(err))
		return nil, apperrors.Storage("list active users", err)
	}
	return userIDs, nil
}
