package services

import (
	"context"
	"time"

	"github.com/studycards/backend/internal/calendar"
	"github.com/studycards/backend/internal/models"
)

// Transactor runs a unit of work in a single transaction
type Transactor interface {
	// Method WithinTx runs fn in a transaction that is committed when fn returns nil and rolled
	// back otherwise.
	//
	// Repository calls must use the context passed to fn to join the transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountRepository is the interface that wraps methods for Accounts table data access
type AccountRepository interface {
	// Method Create inserts a new account row.
	//
	// If the user already has an account, an error wrapping apperrors.ErrAlreadyExists will be returned.
	Create(ctx context.Context, account *models.Account) error
	// Method GetByID retrieves an account without locking it.
	//
	// If the account is not found, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByID(ctx context.Context, userID int) (*models.Account, error)
	// Method GetByIDForUpdate retrieves an account and locks its row until the transaction ends.
	//
	// Please reference GetByID method for error values.
	GetByIDForUpdate(ctx context.Context, userID int) (*models.Account, error)
	// Method UpdateStreak persists "streak", "longestStreak" and "lastActiveDate" of a locked account.
	UpdateStreak(ctx context.Context, userID int, streak, longestStreak int, lastActiveDate calendar.Date) error
	// Method UpdateCounters persists the cumulative counters and level projection of a locked account.
	UpdateCounters(ctx context.Context, account *models.Account) error
}

// StudySessionRepository is the interface that wraps methods for StudySessions table data access
type StudySessionRepository interface {
	// Method Create inserts an in-progress session and sets its ID.
	Create(ctx context.Context, session *models.StudySession) error
	// Method GetByIDForUpdate retrieves a session and locks its row until the transaction ends.
	//
	// If the session is not found, an error wrapping apperrors.ErrNotFound will be returned together with "nil" value.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.StudySession, error)
	// Method Complete writes the completion fields of an in-progress session.
	//
	// "false" is returned when the session was already completed or abandoned.
	Complete(ctx context.Context, session *models.StudySession) (bool, error)
	// Method Abandon moves an in-progress session to abandoned.
	//
	// "false" is returned when the session was already completed or abandoned.
	Abandon(ctx context.Context, id int64, durationSeconds int, at time.Time) (bool, error)
	// Method ReassignGuestSessions moves the in-progress and completed guest sessions bearing
	// "tokenHash" to the account and stamps them with "migrationID".
	//
	// The number of reassigned sessions is returned.
	ReassignGuestSessions(ctx context.Context, tokenHash string, userID int, migrationID string) (int, error)
	// Method ListByMigrationID retrieves the sessions reassigned by one migration.
	ListByMigrationID(ctx context.Context, migrationID string) ([]models.StudySession, error)
	// Method SumActivityBetween aggregates all sessions of the user started in ["start", "end").
	SumActivityBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error)
	// Method SumCompletedBetween aggregates the completed sessions of the user started in ["start", "end").
	SumCompletedBetween(ctx context.Context, userID int, start, end time.Time) (*models.DayActivity, error)
	// Method ListUsersWithCompletedBetween retrieves the accounts with a completed session started in ["start", "end").
	ListUsersWithCompletedBetween(ctx context.Context, start, end time.Time) ([]int, error)
}

// DailyProgressRepository is the interface that wraps methods for DailyProgress table data access
type DailyProgressRepository interface {
	// Method AddDelta adds "delta" to the (user, date) row, creating it when missing.
	AddDelta(ctx context.Context, delta *models.DailyProgress) error
	// Method RaiseTo lifts the (user, date) row to at least "floor".
	//
	// "true" is returned when the row was created or changed.
	RaiseTo(ctx context.Context, floor *models.DailyProgress) (bool, error)
	// Method ListRange retrieves the user's rows for dates in ["from", "to"], oldest first.
	ListRange(ctx context.Context, userID int, from, to calendar.Date) ([]models.DailyProgress, error)
}

// CardProgressRepository is the interface that wraps methods for CardProgress table data access
type CardProgressRepository interface {
	// Method LockForUser creates missing rows for "cardIDs" as new and locks all of them until
	// the transaction ends.
	//
	// "cardIDs" must be sorted ascending.
	LockForUser(ctx context.Context, userID int, cardIDs []int) ([]models.CardProgress, error)
	// Method UpdateBatch persists the status and counters of locked rows.
	UpdateBatch(ctx context.Context, progress []models.CardProgress) error
}
