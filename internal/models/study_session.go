package models

import "time"

// SessionStatus is the lifecycle state of a study session
type SessionStatus string

// SessionStatus constants
const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// StudySession is one study attempt over a deck
//
// A guest session has a nil UserID, IsGuest set and a guest token digest. Migration sets UserID,
// clears IsGuest and stamps MigrationID; the guest token digest is kept so a client that still
// holds the token can finish a session it started before registering.
type StudySession struct {
	ID              int64         `json:"id" db:"id"`
	UserID          *int          `json:"userId,omitempty" db:"user_id"`
	IsGuest         bool          `json:"isGuest" db:"is_guest"`
	GuestTokenHash  *string       `json:"-" db:"guest_token_hash"`
	DeckID          int           `json:"deckId" db:"deck_id"`
	Status          SessionStatus `json:"status" db:"status"`
	StartedAt       time.Time     `json:"startedAt" db:"started_at"`
	CompletedAt     *time.Time    `json:"completedAt,omitempty" db:"completed_at"`
	DurationSeconds int           `json:"durationSeconds" db:"duration_seconds"`
	CorrectCount    int           `json:"correctCount" db:"correct_count"`
	IncorrectCount  int           `json:"incorrectCount" db:"incorrect_count"`
	SessionXP       int           `json:"sessionXp" db:"session_xp"`
	MigrationID     *string       `json:"-" db:"migration_id"`
}

// Minutes returns the whole minutes of study time the session contributes
func (s *StudySession) Minutes() int {
	return s.DurationSeconds / 60
}

// StartSessionRequest represents a request to start a study session
type StartSessionRequest struct {
	DeckID int `json:"deckId" validate:"required,gt=0"`
}

// StartSessionResult is returned when a session is started
type StartSessionResult struct {
	SessionID  int64  `json:"sessionId"`
	GuestToken string `json:"guestToken,omitempty"`
}

// AnswerOutcome is the result of a single card answer inside a session
type AnswerOutcome struct {
	CardID  int  `json:"cardId" validate:"required,gt=0"`
	Correct bool `json:"correct"`
}

// SessionCompletion is the terminal event of a study session
type SessionCompletion struct {
	DurationSeconds int             `json:"durationSeconds" validate:"gte=0,lte=86400"`
	Answers         []AnswerOutcome `json:"answers" validate:"max=1000,dive"`
}

// CompletionResult reports the effect of a session completion
//
// Applied is false when the session had already reached a terminal state.
type CompletionResult struct {
	SessionID    int64 `json:"sessionId"`
	Applied      bool  `json:"applied"`
	SessionXP    int   `json:"sessionXp"`
	CardsLearned int   `json:"cardsLearned"`
}

// SessionOwner identifies the caller acting on a session: an account or a guest token
type SessionOwner struct {
	UserID     int
	GuestToken string
}

// IsGuest reports whether the owner is an anonymous guest
func (o SessionOwner) IsGuest() bool {
	return o.UserID == 0
}
