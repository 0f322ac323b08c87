package models

import (
	"time"

	"github.com/studycards/backend/internal/calendar"
)

// Account holds a registered user's cumulative learning counters
//
// CurrentXP, NextLevelXP and Level are projections of TotalXP and are rewritten together with it.
type Account struct {
	UserID              int            `json:"userId" db:"user_id"`
	TotalXP             int            `json:"totalXp" db:"total_xp"`
	CurrentXP           int            `json:"currentXp" db:"current_xp"`
	NextLevelXP         int            `json:"nextLevelXp" db:"next_level_xp"`
	Level               int            `json:"level" db:"level"`
	Streak              int            `json:"streak" db:"streak"`
	LongestStreak       int            `json:"longestStreak" db:"longest_streak"`
	LastActiveDate      *calendar.Date `json:"lastActiveDate,omitempty" db:"last_active_date"`
	TotalTimeSpent      int            `json:"totalTimeSpent" db:"total_time_spent"` // minutes
	TotalCardsLearned   int            `json:"totalCardsLearned" db:"total_cards_learned"`
	TotalDecksCompleted int            `json:"totalDecksCompleted" db:"total_decks_completed"`
	TotalCorrectAnswers int            `json:"totalCorrectAnswers" db:"total_correct_answers"`
	TotalAnswers        int            `json:"totalAnswers" db:"total_answers"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time      `json:"updatedAt" db:"updated_at"`
}

// StreakResult is returned by a login checkpoint
type StreakResult struct {
	Streak        int `json:"streak"`
	LongestStreak int `json:"longestStreak"`
}

// CounterDelta is an additive change to an account's cumulative counters
type CounterDelta struct {
	XP             int
	Minutes        int
	CardsLearned   int
	DecksCompleted int
	CorrectAnswers int
	Answers        int
}

// IsZero reports whether the delta changes nothing
func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}

// MigrationResult is returned by guest activity migration
type MigrationResult struct {
	MigratedCount int      `json:"migratedCount"`
	Account       *Account `json:"account"`
}
