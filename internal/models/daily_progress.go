package models

import "github.com/studycards/backend/internal/calendar"

// DailyProgress is the per-user, per-day aggregate of study activity
type DailyProgress struct {
	UserID           int           `json:"-" db:"user_id"`
	Date             calendar.Date `json:"date" db:"progress_date"`
	CardsStudied     int           `json:"cardsStudied" db:"cards_studied"`
	CardsLearned     int           `json:"cardsLearned" db:"cards_learned"`
	TimeSpentMinutes int           `json:"timeSpentMinutes" db:"time_spent_minutes"`
	XPEarned         int           `json:"xpEarned" db:"xp_earned"`
}

// IsEmpty reports whether the row carries no activity
func (p DailyProgress) IsEmpty() bool {
	return p.CardsStudied == 0 && p.CardsLearned == 0 && p.TimeSpentMinutes == 0 && p.XPEarned == 0
}

// DayActivity is the aggregate of study sessions that started on one calendar day
type DayActivity struct {
	Sessions        int `db:"sessions"`
	DurationSeconds int `db:"duration_seconds"`
	Minutes         int `db:"minutes"` // sum of per-session whole minutes
	CorrectAnswers  int `db:"correct_answers"`
	Answers         int `db:"answers"`
	XP              int `db:"xp"`
}
