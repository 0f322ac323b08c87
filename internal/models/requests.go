package models

import "github.com/studycards/backend/internal/calendar"

// LoginRequest is sent by the auth layer when a user logs in
type LoginRequest struct {
	UserID int `json:"userId" validate:"required,gt=0"`
}

// CreateAccountRequest is sent by the auth layer right after a user registers
//
// GuestToken is optional. When present the guest's sessions are migrated in the same transaction.
type CreateAccountRequest struct {
	UserID     int    `json:"userId" validate:"required,gt=0"`
	GuestToken string `json:"guestToken,omitempty" validate:"omitempty,max=128"`
}

// MigrationRequest asks to fold a guest's sessions into an existing account
type MigrationRequest struct {
	GuestToken string `json:"guestToken" validate:"required,max=128"`
}

// AbandonRequest is the terminal event of a session the user gave up on
type AbandonRequest struct {
	DurationSeconds int `json:"durationSeconds" validate:"gte=0,lte=86400"`
}

// AbandonResult reports whether the abandon was applied
type AbandonResult struct {
	SessionID int64 `json:"sessionId"`
	Applied   bool  `json:"applied"`
}

// ProgressSummary is the account view returned to the owning user
type ProgressSummary struct {
	Account *Account        `json:"account"`
	Recent  []DailyProgress `json:"recent"`
}

// ReconcileReport summarizes one reconciliation run
type ReconcileReport struct {
	Date      calendar.Date `json:"date"`
	Users     int           `json:"users"`
	Corrected int           `json:"corrected"`
	Failed    int           `json:"failed"`
}
