package models

// CardStatus is the learning state of a card for one user
type CardStatus string

// CardStatus constants
const (
	CardStatusNew       CardStatus = "new"
	CardStatusLearning  CardStatus = "learning"
	CardStatusReviewing CardStatus = "reviewing"
	CardStatusMastered  CardStatus = "mastered"
)

// CardProgress is a user's learning record for a single card
type CardProgress struct {
	UserID         int        `json:"userId" db:"user_id"`
	CardID         int        `json:"cardId" db:"card_id"`
	Status         CardStatus `json:"status" db:"status"`
	TimesSeen      int        `json:"timesSeen" db:"times_seen"`
	TimesCorrect   int        `json:"timesCorrect" db:"times_correct"`
	TimesIncorrect int        `json:"timesIncorrect" db:"times_incorrect"`
}
