// Package mastery decides how a card's learning status moves after an answer
package mastery

import (
	"fmt"

	"github.com/studycards/backend/internal/models"
)

// Policy computes the status of a card after its counters were updated with one answer.
// Implementations must be deterministic.
type Policy interface {
	Next(progress models.CardProgress, correct bool) models.CardStatus
}

// ThresholdPolicy promotes cards on the net number of correct answers
// (timesCorrect - timesIncorrect).
//
//	new       -> learning   on the first answer
//	learning  -> reviewing  when net >= ReviewingAfter
//	reviewing -> mastered   when net >= MasteredAfter
//	mastered  -> reviewing  on an incorrect answer
//	reviewing -> learning   when net drops below ReviewingAfter
type ThresholdPolicy struct {
	ReviewingAfter int
	MasteredAfter  int
}

// NewThresholdPolicy validates the thresholds and creates the policy
func NewThresholdPolicy(reviewingAfter, masteredAfter int) (*ThresholdPolicy, error) {
	if reviewingAfter < 1 {
		return nil, fmt.Errorf("reviewing threshold must be at least 1, got %d", reviewingAfter)
	}
	if masteredAfter <= reviewingAfter {
		return nil, fmt.Errorf("mastered threshold %d must be greater than reviewing threshold %d", masteredAfter, reviewingAfter)
	}
	return &ThresholdPolicy{ReviewingAfter: reviewingAfter, MasteredAfter: masteredAfter}, nil
}

// Next implements Policy
func (p *ThresholdPolicy) Next(progress models.CardProgress, correct bool) models.CardStatus {
	net := progress.TimesCorrect - progress.TimesIncorrect

	switch progress.Status {
	case models.CardStatusMastered:
		if correct {
			return models.CardStatusMastered
		}
		return models.CardStatusReviewing
	case models.CardStatusReviewing:
		if net >= p.MasteredAfter {
			return models.CardStatusMastered
		}
		if net < p.ReviewingAfter {
			return models.CardStatusLearning
		}
		return models.CardStatusReviewing
	default:
		// new and learning cards
		if net >= p.MasteredAfter {
			return models.CardStatusMastered
		}
		if net >= p.ReviewingAfter {
			return models.CardStatusReviewing
		}
		return models.CardStatusLearning
	}
}

// Apply folds one answer into progress using the policy and reports whether the card became
// mastered with this answer
func Apply(p Policy, progress models.CardProgress, correct bool) (models.CardProgress, bool) {
	next := progress
	if next.Status == "" {
		next.Status = models.CardStatusNew
	}
	next.TimesSeen++
	if correct {
		next.TimesCorrect++
	} else {
		next.TimesIncorrect++
	}

	before := next.Status
	next.Status = p.Next(next, correct)
	return next, before != models.CardStatusMastered && next.Status == models.CardStatusMastered
}
