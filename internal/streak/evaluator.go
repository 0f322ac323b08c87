// Package streak evaluates the consecutive-day study streak at an activity checkpoint
package streak

import (
	"github.com/studycards/backend/internal/calendar"
)

const (
	// MinMinutes is the minimum study time on the previous day that keeps a streak alive
	MinMinutes = 10
	// MinCorrectAnswers is the minimum number of correct answers on the previous day that keeps a streak alive
	MinCorrectAnswers = 20
)

// State is the persisted streak portion of an account
type State struct {
	Current        int
	Longest        int
	LastActiveDate *calendar.Date
}

// Activity is the aggregate study activity of one calendar day
type Activity struct {
	Minutes        int
	CorrectAnswers int
}

// Qualifies reports whether the activity is enough to carry the streak into the next day.
// Either threshold alone suffices.
func (a Activity) Qualifies() bool {
	return a.Minutes >= MinMinutes || a.CorrectAnswers >= MinCorrectAnswers
}

// Outcome describes what a checkpoint did to the streak
type Outcome string

const (
	OutcomeStarted   Outcome = "started"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeExtended  Outcome = "extended"
	OutcomeReset     Outcome = "reset"
)

// Decision is the result of Plan: either a final outcome or a request for yesterday's activity
type Decision struct {
	DaysDiff       int
	NeedsYesterday bool
}

// Plan inspects the state and tells the caller whether yesterday's aggregate is needed.
// Only a one-day gap needs it; every other case is decided by the dates alone.
func Plan(s State, today calendar.Date) Decision {
	if s.LastActiveDate == nil {
		return Decision{}
	}
	diff := today.DaysSince(*s.LastActiveDate)
	return Decision{DaysDiff: diff, NeedsYesterday: diff == 1}
}

// Evaluate computes the next state for today.
//
// yesterday is only read when the last activity was exactly one day ago. A last activity date
// in the future (clock skew) is treated like same-day activity.
func Evaluate(s State, today calendar.Date, yesterday Activity) (State, Outcome) {
	next := s
	var outcome Outcome

	switch {
	case s.LastActiveDate == nil:
		next.Current = 1
		outcome = OutcomeStarted
	default:
		diff := today.DaysSince(*s.LastActiveDate)
		switch {
		case diff <= 0:
			return s, OutcomeUnchanged
		case diff == 1 && yesterday.Qualifies():
			next.Current = s.Current + 1
			outcome = OutcomeExtended
		default:
			next.Current = 1
			outcome = OutcomeReset
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	d := today
	next.LastActiveDate = &d
	return next, outcome
}
