package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/studycards/backend/internal/config"
	"github.com/studycards/backend/internal/leveling"
	"github.com/studycards/backend/internal/mastery"
	"github.com/studycards/backend/internal/models"
)

// Rules holds the configurable learning-activity rules shared by the services
type Rules struct {
	Curve              leveling.Curve
	Policy             mastery.Policy
	XPPerCorrectAnswer int
	CompletionBonusXP  int
	// Location is the canonical timezone every calendar date is computed in
	Location *time.Location
}

// NewRules builds the rules from the engine configuration
func NewRules(cfg config.EngineConfig) (Rules, error) {
	curve, err := leveling.NewCurve(cfg.BaseXPForLevel)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid level curve: %w", err)
	}
	policy, err := mastery.NewThresholdPolicy(cfg.MasteryReviewingAfter, cfg.MasteryMasteredAfter)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid mastery thresholds: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return Rules{
		Curve:              curve,
		Policy:             policy,
		XPPerCorrectAnswer: cfg.XPPerCorrectAnswer,
		CompletionBonusXP:  cfg.SessionCompletionBonusXP,
		Location:           loc,
	}, nil
}

// SessionXP returns the XP a completed session earns. The completion bonus requires at least
// one answer.
func (r Rules) SessionXP(correct, answers int) int {
	if answers == 0 {
		return 0
	}
	return correct*r.XPPerCorrectAnswer + r.CompletionBonusXP
}

// applyDelta adds delta to the account counters and re-projects the level fields
func (r Rules) applyDelta(account *models.Account, delta models.CounterDelta) {
	account.TotalXP += delta.XP
	account.TotalTimeSpent += delta.Minutes
	account.TotalCardsLearned += delta.CardsLearned
	account.TotalDecksCompleted += delta.DecksCompleted
	account.TotalCorrectAnswers += delta.CorrectAnswers
	account.TotalAnswers += delta.Answers
	r.project(account)
}

// project rewrites the derived level fields of account from its TotalXP
func (r Rules) project(account *models.Account) {
	p := r.Curve.Project(account.TotalXP)
	account.Level = p.Level
	account.CurrentXP = p.CurrentXP
	account.NextLevelXP = p.NextLevelXP
}

// validateStruct runs the validator and maps failures to apperrors.ErrValidation
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return apperrors.Validation("%s failed on the %q rule", fe.Namespace(), fe.Tag())
	}
	return apperrors.Validation("%s", fmt.Sprint(err))
}

func validationUserID() error {
	return apperrors.Validation("user id must be positive")
}
