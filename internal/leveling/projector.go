// Package leveling derives level display fields from cumulative XP.
//
// The curve is linear in the level: leaving level L costs base*L XP, so reaching level 2
// costs base, level 3 costs base+2*base and so on. Only total XP is ever persisted as the
// source of truth; level, current XP and next-level XP are always recomputed from it.
package leveling

import (
	"fmt"

	"github.com/studycards/backend/internal/apperrors"
)

// Curve is an immutable leveling configuration
type Curve struct {
	baseXP int
}

// Projection holds the derived level fields
type Projection struct {
	Level       int `json:"level"`
	CurrentXP   int `json:"currentXp"`
	NextLevelXP int `json:"nextLevelXp"`
}

// NewCurve creates a curve where baseXPForLevel is the XP required to reach level 2
func NewCurve(baseXPForLevel int) (Curve, error) {
	if baseXPForLevel <= 0 {
		return Curve{}, fmt.Errorf("base XP for level must be positive, got %d", baseXPForLevel)
	}
	return Curve{baseXP: baseXPForLevel}, nil
}

// BaseXP returns the XP required to reach level 2
func (c Curve) BaseXP() int {
	return c.baseXP
}

// XPToLeave returns the XP needed to go from level to level+1
func (c Curve) XPToLeave(level int) int {
	return c.baseXP * level
}

// Project derives the level fields for totalXP.
//
// It panics with an apperrors.ErrInvariantViolation value when the curve is unusable or the
// result breaks 0 <= currentXP < nextLevelXP.
func (c Curve) Project(totalXP int) Projection {
	if c.baseXP <= 0 {
		panic(apperrors.Invariant("leveling curve has non-positive base XP %d", c.baseXP))
	}
	if totalXP < 0 {
		panic(apperrors.Invariant("negative total XP %d", totalXP))
	}

	level := 1
	remaining := totalXP
	for remaining >= c.XPToLeave(level) {
		remaining -= c.XPToLeave(level)
		level++
	}

	p := Projection{
		Level:       level,
		CurrentXP:   remaining,
		NextLevelXP: c.XPToLeave(level),
	}
	if p.CurrentXP < 0 || p.CurrentXP >= p.NextLevelXP {
		panic(apperrors.Invariant("projection of %d XP gave currentXP %d, nextLevelXP %d", totalXP, p.CurrentXP, p.NextLevelXP))
	}
	return p
}
