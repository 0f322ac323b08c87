package leveling

import (
	"errors"
	"testing"

	"github.com/studycards/backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurve(t *testing.T) {
	tests := []struct {
		name        string
		base        int
		expectedErr bool
	}{
		{name: "default base", base: 100},
		{name: "base of one", base: 1},
		{name: "zero base", base: 0, expectedErr: true},
		{name: "negative base", base: -10, expectedErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve, err := NewCurve(tt.base)
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, curve.BaseXP())
		})
	}
}

func TestCurve_Project(t *testing.T) {
	curve, err := NewCurve(100)
	require.NoError(t, err)

	tests := []struct {
		name     string
		totalXP  int
		expected Projection
	}{
		{name: "no xp", totalXP: 0, expected: Projection{Level: 1, CurrentXP: 0, NextLevelXP: 100}},
		{name: "just below level 2", totalXP: 99, expected: Projection{Level: 1, CurrentXP: 99, NextLevelXP: 100}},
		{name: "exactly level 2", totalXP: 100, expected: Projection{Level: 2, CurrentXP: 0, NextLevelXP: 200}},
		{name: "inside level 2", totalXP: 250, expected: Projection{Level: 2, CurrentXP: 150, NextLevelXP: 200}},
		{name: "exactly level 3", totalXP: 300, expected: Projection{Level: 3, CurrentXP: 0, NextLevelXP: 300}},
		{name: "exactly level 4", totalXP: 600, expected: Projection{Level: 4, CurrentXP: 0, NextLevelXP: 400}},
		{name: "large total", totalXP: 4500, expected: Projection{Level: 10, CurrentXP: 0, NextLevelXP: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, curve.Project(tt.totalXP))
		})
	}
}

func TestCurve_Project_IsPure(t *testing.T) {
	curve, err := NewCurve(75)
	require.NoError(t, err)

	for xp := 0; xp < 5000; xp += 37 {
		first := curve.Project(xp)
		second := curve.Project(xp)
		assert.Equal(t, first, second)
		assert.Less(t, first.CurrentXP, first.NextLevelXP)
		assert.GreaterOrEqual(t, first.CurrentXP, 0)
	}
}

func TestCurve_Project_Monotonic(t *testing.T) {
	curve, err := NewCurve(50)
	require.NoError(t, err)

	previous := curve.Project(0)
	for xp := 1; xp < 3000; xp++ {
		current := curve.Project(xp)
		assert.GreaterOrEqual(t, current.Level, previous.Level)
		previous = current
	}
}

func TestCurve_Project_Panics(t *testing.T) {
	curve, err := NewCurve(100)
	require.NoError(t, err)

	tests := []struct {
		name    string
		curve   Curve
		totalXP int
	}{
		{name: "negative total", curve: curve, totalXP: -1},
		{name: "zero curve", curve: Curve{}, totalXP: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				panicErr, ok := r.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(panicErr, apperrors.ErrInvariantViolation))
			}()
			tt.curve.Project(tt.totalXP)
		})
	}
}
