package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorage(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expectNil bool
	}{
		{name: "nil error", err: nil, expectNil: true},
		{name: "driver error", err: errors.New("connection refused")},
		{name: "deadline", err: context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Storage("query account", tt.err)
			if tt.expectNil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrStorage)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "failed to query account")
		})
	}
}

func TestStorage_WrappedTwice(t *testing.T) {
	err := fmt.Errorf("record login: %w", Storage("lock account", errors.New("lock wait timeout")))

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "lock account", storageErr.Op)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestValidation(t *testing.T) {
	err := Validation("guest token is required")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation error: guest token is required", err.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("account")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "account not found", err.Error())
}

func TestInvariant(t *testing.T) {
	err := Invariant("currentXP %d >= nextLevelXP %d", 120, 100)

	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), "120")
}
