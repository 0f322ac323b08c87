package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/studycards/backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTx(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		fn            func(ctx context.Context) error
		expectedError error
	}{
		{
			name: "commits on success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context) error {
				if !inTx(ctx) {
					return errors.New("no transaction in context")
				}
				return nil
			},
		},
		{
			name: "rolls back when fn fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context) error {
				return apperrors.NotFound("account")
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name: "begin failure is a storage error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("too many connections"))
			},
			fn: func(ctx context.Context) error {
				return nil
			},
			expectedError: apperrors.ErrStorage,
		},
		{
			name: "commit failure is a storage error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(errors.New("connection lost"))
			},
			fn: func(ctx context.Context) error {
				return nil
			},
			expectedError: apperrors.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger, cleanup := setupTestDB(t)
			defer cleanup()

			tt.setupMock(mock)
			store := NewStore(db, logger, 5*time.Second)

			err := store.WithinTx(context.Background(), tt.fn)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_WithinTx_RollsBackOnPanic(t *testing.T) {
	db, mock, logger, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()
	store := NewStore(db, logger, 0)

	assert.PanicsWithValue(t, "boom", func() {
		_ = store.WithinTx(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_NestedCallJoinsOuter(t *testing.T) {
	db, mock, logger, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE accounts`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	store := NewStore(db, logger, time.Second)

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return store.WithinTx(ctx, func(inner context.Context) error {
			_, err := executor(inner, db).ExecContext(inner, "UPDATE accounts SET streak = 1")
			return err
		})
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_ExpiredContext(t *testing.T) {
	db, mock, logger, cleanup := setupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()
	store := NewStore(db, logger, 0)

	ctx, cancel := context.WithCancel(context.Background())
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("interrupted")
	})

	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}
