package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestDB creates a sqlx handle over a mock database
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *zap.Logger, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")

	cleanup := func() {
		sqlxDB.Close()
	}

	return sqlxDB, mock, logger, cleanup
}

// txContext opens a mocked transaction and returns a context carrying it.
// Statement expectations are registered by setup between the begin and the final rollback.
func txContext(t *testing.T, db *sqlx.DB, mock sqlmock.Sqlmock, setup func(sqlmock.Sqlmock)) (context.Context, func()) {
	t.Helper()
	mock.ExpectBegin()
	setup(mock)
	mock.ExpectRollback()

	tx, err := db.Beginx()
	require.NoError(t, err)

	return context.WithValue(context.Background(), txKey{}, tx), func() {
		_ = tx.Rollback()
	}
}
