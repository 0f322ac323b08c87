package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/studycards/backend/internal/apperrors"
	"go.uber.org/zap"
)

type txKey struct{}

// Store opens the transactions every multi-step write of the engine runs in
type Store struct {
	db      *sqlx.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewStore creates a new Store.
// "timeout" bounds every transaction; zero disables the bound.
func NewStore(db *sqlx.DB, logger *zap.Logger, timeout time.Duration) *Store {
	return &Store{
		db:      db,
		logger:  logger,
		timeout: timeout,
	}
}

// Method WithinTx runs fn inside a single READ COMMITTED transaction.
//
// Repository calls made with the context passed to fn join the transaction. The transaction is
// committed when fn returns nil and rolled back when fn returns an error, panics or the timeout
// expires. A nested call joins the outer transaction instead of opening a new one.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return apperrors.Storage("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		s.rollback(tx)
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, apperrors.ErrStorage) {
			return apperrors.Storage("complete transaction", ctxErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Error(err))
		return apperrors.Storage("commit transaction", err)
	}
	return nil
}

func (s *Store) rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Error("failed to rollback transaction", zap.Error(err))
	}
}

// executor returns the transaction carried by ctx, or the pool when there is none
func executor(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// inTx reports whether ctx carries a transaction opened by WithinTx
func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return ok
}
