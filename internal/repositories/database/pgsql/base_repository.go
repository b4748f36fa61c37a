package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so read helpers work in and out of a unit.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PostgreSQL error codes the ledger reacts to.
const (
	pgUniqueViolation      = "23505"
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// readOnly runs fn in a REPEATABLE READ, READ ONLY transaction so multi-statement
// reads see one committed snapshot. Postgres readers take no row locks.
func (r *BaseRepository) readOnly(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return classifyError(err, "begin read transaction")
	}
	defer rollbackQuietly(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	return classifyError(tx.Commit(ctx), "commit read transaction")
}

func rollbackQuietly(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}

// classifyError maps driver failures onto the apperrors categories.
// The driver error stays in the chain for errors.As.
func classifyError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", apperrors.ErrNotFound, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceled:
			return fmt.Errorf("%w: %s: %w", apperrors.ErrTransient, op, err)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s: %w", apperrors.ErrDuplicate, op, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("%w: %s: %w", apperrors.ErrStorage, op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrTransient, op, err)
	}
	return fmt.Errorf("%w: %s: %w", apperrors.ErrStorage, op, err)
}

// lockTimeoutSetting renders d as a Postgres lock_timeout value.
func lockTimeoutSetting(d time.Duration) string {
	ms := d.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return fmt.Sprintf("%dms", ms)
}
