package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Lock waiters are bounded so contended upserts fail fast instead of
// piling up connections. 55P03 is Postgres lock_not_available.
const lockWaitTimeout = 3 * time.Second

// ErrLockTimeout is returned when a transaction could not acquire its
// row/advisory lock within lockWaitTimeout. Transient: the whole upsert is
// safe to retry.
var ErrLockTimeout = errors.New("timed out waiting for a concurrent write to finish")

// TxRunner runs a function inside a database transaction. WithinLockedTx
// additionally serializes on an advisory lock derived from key, which is
// how concurrent writers to the same (user, match, scope) tuple are forced
// into a strict order even before a row exists to lock.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error
	WithinLockedTx(ctx context.Context, key string, fn func(exec SQLExecutor) error) error
}

type sqlTxRunner struct {
	db *sql.DB
}

func NewSQLTxRunner(db *sql.DB) TxRunner {
	return &sqlTxRunner{db: db}
}

func (r *sqlTxRunner) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	return r.run(ctx, "", fn)
}

func (r *sqlTxRunner) WithinLockedTx(ctx context.Context, key string, fn func(exec SQLExecutor) error) error {
	return r.run(ctx, key, fn)
}

func (r *sqlTxRunner) run(ctx context.Context, lockKey string, fn func(exec SQLExecutor) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			err = translateLockError(err)
			return
		}
		err = tx.Commit()
	}()

	if lockKey != "" {
		// SET LOCAL cannot take a bind parameter; the value is a constant.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockWaitTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
		// hashtextextended collapses the key to the bigint the advisory
		// lock machinery needs; collisions only cost extra serialization.
		if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", lockKey); err != nil {
			return fmt.Errorf("failed to acquire advisory lock for %s: %w", lockKey, err)
		}
	}

	err = fn(tx)
	return err
}

func translateLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03": // lock_not_available
			return fmt.Errorf("%w: %v", ErrLockTimeout, err)
		case "40P01": // deadlock_detected
			return fmt.Errorf("%w: %v", ErrLockTimeout, err)
		}
	}
	return err
}
