package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stargate/internal/astronaut/store"
	dErrors "stargate/pkg/domain-errors"
	pstrings "stargate/pkg/platform/strings"
)

// DefaultTxTimeout applies when the caller's context has no deadline.
const DefaultTxTimeout = 5 * time.Second

// Tx runs units of work in database transactions. On Postgres each lock key
// takes a transaction-scoped advisory lock; SQLite serializes writers itself.
type Tx struct {
	store   *Store
	timeout time.Duration
}

func NewTx(s *Store) *Tx {
	return &Tx{store: s, timeout: DefaultTxTimeout}
}

func (t *Tx) RunInTx(ctx context.Context, lockKeys []string, fn func(s store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return t.txError(ctx, err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if t.store.dialect == Postgres {
		for _, k := range pstrings.SortedUnique(lockKeys) {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, k); err != nil {
				return t.txError(ctx, err, "acquire lock")
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if err := fn(t.store.withQuerier(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return t.txError(ctx, err, "commit transaction")
	}
	return nil
}

func (t *Tx) txError(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": context cancelled")
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ store.Tx = (*Tx)(nil)
