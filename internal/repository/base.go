package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"workfolio/internal/model"
	"workfolio/internal/observability"
)

// DefaultTimeout is used when a repository is built with a zero timeout.
const DefaultTimeout = 5 * time.Second

const (
	pqUniqueViolation = "23505"
	pqQueryCanceled   = "57014"
)

// base carries the connection and the per-call deadline shared by every repository.
type base struct {
	db      *sqlx.DB
	timeout time.Duration
	table   string
}

func newBase(db *sqlx.DB, timeout time.Duration, table string) base {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return base{db: db, timeout: timeout, table: table}
}

// withTimeout bounds a single store round trip.
func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// storeErr wraps err with op and maps deadline overruns to model.ErrStoreUnavailable.
func (b base) storeErr(ctx context.Context, op string, err error) error {
	if isTimeout(ctx, err) {
		observability.StoreTimeouts.WithLabelValues(b.table).Inc()
		return fmt.Errorf("%s: %w", op, model.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqQueryCanceled {
		return errors.Is(ctx.Err(), context.DeadlineExceeded)
	}
	return false
}

// uniqueViolation returns the violated constraint name for Postgres error 23505.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
