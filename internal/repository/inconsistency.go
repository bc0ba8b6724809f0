package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"workfolio/internal/model"
)

const inconsistencyColumns = `id, operation, account_id, resource_id, detail, attempts, created_at, resolved_at`

type inconsistencyRepository struct {
	base
}

func NewInconsistencyRepository(db *sqlx.DB, timeout time.Duration) InconsistencyRepository {
	return &inconsistencyRepository{base: newBase(db, timeout, "inconsistencies")}
}

func (r *inconsistencyRepository) Create(ctx context.Context, rec *model.Inconsistency) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO inconsistencies (operation, account_id, resource_id, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, attempts, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, rec.Operation, rec.AccountID, rec.ResourceID, rec.Detail)
	if err := row.Scan(&rec.ID, &rec.Attempts, &rec.CreatedAt); err != nil {
		return r.storeErr(ctx, "insert inconsistency", err)
	}
	return nil
}

func (r *inconsistencyRepository) GetByID(ctx context.Context, id int64) (*model.Inconsistency, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var rec model.Inconsistency
	err := r.db.GetContext(ctx, &rec, `SELECT `+inconsistencyColumns+` FROM inconsistencies WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrInconsistencyNotFound
	}
	if err != nil {
		return nil, r.storeErr(ctx, "get inconsistency", err)
	}
	return &rec, nil
}

// ListUnresolved returns the oldest open records first.
func (r *inconsistencyRepository) ListUnresolved(ctx context.Context, limit int) ([]model.Inconsistency, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	recs := []model.Inconsistency{}
	err := r.db.SelectContext(ctx, &recs, `
		SELECT `+inconsistencyColumns+` FROM inconsistencies
		WHERE resolved_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, r.storeErr(ctx, "list unresolved inconsistencies", err)
	}
	return recs, nil
}

func (r *inconsistencyRepository) IncrementAttempts(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE inconsistencies SET attempts = attempts + 1 WHERE id = $1`, id)
	if err != nil {
		return r.storeErr(ctx, "increment inconsistency attempts", err)
	}
	return requireRow(res, model.ErrInconsistencyNotFound)
}

// Resolve marks the record reconciled. Resolving twice keeps the first timestamp.
func (r *inconsistencyRepository) Resolve(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE inconsistencies SET resolved_at = COALESCE(resolved_at, NOW()) WHERE id = $1`, id)
	if err != nil {
		return r.storeErr(ctx, "resolve inconsistency", err)
	}
	return requireRow(res, model.ErrInconsistencyNotFound)
}
