package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"workfolio/internal/model"
)

const portfolioColumns = `id, title, description, tags, images, url, author, author_id, comment_ids, created_at, updated_at`

const (
	portfolioTitleKey  = "portfolios_title_key"
	portfolioAuthorKey = "portfolios_author_id_key"
)

type portfolioRepository struct {
	base
}

func NewPortfolioRepository(db *sqlx.DB, timeout time.Duration) PortfolioRepository {
	return &portfolioRepository{base: newBase(db, timeout, "portfolios")}
}

// Create inserts a portfolio. The title and author unique constraints are the
// authority when two creates race past the service-level checks.
func (r *portfolioRepository) Create(ctx context.Context, p *model.Portfolio) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO portfolios (title, description, tags, images, url, author, author_id, comment_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '{}')
		RETURNING id, comment_ids, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		p.Title, p.Description, p.Tags, p.Images, p.URL, p.Author, p.AuthorID)
	if err := row.Scan(&p.ID, &p.CommentIDs, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return r.conflictOr(ctx, "insert portfolio", err)
	}
	return nil
}

func (r *portfolioRepository) conflictOr(ctx context.Context, op string, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		if constraint == portfolioAuthorKey {
			return model.ErrPortfolioExists
		}
		return model.ErrPortfolioTitleTaken
	}
	return r.storeErr(ctx, op, err)
}

func (r *portfolioRepository) get(ctx context.Context, op, where string, arg interface{}) (*model.Portfolio, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var p model.Portfolio
	err := r.db.GetContext(ctx, &p, `SELECT `+portfolioColumns+` FROM portfolios WHERE `+where, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, r.storeErr(ctx, op, err)
	}
	return &p, nil
}

func (r *portfolioRepository) GetByID(ctx context.Context, id int64) (*model.Portfolio, error) {
	return r.get(ctx, "get portfolio", `id = $1`, id)
}

func (r *portfolioRepository) GetByTitle(ctx context.Context, title string) (*model.Portfolio, error) {
	return r.get(ctx, "get portfolio by title", `title = $1`, title)
}

func (r *portfolioRepository) GetByAuthorID(ctx context.Context, authorID int64) (*model.Portfolio, error) {
	return r.get(ctx, "get portfolio by author", `author_id = $1`, authorID)
}

func (r *portfolioRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM portfolios WHERE title = $1)`, title)
	if err != nil {
		return false, r.storeErr(ctx, "check portfolio title", err)
	}
	return exists, nil
}

// List returns the newest portfolios first.
func (r *portfolioRepository) List(ctx context.Context, limit int) ([]model.Portfolio, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	portfolios := []model.Portfolio{}
	err := r.db.SelectContext(ctx, &portfolios,
		`SELECT `+portfolioColumns+` FROM portfolios ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, r.storeErr(ctx, "list portfolios", err)
	}
	return portfolios, nil
}

// Update writes the editable fields. Author and comment references are never touched here.
func (r *portfolioRepository) Update(ctx context.Context, p *model.Portfolio) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE portfolios
		SET title = $2, description = $3, tags = $4, images = $5, url = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.GetContext(ctx, &p.UpdatedAt, query, p.ID, p.Title, p.Description, p.Tags, p.Images, p.URL)
	if err == sql.ErrNoRows {
		return model.ErrPortfolioNotFound
	}
	if err != nil {
		return r.conflictOr(ctx, "update portfolio", err)
	}
	return nil
}

// AppendComment appends commentID in one statement; the ANY guard makes a
// replayed append a no-op.
func (r *portfolioRepository) AppendComment(ctx context.Context, portfolioID, commentID int64) (bool, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE portfolios
		SET comment_ids = array_append(comment_ids, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(comment_ids))
	`, portfolioID, commentID)
	if err != nil {
		return false, r.storeErr(ctx, "append comment reference", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM portfolios WHERE id = $1)`, portfolioID); err != nil {
		return false, r.storeErr(ctx, "check portfolio existence", err)
	}
	if !exists {
		return false, model.ErrPortfolioNotFound
	}
	return false, nil
}

func (r *portfolioRepository) RemoveComments(ctx context.Context, commentIDs []int64) error {
	if len(commentIDs) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE portfolios
		SET comment_ids = ARRAY(
			SELECT c FROM unnest(comment_ids) WITH ORDINALITY AS t(c, ord)
			WHERE c <> ALL($1::bigint[])
			ORDER BY ord
		)
		WHERE comment_ids && $1::bigint[]
	`, pq.Array(commentIDs))
	if err != nil {
		return r.storeErr(ctx, "remove comment references", err)
	}
	return nil
}

func (r *portfolioRepository) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM portfolios WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, r.storeErr(ctx, "delete portfolio by author", err)
	}
	return res.RowsAffected()
}
