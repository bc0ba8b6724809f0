package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"workfolio/internal/model"
)

const commentColumns = `id, portfolio_id, author_id, author, body, created_at, updated_at`

type commentRepository struct {
	base
}

func NewCommentRepository(db *sqlx.DB, timeout time.Duration) CommentRepository {
	return &commentRepository{base: newBase(db, timeout, "comments")}
}

// Create inserts a new comment. Linking it to the portfolio is a separate step.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO comments (portfolio_id, author_id, author, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query, c.PortfolioID, c.AuthorID, c.Author, c.Body)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return r.storeErr(ctx, "insert comment", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var c model.Comment
	err := r.db.GetContext(ctx, &c, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, r.storeErr(ctx, "get comment", err)
	}
	return &c, nil
}

// GetByIDs retrieves comments in the order of ids. Missing ids are skipped.
func (r *commentRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error) {
	if len(ids) == 0 {
		return []model.Comment{}, nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments,
		`SELECT `+commentColumns+` FROM comments WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, r.storeErr(ctx, "get comments by ids", err)
	}

	byID := make(map[int64]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	ordered := make([]model.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

func (r *commentRepository) Update(ctx context.Context, id int64, body string) (*model.Comment, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE comments
		SET body = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, id, body)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, r.storeErr(ctx, "update comment", err)
	}
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return r.storeErr(ctx, "delete comment", err)
	}
	return requireRow(res, model.ErrCommentNotFound)
}

func (r *commentRepository) ListIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	ids := []int64{}
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM comments WHERE author_id = $1 ORDER BY id`, authorID)
	if err != nil {
		return nil, r.storeErr(ctx, "list comment ids by author", err)
	}
	return ids, nil
}

func (r *commentRepository) DeleteByAuthor(ctx context.Context, authorID int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, r.storeErr(ctx, "delete comments by author", err)
	}
	return res.RowsAffected()
}

func (r *commentRepository) DeleteByPortfolio(ctx context.Context, portfolioID int64) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE portfolio_id = $1`, portfolioID)
	if err != nil {
		return 0, r.storeErr(ctx, "delete comments by portfolio", err)
	}
	return res.RowsAffected()
}
