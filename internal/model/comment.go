package model

import (
	"errors"
	"time"
)

// Comment represents a comment on a portfolio.
type Comment struct {
	ID          int64     `db:"id" json:"id"`
	PortfolioID int64     `db:"portfolio_id" json:"portfolio_id"`
	AuthorID    int64     `db:"author_id" json:"author_id"`
	Author      string    `db:"author" json:"author"` // display name at creation time
	Body        string    `db:"body" json:"comment"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CommentView is the single-comment page.
type CommentView struct {
	Portfolio *Portfolio `json:"portfolio"`
	Comment   *Comment   `json:"comment"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
)
