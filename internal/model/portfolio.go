package model

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Portfolio is the single work-sample collection an account may own.
// CommentIDs is the ordered list of comment references shown on the page.
type Portfolio struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Images      pq.StringArray `db:"images" json:"images"`
	URL         *string        `db:"url" json:"url,omitempty"`
	Author      string         `db:"author" json:"author"`
	AuthorID    int64          `db:"author_id" json:"author_id"`
	CommentIDs  pq.Int64Array  `db:"comment_ids" json:"comment_ids"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// HasComment reports whether commentID is already referenced.
func (p *Portfolio) HasComment(commentID int64) bool {
	for _, id := range p.CommentIDs {
		if id == commentID {
			return true
		}
	}
	return false
}

// PortfolioView is the portfolio page: the record, its author and its comments in list order.
type PortfolioView struct {
	Portfolio *Portfolio   `json:"portfolio"`
	Author    *UserSummary `json:"author,omitempty"`
	Comments  []Comment    `json:"comments"`
}

// CreatePortfolioRequest is the add-portfolio form. Tags is comma-delimited text.
type CreatePortfolioRequest struct {
	Title       string
	Description string
	Tags        string
	Images      []string
	URL         string
}

// UpdatePortfolioRequest carries the editable fields; nil means unchanged.
// Images is per slot: a nil entry keeps that slot, an empty one clears it.
type UpdatePortfolioRequest struct {
	Title       *string
	Description *string
	Tags        *string
	Images      []*string
	URL         *string
}

// Portfolio constraints
const (
	MaxPortfolioImages = 3
	MaxTitleLength     = 200
	ListPageSize       = 50
)

// Portfolio errors
var (
	ErrPortfolioNotFound   = errors.New("portfolio not found")
	ErrPortfolioTitleTaken = errors.New("portfolio title already exists")
	ErrPortfolioExists     = errors.New("account already has a portfolio")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title too long")
	ErrDescriptionRequired = errors.New("description is required")
)
