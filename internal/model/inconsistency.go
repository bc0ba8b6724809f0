package model

import (
	"errors"
	"time"
)

// Operations recorded when a best-effort step leaves the store inconsistent.
const (
	OpCascadeComments     = "cascade_comments"
	OpCascadePortfolio    = "cascade_portfolio"
	OpCascadeJobs         = "cascade_jobs"
	OpCascadeApplications = "cascade_applications"
	OpCommentLink         = "comment_link"
	OpCommentUnlink       = "comment_unlink"
)

// Inconsistency is the queryable record operators use to reconcile orphans.
type Inconsistency struct {
	ID         int64      `db:"id" json:"id"`
	Operation  string     `db:"operation" json:"operation"`
	AccountID  int64      `db:"account_id" json:"account_id"`
	ResourceID *int64     `db:"resource_id" json:"resource_id,omitempty"` // portfolio for cascade_portfolio, comment for link/unlink
	Detail     string     `db:"detail" json:"detail"`
	Attempts   int        `db:"attempts" json:"attempts"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// IsResolved returns true once the worker or an operator has reconciled the record.
func (i *Inconsistency) IsResolved() bool {
	return i.ResolvedAt != nil
}

// MaxRepairAttempts bounds automatic repair of one record. Records past the
// limit stay unresolved for an operator.
const MaxRepairAttempts = 5

var (
	ErrInconsistencyNotFound   = errors.New("inconsistency not found")
	ErrRepairAttemptsExhausted = errors.New("repair attempts exhausted")
)
