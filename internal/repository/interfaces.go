package repository

import (
	"context"

	"workfolio/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateAccount(ctx context.Context, id int64, username, phoneNumber string) error
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
	// CreateProfile sets the profile only if none exists (ErrProfileExists otherwise).
	CreateProfile(ctx context.Context, id int64, profile *model.Profile) error
	// UpdateProfile replaces an existing profile (ErrProfileNotFound if none).
	UpdateProfile(ctx context.Context, id int64, profile *model.Profile) error
	AppendFriend(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *model.Portfolio) error
	GetByID(ctx context.Context, id int64) (*model.Portfolio, error)
	GetByTitle(ctx context.Context, title string) (*model.Portfolio, error)
	GetByAuthorID(ctx context.Context, authorID int64) (*model.Portfolio, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	List(ctx context.Context, limit int) ([]model.Portfolio, error)
	Update(ctx context.Context, portfolio *model.Portfolio) error
	// AppendComment adds commentID to the ordered reference list unless already present.
	// Returns false when the reference was already there.
	AppendComment(ctx context.Context, portfolioID, commentID int64) (bool, error)
	// RemoveComments strips the given references from every portfolio, preserving order.
	RemoveComments(ctx context.Context, commentIDs []int64) error
	DeleteByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Comment, error)
	Update(ctx context.Context, id int64, body string) (*model.Comment, error)
	Delete(ctx context.Context, id int64) error
	ListIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error)
	DeleteByAuthor(ctx context.Context, authorID int64) (int64, error)
	DeleteByPortfolio(ctx context.Context, portfolioID int64) (int64, error)
}

type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id int64) (*model.Job, error)
	GetByTitle(ctx context.Context, title string) (*model.Job, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	List(ctx context.Context, limit int) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, id int64) error
	// AddApplicant adds userID to the applicant set; false if already present.
	AddApplicant(ctx context.Context, jobID, userID int64) (bool, error)
	RemoveApplicant(ctx context.Context, userID int64) (int64, error)
	DeleteByPoster(ctx context.Context, posterID int64) (int64, error)
}

type InconsistencyRepository interface {
	Create(ctx context.Context, rec *model.Inconsistency) error
	GetByID(ctx context.Context, id int64) (*model.Inconsistency, error)
	ListUnresolved(ctx context.Context, limit int) ([]model.Inconsistency, error)
	IncrementAttempts(ctx context.Context, id int64) error
	Resolve(ctx context.Context, id int64) error
}
