package handler

import (
	"go.uber.org/zap"

	"workfolio/internal/service"
	"workfolio/internal/transport/http/middleware"
)

// Deps are the services the page handlers call.
type Deps struct {
	Sessions   *middleware.Sessions
	Log        *zap.Logger
	Users      *service.UserService
	Portfolios *service.PortfolioService
	Comments   *service.CommentService
	Jobs       *service.JobService
	Media      *service.MediaService // nil disables uploads
}

// Handlers groups every page handler for the router.
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Profile   *ProfileHandler
	Portfolio *PortfolioHandler
	Comment   *CommentHandler
	Job       *JobHandler
	Media     *MediaHandler
}

func New(d Deps) *Handlers {
	b := base{sessions: d.Sessions, log: d.Log}
	media := newMediaHandler(b, d.Media)
	return &Handlers{
		Auth:      newAuthHandler(b, d.Users, media),
		User:      newUserHandler(b, d.Users),
		Profile:   newProfileHandler(b, d.Users, media),
		Portfolio: newPortfolioHandler(b, d.Portfolios, media),
		Comment:   newCommentHandler(b, d.Comments, d.Portfolios),
		Job:       newJobHandler(b, d.Jobs),
		Media:     media,
	}
}
