package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/observability"
	"workfolio/internal/repository"
)

// Authorizer decides whether a principal may mutate a resource. Decisions
// compare stable account ids, never display names. A missing resource is a
// denial with the same message a non-owner gets.
type Authorizer struct {
	users      repository.UserRepository
	portfolios repository.PortfolioRepository
	comments   repository.CommentRepository
	jobs       repository.JobRepository
	log        *zap.Logger
}

func NewAuthorizer(
	users repository.UserRepository,
	portfolios repository.PortfolioRepository,
	comments repository.CommentRepository,
	jobs repository.JobRepository,
	log *zap.Logger,
) *Authorizer {
	return &Authorizer{
		users:      users,
		portfolios: portfolios,
		comments:   comments,
		jobs:       jobs,
		log:        log,
	}
}

// AuthorizeAccount allows only the account itself.
func (a *Authorizer) AuthorizeAccount(ctx context.Context, p *model.Principal, username string) error {
	return a.decide(ctx, model.ResourceAccount, p, username, func() (int64, error) {
		u, err := a.users.GetByUsername(ctx, username)
		if err != nil {
			return 0, notFoundAs(err, model.ErrUserNotFound)
		}
		return u.ID, nil
	})
}

// AuthorizeProfile allows the author recorded on the profile. An account
// without a profile has nothing to authorize against.
func (a *Authorizer) AuthorizeProfile(ctx context.Context, p *model.Principal, username string) error {
	return a.decide(ctx, model.ResourceProfile, p, username, func() (int64, error) {
		u, err := a.users.GetByUsername(ctx, username)
		if err != nil {
			return 0, notFoundAs(err, model.ErrUserNotFound)
		}
		if !u.HasProfile() {
			return 0, errResourceMissing
		}
		return u.Profile.ProfileAuthor, nil
	})
}

func (a *Authorizer) AuthorizePortfolio(ctx context.Context, p *model.Principal, title string) error {
	return a.decide(ctx, model.ResourcePortfolio, p, title, func() (int64, error) {
		pf, err := a.portfolios.GetByTitle(ctx, title)
		if err != nil {
			return 0, notFoundAs(err, model.ErrPortfolioNotFound)
		}
		return pf.AuthorID, nil
	})
}

func (a *Authorizer) AuthorizeComment(ctx context.Context, p *model.Principal, commentID int64) error {
	return a.decide(ctx, model.ResourceComment, p, fmt.Sprint(commentID), func() (int64, error) {
		c, err := a.comments.GetByID(ctx, commentID)
		if err != nil {
			return 0, notFoundAs(err, model.ErrCommentNotFound)
		}
		return c.AuthorID, nil
	})
}

func (a *Authorizer) AuthorizeJob(ctx context.Context, p *model.Principal, jobTitle string) error {
	return a.decide(ctx, model.ResourceJob, p, jobTitle, func() (int64, error) {
		j, err := a.jobs.GetByTitle(ctx, jobTitle)
		if err != nil {
			return 0, notFoundAs(err, model.ErrJobNotFound)
		}
		return j.JobPosterID, nil
	})
}

var errResourceMissing = errors.New("resource missing")

// notFoundAs collapses the repository's not-found sentinel into errResourceMissing
// and passes every other error through.
func notFoundAs(err, notFound error) error {
	if errors.Is(err, notFound) {
		return errResourceMissing
	}
	return err
}

func (a *Authorizer) decide(ctx context.Context, resource string, p *model.Principal, key string, owner func() (int64, error)) error {
	if p == nil {
		observability.AuthzDecisions.WithLabelValues(resource, "deny").Inc()
		return model.ErrUnauthenticated
	}

	ownerID, err := owner()
	switch {
	case errors.Is(err, errResourceMissing):
		return a.deny(resource, p, key, "not found")
	case err != nil:
		observability.AuthzDecisions.WithLabelValues(resource, "error").Inc()
		a.log.Error("authorization lookup failed",
			zap.String("resource", resource),
			zap.String("key", key),
			zap.Int64("principal", p.ID),
			zap.Error(err))
		return fmt.Errorf("authorize %s: %w", resource, err)
	case ownerID != p.ID:
		return a.deny(resource, p, key, "not owner")
	}

	observability.AuthzDecisions.WithLabelValues(resource, "allow").Inc()
	a.log.Debug("authorization allowed",
		zap.String("resource", resource),
		zap.String("key", key),
		zap.Int64("principal", p.ID))
	return nil
}

func (a *Authorizer) deny(resource string, p *model.Principal, key, reason string) error {
	observability.AuthzDecisions.WithLabelValues(resource, "deny").Inc()
	a.log.Warn("authorization denied",
		zap.String("resource", resource),
		zap.String("key", key),
		zap.Int64("principal", p.ID),
		zap.String("reason", reason))
	return model.Deny(resource, reason)
}
