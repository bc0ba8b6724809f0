package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/repository"
)

type PortfolioService struct {
	portfolios  repository.PortfolioRepository
	comments    repository.CommentRepository
	users       repository.UserRepository
	consistency *ConsistencyManager
	log         *zap.Logger
}

func NewPortfolioService(
	portfolios repository.PortfolioRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	consistency *ConsistencyManager,
	log *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		portfolios:  portfolios,
		comments:    comments,
		users:       users,
		consistency: consistency,
		log:         log,
	}
}

// List returns the newest portfolios first.
func (s *PortfolioService) List(ctx context.Context) ([]model.Portfolio, error) {
	return s.portfolios.List(ctx, model.ListPageSize)
}

func (s *PortfolioService) GetByTitle(ctx context.Context, title string) (*model.Portfolio, error) {
	return s.portfolios.GetByTitle(ctx, title)
}

// Create builds the caller's portfolio. Tags and images are truncated to
// their bounds; the author is always the principal.
func (s *PortfolioService) Create(ctx context.Context, p *model.Principal, req *model.CreatePortfolioRequest) (*model.Portfolio, error) {
	if p == nil {
		return nil, model.ErrUnauthenticated
	}

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, model.ErrDescriptionRequired
	}

	portfolio := &model.Portfolio{
		Title:       title,
		Description: description,
		Tags:        model.SplitBounded(req.Tags, model.MaxBoundedItems),
		Images:      model.CapSequence(req.Images, model.MaxPortfolioImages),
		URL:         optionalString(req.URL),
		Author:      p.Username,
		AuthorID:    p.ID,
	}
	if err := s.consistency.CreatePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}

	s.log.Info("portfolio created", zap.Int64("portfolio_id", portfolio.ID), zap.Int64("author_id", p.ID))
	return portfolio, nil
}

// View loads the portfolio page. Comments come back in list order and
// references to deleted comments are skipped.
func (s *PortfolioService) View(ctx context.Context, title string) (*model.PortfolioView, error) {
	portfolio, err := s.portfolios.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.GetByIDs(ctx, portfolio.CommentIDs)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	view := &model.PortfolioView{Portfolio: portfolio, Comments: comments}
	author, err := s.users.GetByID(ctx, portfolio.AuthorID)
	switch {
	case err == nil:
		summary := author.Summary()
		view.Author = &summary
	case !errors.Is(err, model.ErrUserNotFound):
		return nil, err
	}
	return view, nil
}

// Update edits the portfolio named title. Nil fields are left unchanged.
func (s *PortfolioService) Update(ctx context.Context, title string, req *model.UpdatePortfolioRequest) (*model.Portfolio, error) {
	portfolio, err := s.portfolios.GetByTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		newTitle, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		if newTitle != portfolio.Title {
			taken, err := s.portfolios.ExistsByTitle(ctx, newTitle)
			if err != nil {
				return nil, fmt.Errorf("check portfolio title: %w", err)
			}
			if taken {
				return nil, model.ErrPortfolioTitleTaken
			}
			portfolio.Title = newTitle
		}
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, model.ErrDescriptionRequired
		}
		portfolio.Description = description
	}
	if req.Tags != nil {
		portfolio.Tags = model.SplitBounded(*req.Tags, model.MaxBoundedItems)
	}
	if req.Images != nil {
		portfolio.Images = mergeImageSlots(portfolio.Images, req.Images)
	}
	if req.URL != nil {
		portfolio.URL = optionalString(*req.URL)
	}

	if err := s.portfolios.Update(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// mergeImageSlots overwrites only the slots that were sent. Cleared slots
// are dropped, so the stored list stays dense.
func mergeImageSlots(current []string, slots []*string) []string {
	merged := make([]string, model.MaxPortfolioImages)
	copy(merged, current)
	for i, ref := range slots {
		if i == len(merged) {
			break
		}
		if ref != nil {
			merged[i] = *ref
		}
	}
	return model.CapSequence(merged, model.MaxPortfolioImages)
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", model.ErrTitleRequired
	}
	if len([]rune(title)) > model.MaxTitleLength {
		return "", model.ErrTitleTooLong
	}
	return title, nil
}

func optionalString(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}
