package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/repository"
)

type CommentService struct {
	commentRepo   repository.CommentRepository
	portfolioRepo repository.PortfolioRepository
	consistency   *ConsistencyManager
	log           *zap.Logger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	portfolioRepo repository.PortfolioRepository,
	consistency *ConsistencyManager,
	log *zap.Logger,
) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		portfolioRepo: portfolioRepo,
		consistency:   consistency,
		log:           log,
	}
}

func validateContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", model.ErrContentRequired
	}
	if len([]rune(content)) > model.MaxCommentLength {
		return "", model.ErrContentTooLong
	}
	return content, nil
}

// Create adds a comment by the principal to the portfolio named portfolioTitle.
func (s *CommentService) Create(ctx context.Context, p *model.Principal, portfolioTitle, body string) (*model.Comment, error) {
	if p == nil {
		return nil, model.ErrUnauthenticated
	}
	content, err := validateContent(body)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.portfolioRepo.GetByTitle(ctx, portfolioTitle)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PortfolioID: portfolio.ID,
		AuthorID:    p.ID,
		Author:      p.Username,
		Body:        content,
	}
	if err := s.consistency.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info("comment created",
		zap.Int64("comment_id", comment.ID),
		zap.Int64("portfolio_id", portfolio.ID),
		zap.Int64("author_id", p.ID))
	return comment, nil
}

// Get returns a comment only through the portfolio it belongs to.
func (s *CommentService) Get(ctx context.Context, portfolioTitle string, commentID int64) (*model.CommentView, error) {
	portfolio, err := s.portfolioRepo.GetByTitle(ctx, portfolioTitle)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PortfolioID != portfolio.ID {
		return nil, model.ErrCommentNotFound
	}
	return &model.CommentView{Portfolio: portfolio, Comment: comment}, nil
}

func (s *CommentService) Update(ctx context.Context, portfolioTitle string, commentID int64, body string) (*model.Comment, error) {
	content, err := validateContent(body)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, portfolioTitle, commentID); err != nil {
		return nil, err
	}
	return s.commentRepo.Update(ctx, commentID, content)
}

// Delete removes the comment and its reference in the portfolio list.
func (s *CommentService) Delete(ctx context.Context, portfolioTitle string, commentID int64) error {
	view, err := s.Get(ctx, portfolioTitle, commentID)
	if err != nil {
		return err
	}
	if err := s.consistency.RemoveComment(ctx, view.Comment); err != nil {
		return err
	}

	s.log.Info("comment deleted", zap.Int64("comment_id", commentID), zap.Int64("portfolio_id", view.Portfolio.ID))
	return nil
}
