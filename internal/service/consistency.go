package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/observability"
	"workfolio/internal/queue"
	"workfolio/internal/repository"
)

// ConsistencyManager owns every operation that touches more than one record:
// unique creates, the account delete cascade and the comment reference list.
// Steps that cannot be rolled back are logged, recorded as an Inconsistency
// and announced on the consistency stream for the worker to retry.
type ConsistencyManager struct {
	users           repository.UserRepository
	portfolios      repository.PortfolioRepository
	comments        repository.CommentRepository
	jobs            repository.JobRepository
	inconsistencies repository.InconsistencyRepository
	publisher       queue.Publisher
	log             *zap.Logger
}

func NewConsistencyManager(
	users repository.UserRepository,
	portfolios repository.PortfolioRepository,
	comments repository.CommentRepository,
	jobs repository.JobRepository,
	inconsistencies repository.InconsistencyRepository,
	publisher queue.Publisher,
	log *zap.Logger,
) *ConsistencyManager {
	return &ConsistencyManager{
		users:           users,
		portfolios:      portfolios,
		comments:        comments,
		jobs:            jobs,
		inconsistencies: inconsistencies,
		publisher:       publisher,
		log:             log,
	}
}

// CreatePortfolio enforces unique titles and one portfolio per account.
// The pre-checks give the common case a clean answer; the unique indexes
// decide the race.
func (m *ConsistencyManager) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	taken, err := m.portfolios.ExistsByTitle(ctx, p.Title)
	if err != nil {
		return fmt.Errorf("check portfolio title: %w", err)
	}
	if taken {
		return model.ErrPortfolioTitleTaken
	}

	_, err = m.portfolios.GetByAuthorID(ctx, p.AuthorID)
	switch {
	case err == nil:
		return model.ErrPortfolioExists
	case !errors.Is(err, model.ErrPortfolioNotFound):
		return fmt.Errorf("check existing portfolio: %w", err)
	}

	return m.portfolios.Create(ctx, p)
}

func (m *ConsistencyManager) CreateJob(ctx context.Context, j *model.Job) error {
	taken, err := m.jobs.ExistsByTitle(ctx, j.JobTitle)
	if err != nil {
		return fmt.Errorf("check job title: %w", err)
	}
	if taken {
		return model.ErrJobTitleTaken
	}
	return m.jobs.Create(ctx, j)
}

// DeleteAccount removes the account and then, independently, everything it
// owns. Only the account delete can fail the call; later steps are best effort.
func (m *ConsistencyManager) DeleteAccount(ctx context.Context, accountID int64) error {
	if err := m.users.Delete(ctx, accountID); err != nil {
		return err
	}

	// The account is gone; cleanup must not stop because the client hung up.
	ctx = context.WithoutCancel(ctx)

	if err := m.cascadeComments(ctx, accountID); err != nil {
		m.record(ctx, model.OpCascadeComments, accountID, nil, err)
	}
	if rid, err := m.cascadePortfolio(ctx, accountID); err != nil {
		m.record(ctx, model.OpCascadePortfolio, accountID, rid, err)
	}
	if _, err := m.jobs.DeleteByPoster(ctx, accountID); err != nil {
		m.record(ctx, model.OpCascadeJobs, accountID, nil, err)
	}
	if _, err := m.jobs.RemoveApplicant(ctx, accountID); err != nil {
		m.record(ctx, model.OpCascadeApplications, accountID, nil, err)
	}

	m.log.Info("account deleted", zap.Int64("account_id", accountID))
	return nil
}

// cascadeComments strips the account's comments out of every portfolio list
// before deleting the rows, so a failure in between leaves only unreferenced rows.
func (m *ConsistencyManager) cascadeComments(ctx context.Context, accountID int64) error {
	ids, err := m.comments.ListIDsByAuthor(ctx, accountID)
	if err != nil {
		return fmt.Errorf("list authored comments: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := m.portfolios.RemoveComments(ctx, ids); err != nil {
		return fmt.Errorf("unlink authored comments: %w", err)
	}
	if _, err := m.comments.DeleteByAuthor(ctx, accountID); err != nil {
		return fmt.Errorf("delete authored comments: %w", err)
	}
	return nil
}

// cascadePortfolio deletes the account's portfolio and the comments on it.
// It returns the portfolio id when one was found so a failure can point at it.
func (m *ConsistencyManager) cascadePortfolio(ctx context.Context, accountID int64) (*int64, error) {
	p, err := m.portfolios.GetByAuthorID(ctx, accountID)
	if errors.Is(err, model.ErrPortfolioNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	id := p.ID
	if _, err := m.comments.DeleteByPortfolio(ctx, id); err != nil {
		return &id, fmt.Errorf("delete portfolio comments: %w", err)
	}
	if _, err := m.portfolios.DeleteByAuthor(ctx, accountID); err != nil {
		return &id, fmt.Errorf("delete portfolio: %w", err)
	}
	return &id, nil
}

// AddComment stores the comment and then links it into its portfolio's list.
// The link is idempotent, so replaying it after a partial failure never
// duplicates the reference. A failed link is recorded and returned.
func (m *ConsistencyManager) AddComment(ctx context.Context, c *model.Comment) error {
	if err := m.comments.Create(ctx, c); err != nil {
		return err
	}

	if err := m.linkComment(ctx, c.PortfolioID, c.ID); err != nil {
		id := c.ID
		m.record(context.WithoutCancel(ctx), model.OpCommentLink, c.AuthorID, &id, err)
		return err
	}
	return nil
}

func (m *ConsistencyManager) linkComment(ctx context.Context, portfolioID, commentID int64) error {
	p, err := m.portfolios.GetByID(ctx, portfolioID)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}
	if p.HasComment(commentID) {
		return nil
	}
	if _, err := m.portfolios.AppendComment(ctx, p.ID, commentID); err != nil {
		return fmt.Errorf("append comment reference: %w", err)
	}
	return nil
}

// RemoveComment deletes the comment and then its reference. A failed unlink
// leaves a dangling id that readers skip; it is recorded for cleanup.
func (m *ConsistencyManager) RemoveComment(ctx context.Context, c *model.Comment) error {
	if err := m.comments.Delete(ctx, c.ID); err != nil {
		return err
	}
	if err := m.portfolios.RemoveComments(ctx, []int64{c.ID}); err != nil {
		id := c.ID
		m.record(context.WithoutCancel(ctx), model.OpCommentUnlink, c.AuthorID, &id, err)
	}
	return nil
}

// record makes a failed step visible: log, metric, durable record, stream event.
// Failures inside record are logged and swallowed.
func (m *ConsistencyManager) record(ctx context.Context, op string, accountID int64, resourceID *int64, cause error) {
	observability.ConsistencyFailures.WithLabelValues(op).Inc()

	fields := []zap.Field{
		zap.String("operation", op),
		zap.Int64("account_id", accountID),
		zap.Error(cause),
	}
	if resourceID != nil {
		fields = append(fields, zap.Int64("resource_id", *resourceID))
	}
	m.log.Error("consistency step failed", fields...)

	rec := &model.Inconsistency{
		Operation:  op,
		AccountID:  accountID,
		ResourceID: resourceID,
		Detail:     cause.Error(),
	}
	if err := m.inconsistencies.Create(ctx, rec); err != nil {
		m.log.Error("failed to record inconsistency", append(fields, zap.NamedError("record_error", err))...)
		return
	}

	var rid int64
	if resourceID != nil {
		rid = *resourceID
	}
	event := queue.NewCascadeCleanupEvent(rec.ID, op, accountID, rid)
	if op == model.OpCommentLink || op == model.OpCommentUnlink {
		event = queue.NewCommentLinkEvent(rec.ID, op, accountID, rid)
	}
	if _, err := m.publisher.Publish(ctx, queue.StreamConsistency, event); err != nil {
		// The sweeper still finds the record.
		m.log.Warn("failed to publish consistency event",
			zap.Int64("inconsistency_id", rec.ID), zap.Error(err))
	}
}

// Reconcile re-runs the idempotent step behind an inconsistency record and
// resolves it on success. Already-resolved records are a no-op; records out
// of attempts return model.ErrRepairAttemptsExhausted without a retry.
func (m *ConsistencyManager) Reconcile(ctx context.Context, inconsistencyID int64) error {
	rec, err := m.inconsistencies.GetByID(ctx, inconsistencyID)
	if err != nil {
		return err
	}
	if rec.IsResolved() {
		return nil
	}
	if rec.Attempts >= model.MaxRepairAttempts {
		return model.ErrRepairAttemptsExhausted
	}
	if err := m.inconsistencies.IncrementAttempts(ctx, rec.ID); err != nil {
		return err
	}

	if err := m.repair(ctx, rec); err != nil {
		return fmt.Errorf("repair %s for account %d: %w", rec.Operation, rec.AccountID, err)
	}

	if err := m.inconsistencies.Resolve(ctx, rec.ID); err != nil {
		return err
	}
	observability.ConsistencyRepairs.WithLabelValues(rec.Operation).Inc()
	return nil
}

func (m *ConsistencyManager) repair(ctx context.Context, rec *model.Inconsistency) error {
	switch rec.Operation {
	case model.OpCascadeComments:
		return m.cascadeComments(ctx, rec.AccountID)

	case model.OpCascadePortfolio:
		if rec.ResourceID != nil {
			if _, err := m.comments.DeleteByPortfolio(ctx, *rec.ResourceID); err != nil {
				return err
			}
		}
		_, err := m.cascadePortfolio(ctx, rec.AccountID)
		return err

	case model.OpCascadeJobs:
		_, err := m.jobs.DeleteByPoster(ctx, rec.AccountID)
		return err

	case model.OpCascadeApplications:
		_, err := m.jobs.RemoveApplicant(ctx, rec.AccountID)
		return err

	case model.OpCommentLink:
		if rec.ResourceID == nil {
			return nil
		}
		c, err := m.comments.GetByID(ctx, *rec.ResourceID)
		if errors.Is(err, model.ErrCommentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		err = m.linkComment(ctx, c.PortfolioID, c.ID)
		if errors.Is(err, model.ErrPortfolioNotFound) {
			// Nothing to link into; the comment is an orphan.
			if err := m.comments.Delete(ctx, c.ID); err != nil && !errors.Is(err, model.ErrCommentNotFound) {
				return err
			}
			return nil
		}
		return err

	case model.OpCommentUnlink:
		if rec.ResourceID == nil {
			return nil
		}
		return m.portfolios.RemoveComments(ctx, []int64{*rec.ResourceID})
	}

	return fmt.Errorf("unknown operation %q", rec.Operation)
}
