package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"workfolio/internal/model"
	"workfolio/internal/queue"
)

// Reconciler repairs a recorded inconsistency. Implementations must be
// idempotent: the same record may be delivered by the stream and the sweeper.
// Both paths stop once model.MaxRepairAttempts is reached.
type Reconciler interface {
	Reconcile(ctx context.Context, inconsistencyID int64) error
}

// UnresolvedLister lists open inconsistency records for the periodic sweep.
type UnresolvedLister interface {
	ListUnresolved(ctx context.Context, limit int) ([]model.Inconsistency, error)
}

// Handler processes consistency events from the queue.
type Handler struct {
	reconciler Reconciler
	lister     UnresolvedLister
	log        *zap.Logger
}

func NewHandler(reconciler Reconciler, lister UnresolvedLister, log *zap.Logger) *Handler {
	return &Handler{reconciler: reconciler, lister: lister, log: log}
}

// HandleEvent routes an event to the reconciler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ConsistencyEvent) error {
	startTime := time.Now()

	switch event.Type {
	case queue.EventCascadeCleanup, queue.EventCommentLink:
	default:
		h.log.Warn("unknown event type", zap.String("type", event.Type))
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err := h.reconciler.Reconcile(ctx, event.InconsistencyID); err != nil {
		if errors.Is(err, model.ErrRepairAttemptsExhausted) {
			h.log.Error("repair attempts exhausted, record left for an operator",
				zap.String("operation", event.Operation),
				zap.Int64("inconsistency_id", event.InconsistencyID))
			return err
		}
		h.log.Warn("reconcile failed",
			zap.String("type", event.Type),
			zap.String("operation", event.Operation),
			zap.Int64("inconsistency_id", event.InconsistencyID),
			zap.Int64("account_id", event.AccountID),
			zap.Error(err))
		return err
	}

	h.log.Info("reconciled",
		zap.String("type", event.Type),
		zap.String("operation", event.Operation),
		zap.Int64("inconsistency_id", event.InconsistencyID),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// Sweep retries open records that have not exhausted their attempts.
// It returns how many were repaired.
func (h *Handler) Sweep(ctx context.Context, limit int) (int, error) {
	recs, err := h.lister.ListUnresolved(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unresolved: %w", err)
	}

	var repaired int
	for _, rec := range recs {
		if rec.Attempts >= model.MaxRepairAttempts {
			continue
		}
		if err := h.reconciler.Reconcile(ctx, rec.ID); err != nil {
			h.log.Warn("sweep reconcile failed",
				zap.Int64("inconsistency_id", rec.ID),
				zap.String("operation", rec.Operation),
				zap.Int("attempts", rec.Attempts+1),
				zap.Error(err))
			continue
		}
		repaired++
	}

	if repaired > 0 {
		h.log.Info("sweep repaired records", zap.Int("repaired", repaired), zap.Int("scanned", len(recs)))
	}
	return repaired, nil
}
