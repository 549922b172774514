package service

import (
	"context"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"go.uber.org/zap"
)

// DraftJanitor cancels drafts that were abandoned, returning the stock they
// hold, and drops expired idempotency keys.
type DraftJanitor struct {
	invoices        *InvoiceAggregate
	coordinator     *Coordinator
	idempotencyRepo repository.IdempotencyRepository
	clock           clock.Clock
	maxAge          time.Duration
	logger          *zap.Logger
}

// NewDraftJanitor creates a janitor that cancels drafts older than maxAge
func NewDraftJanitor(
	invoices *InvoiceAggregate,
	coordinator *Coordinator,
	idempotencyRepo repository.IdempotencyRepository,
	clk clock.Clock,
	maxAge time.Duration,
	logger *zap.Logger,
) *DraftJanitor {
	return &DraftJanitor{
		invoices:        invoices,
		coordinator:     coordinator,
		idempotencyRepo: idempotencyRepo,
		clock:           clk,
		maxAge:          maxAge,
		logger:          logger.Named("janitor"),
	}
}

// Sweep runs one pass and returns the number of drafts cancelled.
// A draft that fails to cancel is logged and skipped.
func (j *DraftJanitor) Sweep(ctx context.Context) (int, error) {
	ids, cutoff, err := j.invoices.StaleDrafts(ctx, j.maxAge)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return cancelled, ctx.Err()
		}
		ok, err := j.coordinator.CancelStaleDraft(ctx, id, cutoff)
		if err != nil {
			j.logger.Warn("failed to cancel stale draft", zap.Uint("invoice_id", id), zap.Error(err))
			continue
		}
		if ok {
			cancelled++
		}
	}

	if j.idempotencyRepo != nil {
		removed, err := j.idempotencyRepo.DeleteExpired(ctx, j.clock.Now())
		if err != nil {
			j.logger.Warn("failed to delete expired idempotency keys", zap.Error(err))
		} else if removed > 0 {
			j.logger.Debug("expired idempotency keys deleted", zap.Int64("count", removed))
		}
	}

	if cancelled > 0 {
		j.logger.Info("stale drafts cancelled", zap.Int("count", cancelled), zap.Time("cutoff", cutoff))
	}
	return cancelled, nil
}

// Run sweeps every interval until ctx is done
func (j *DraftJanitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("draft sweep failed", zap.Error(err))
			}
		}
	}
}
