package jobs

import (
	"context"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
)

// AutoCompleteOrders settles orders whose rental window has ended.
// Orders frozen by an open dispute are in DISPUTED status and never
// show up in the due list; completion goes through the same idempotent
// service path as a user-initiated complete, so a sweep overlapping a
// manual completion is harmless.
func (jr *JobRunner) AutoCompleteOrders() {
	jr.runWithRecovery("AutoCompleteOrders", func() {
		ctx := context.Background()
		batch := jr.config.Scheduler.SweepBatchSize

		var due []domain.Order
		err := jr.txm.WithinTx(ctx, func(r repository.Repos) error {
			var err error
			due, err = r.Orders.ListDue(ctx, time.Now(), batch)
			return err
		})
		if err != nil {
			logger.Error("Failed to list due orders", "error", err)
			return
		}

		system := domain.Actor{Role: domain.RoleSystem}
		var completed, failed int
		for _, order := range due {
			if _, err := jr.orders.CompleteOrder(ctx, system, order.ID); err != nil {
				// A dispute may have opened between the list and this
				// completion; skip and let the next sweep retry.
				logger.Warn("Failed to auto-complete order", "order_id", order.ID, "error", err)
				failed++
				continue
			}
			completed++
		}
		logger.Info("Auto-complete sweep finished", "completed", completed, "failed", failed)
	})
}
