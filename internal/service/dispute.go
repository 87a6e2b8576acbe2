package service

import (
	"context"
	"fmt"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
	"rentiva-backend/internal/settlement"
)

type disputeService struct {
	txm      repository.TxManager
	notifier Notifier
}

func NewDisputeService(txm repository.TxManager, notifier Notifier) DisputeService {
	return &disputeService{
		txm:      txm,
		notifier: notifier,
	}
}

func disputeRefundKey(disputeID int64) string {
	return fmt.Sprintf("dispute:%d:refund", disputeID)
}

func disputeRetainedKey(disputeID int64) string {
	return fmt.Sprintf("dispute:%d:retained", disputeID)
}

func (s *disputeService) OpenDispute(ctx context.Context, actor domain.Actor, orderID int64, reason, description string, evidence []string) (*domain.Dispute, error) {
	if reason == "" {
		return nil, domain.NewValidationError("reason", "reason is required")
	}
	if len(evidence) > domain.MaxDisputeEvidence {
		return nil, domain.NewValidationError("evidence", "at most %d evidence items allowed", domain.MaxDisputeEvidence)
	}

	var (
		d     *domain.Dispute
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.RenterID && actor.UserID != order.OwnerID {
			return domain.NewUnauthorizedError("not a party to order %d", orderID)
		}
		if !order.Status.Disputable() {
			return domain.NewInvalidTransitionError("cannot dispute order in status %s", order.Status)
		}

		reported := order.OwnerID
		if actor.UserID == order.OwnerID {
			reported = order.RenterID
		}
		d = &domain.Dispute{
			OrderID:          order.ID,
			ReporterID:       actor.UserID,
			ReportedID:       reported,
			Reason:           reason,
			Description:      description,
			Evidence:         evidence,
			Status:           domain.DisputeStatusPending,
			PriorOrderStatus: order.Status,
		}
		if err := r.Disputes.Create(ctx, d); err != nil {
			return err
		}

		// Disputed orders are frozen: no extensions, no completion
		// outside resolution.
		order.Status = domain.OrderStatusDisputed
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.DisputeOpened(ctx, order, d)
	return d, nil
}

func (s *disputeService) ResolveDispute(ctx context.Context, actor domain.Actor, disputeID int64, input ResolveDisputeInput) (*domain.Dispute, error) {
	if !actor.Moderator() {
		return nil, domain.NewUnauthorizedError("only moderators can resolve disputes")
	}
	if err := domain.ValidateResolution(input.Decision, input.RefundTarget, input.RefundPercentage); err != nil {
		return nil, err
	}

	var (
		d     *domain.Dispute
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		d, err = r.Disputes.GetByID(ctx, disputeID)
		if err != nil {
			return err
		}
		// The order row lock serializes concurrent resolutions; the
		// guarded Close below turns the loser into a conflict instead
		// of a second posting.
		order, err = r.Orders.GetByIDForUpdate(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if d.Status != domain.DisputeStatusPending {
			return domain.NewConflictError("dispute %d is already %s", disputeID, d.Status)
		}

		split, err := settlement.SplitForDecision(order.DepositCents, input.Decision, input.RefundPercentage)
		if err != nil {
			return err
		}

		if split.RefundCents > 0 {
			refundee, retainee := settlementParties(d, input.RefundTarget)
			if err := s.postSettlement(ctx, r, d, order, refundee, retainee, split); err != nil {
				return err
			}
		} else if input.Decision == domain.DecisionKeepForSeller {
			// The whole deposit goes to the owner; the renter gets
			// nothing back at completion.
			_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
				UserID:         order.OwnerID,
				Type:           domain.TransactionTypePayoutOwnerPayment,
				AmountCents:    split.RetainedCents,
				RelatedOrderID: &order.ID,
				IdempotencyKey: disputeRetainedKey(d.ID),
				Description:    fmt.Sprintf("Deposit awarded for dispute on order %s", order.Code),
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		d.Status = domain.DisputeStatusResolved
		d.Decision = input.Decision
		d.ModeratorID = &actor.UserID
		d.ModeratorNotes = input.Notes
		d.ResolvedOn = &now
		if input.Decision.RequiresRefund() {
			d.RefundTarget = input.RefundTarget
			d.RefundPercentage = input.RefundPercentage
		}
		if err := r.Disputes.Close(ctx, d); err != nil {
			return err
		}

		// Refund decisions terminate the order; anything else thaws it
		// back to where the dispute froze it from.
		if input.Decision.RequiresRefund() {
			order.Status = domain.OrderStatusRefunded
		} else {
			order.Status = d.PriorOrderStatus
		}
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("dispute resolved", "dispute_id", d.ID, "order_id", order.ID, "decision", d.Decision)
	s.notifier.DisputeResolved(ctx, order, d)
	return d, nil
}

// settlementParties maps the moderator's refund target onto concrete
// users: the target receives the refund share, the counterparty the
// retained share.
func settlementParties(d *domain.Dispute, target domain.RefundTarget) (refundee, retainee int64) {
	if target == domain.RefundTargetReporter {
		return d.ReporterID, d.ReportedID
	}
	return d.ReportedID, d.ReporterID
}

func (s *disputeService) postSettlement(ctx context.Context, r repository.Repos, d *domain.Dispute, order *domain.Order, refundee, retainee int64, split settlement.RefundSplit) error {
	refundType := domain.TransactionTypePayoutRenterRefund
	if refundee == order.OwnerID {
		refundType = domain.TransactionTypePayoutOwnerPayment
	}
	_, _, err := r.Wallets.Post(ctx, repository.WalletPost{
		UserID:         refundee,
		Type:           refundType,
		AmountCents:    split.RefundCents,
		RelatedOrderID: &order.ID,
		IdempotencyKey: disputeRefundKey(d.ID),
		Description:    fmt.Sprintf("Dispute refund for order %s", order.Code),
	})
	if err != nil {
		return err
	}
	if split.RetainedCents == 0 {
		return nil
	}

	retainedType := domain.TransactionTypePayoutOwnerPayment
	if retainee == order.RenterID {
		retainedType = domain.TransactionTypePayoutRenterRefund
	}
	_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
		UserID:         retainee,
		Type:           retainedType,
		AmountCents:    split.RetainedCents,
		RelatedOrderID: &order.ID,
		IdempotencyKey: disputeRetainedKey(d.ID),
		Description:    fmt.Sprintf("Retained deposit share for order %s", order.Code),
	})
	return err
}

func (s *disputeService) RejectDispute(ctx context.Context, actor domain.Actor, disputeID int64, notes string) (*domain.Dispute, error) {
	if !actor.Moderator() {
		return nil, domain.NewUnauthorizedError("only moderators can reject disputes")
	}

	var (
		d     *domain.Dispute
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		d, err = r.Disputes.GetByID(ctx, disputeID)
		if err != nil {
			return err
		}
		order, err = r.Orders.GetByIDForUpdate(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if d.Status != domain.DisputeStatusPending {
			return domain.NewConflictError("dispute %d is already %s", disputeID, d.Status)
		}

		now := time.Now()
		d.Status = domain.DisputeStatusRejected
		d.Decision = domain.DecisionReject
		d.ModeratorID = &actor.UserID
		d.ModeratorNotes = notes
		d.ResolvedOn = &now
		if err := r.Disputes.Close(ctx, d); err != nil {
			return err
		}

		order.Status = d.PriorOrderStatus
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.DisputeResolved(ctx, order, d)
	return d, nil
}
