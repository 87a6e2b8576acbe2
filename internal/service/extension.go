package service

import (
	"context"
	"fmt"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
	"rentiva-backend/internal/settlement"
)

type extensionService struct {
	txm       repository.TxManager
	discounts DiscountService
	notifier  Notifier
}

func NewExtensionService(txm repository.TxManager, discounts DiscountService, notifier Notifier) ExtensionService {
	return &extensionService{
		txm:       txm,
		discounts: discounts,
		notifier:  notifier,
	}
}

func extensionDebitKey(extensionID int64) string {
	return fmt.Sprintf("extension:%d:debit", extensionID)
}

func extensionCreditKey(extensionID int64) string {
	return fmt.Sprintf("extension:%d:credit", extensionID)
}

func (s *extensionService) RequestExtension(ctx context.Context, actor domain.Actor, orderID int64, duration int32, notes string) (*domain.ExtensionRequest, error) {
	if duration < 1 {
		return nil, domain.NewValidationError("duration", "duration must be at least 1")
	}

	var (
		ext   *domain.ExtensionRequest
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.RenterID {
			return domain.NewUnauthorizedError("only the renter can extend order %d", orderID)
		}
		if order.Status != domain.OrderStatusActive {
			return domain.NewInvalidTransitionError("cannot extend order in status %s", order.Status)
		}
		if order.Item.MaxRentalDuration > 0 {
			rented, err := settlement.UnitsBetween(order.StartAt, order.EndAt, order.Item.PriceUnit)
			if err != nil {
				return err
			}
			if rented+duration > order.Item.MaxRentalDuration {
				return domain.NewValidationError("duration", "extension exceeds maximum rental of %d %s(s)", order.Item.MaxRentalDuration, order.Item.PriceUnit)
			}
		}

		// Friendly pre-check; the partial unique index is the real
		// guard against a concurrent second request.
		if _, err := r.Extensions.GetPendingByOrder(ctx, orderID); err == nil {
			return domain.NewConflictError("order %d already has a pending extension request", orderID)
		} else if domain.KindOf(err) != domain.KindNotFound {
			return err
		}

		baseFee, err := settlement.ExtensionFee(order.Item.PricePerUnitCents, duration)
		if err != nil {
			return err
		}
		fee := baseFee
		var discount *settlement.Discount
		if s.discounts != nil {
			discount, err = s.discounts.ActiveDiscount(ctx, order, baseFee)
			if err != nil {
				return err
			}
		}
		// The discount is captured here, at request time. A promotion
		// expiring before the owner approves does not change the
		// quoted fee.
		if discount != nil {
			fee = settlement.ApplyDiscount(baseFee, discount)
		}

		ext = &domain.ExtensionRequest{
			OrderID:          order.ID,
			RequesterID:      actor.UserID,
			Duration:         duration,
			RequestedEndAt:   order.Item.PriceUnit.Add(order.EndAt, duration),
			OriginalFeeCents: baseFee,
			FeeCents:         fee,
			Notes:            notes,
			Status:           domain.ExtensionStatusPending,
		}
		if discount != nil {
			ext.DiscountCents = baseFee - fee
			ext.DiscountReason = discount.Reason
		}
		return r.Extensions.Create(ctx, ext)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.ExtensionRequested(ctx, order, ext)
	return ext, nil
}

func (s *extensionService) ApproveExtension(ctx context.Context, actor domain.Actor, extensionID int64) (*domain.ExtensionRequest, error) {
	var (
		ext   *domain.ExtensionRequest
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		ext, err = r.Extensions.GetByID(ctx, extensionID)
		if err != nil {
			return err
		}
		order, err = r.Orders.GetByIDForUpdate(ctx, ext.OrderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.OwnerID && !actor.Moderator() {
			return domain.NewUnauthorizedError("only the owner can approve extension %d", extensionID)
		}
		if ext.Status != domain.ExtensionStatusPending {
			return domain.NewConflictError("extension %d is already %s", extensionID, ext.Status)
		}
		if order.Status != domain.OrderStatusActive {
			return domain.NewInvalidTransitionError("cannot approve extension on order in status %s", order.Status)
		}

		// Debit the renter and credit the owner in the same
		// transaction as the order mutation: the fee never moves
		// without the end date moving with it.
		_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
			UserID:         order.RenterID,
			Type:           domain.TransactionTypePayment,
			AmountCents:    -ext.FeeCents,
			RelatedOrderID: &order.ID,
			IdempotencyKey: extensionDebitKey(ext.ID),
			Description:    fmt.Sprintf("Extension fee for order %s", order.Code),
		})
		if err != nil {
			return err
		}
		_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
			UserID:         order.OwnerID,
			Type:           domain.TransactionTypeOwnerPayment,
			AmountCents:    ext.FeeCents,
			RelatedOrderID: &order.ID,
			IdempotencyKey: extensionCreditKey(ext.ID),
			Description:    fmt.Sprintf("Extension payment for order %s", order.Code),
		})
		if err != nil {
			return err
		}

		order.EndAt = ext.RequestedEndAt
		order.FeeCents += ext.FeeCents
		order.Status = domain.OrderStatusExtended
		if err := r.Orders.Update(ctx, order); err != nil {
			return err
		}

		ext.Status = domain.ExtensionStatusApproved
		ext.ApproverID = &actor.UserID
		return r.Extensions.Update(ctx, ext)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("extension approved", "extension_id", ext.ID, "order_id", order.ID, "fee_cents", ext.FeeCents)
	s.notifier.ExtensionApproved(ctx, order, ext)
	return ext, nil
}

func (s *extensionService) RejectExtension(ctx context.Context, actor domain.Actor, extensionID int64, reason string) (*domain.ExtensionRequest, error) {
	var (
		ext   *domain.ExtensionRequest
		order *domain.Order
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		ext, err = r.Extensions.GetByID(ctx, extensionID)
		if err != nil {
			return err
		}
		order, err = r.Orders.GetByIDForUpdate(ctx, ext.OrderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.OwnerID && !actor.Moderator() {
			return domain.NewUnauthorizedError("only the owner can reject extension %d", extensionID)
		}
		if ext.Status != domain.ExtensionStatusPending {
			return domain.NewConflictError("extension %d is already %s", extensionID, ext.Status)
		}

		ext.Status = domain.ExtensionStatusRejected
		ext.ApproverID = &actor.UserID
		ext.RejectionReason = reason
		return r.Extensions.Update(ctx, ext)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.ExtensionRejected(ctx, order, ext)
	return ext, nil
}

func (s *extensionService) ListExtensions(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.ExtensionRequest, error) {
	var exts []domain.ExtensionRequest
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.RenterID && actor.UserID != order.OwnerID && !actor.Moderator() {
			return domain.NewUnauthorizedError("not a party to order %d", orderID)
		}
		exts, err = r.Extensions.ListByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return exts, nil
}
