package service

import (
	"context"
	"fmt"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/logger"
	"rentiva-backend/internal/repository"
	"rentiva-backend/internal/settlement"

	"github.com/google/uuid"
)

type orderService struct {
	txm       repository.TxManager
	feePolicy FeePolicy
	notifier  Notifier
}

func NewOrderService(txm repository.TxManager, feePolicy FeePolicy, notifier Notifier) OrderService {
	return &orderService{
		txm:       txm,
		feePolicy: feePolicy,
		notifier:  notifier,
	}
}

func escrowKey(orderID int64) string {
	return fmt.Sprintf("order:%d:escrow", orderID)
}

func ownerPaymentKey(orderID int64) string {
	return fmt.Sprintf("order:%d:owner-payment", orderID)
}

func depositRefundKey(orderID int64) string {
	return fmt.Sprintf("order:%d:deposit-refund", orderID)
}

func cancelRefundKey(orderID int64) string {
	return fmt.Sprintf("order:%d:cancel-refund", orderID)
}

func (s *orderService) CreateOrder(ctx context.Context, actor domain.Actor, input CreateOrderInput) (*domain.Order, error) {
	if actor.UserID != input.RenterID && actor.Role != domain.RoleSystem {
		return nil, domain.NewUnauthorizedError("only the renter can create their own order")
	}
	if input.RenterID == input.OwnerID {
		return nil, domain.NewValidationError("ownerId", "renter and owner must differ")
	}
	if !input.EndAt.After(input.StartAt) {
		return nil, domain.NewValidationError("endAt", "end must be after start")
	}
	if !input.Item.PriceUnit.Valid() {
		return nil, domain.NewValidationError("item.priceUnit", "unknown billing unit %q", input.Item.PriceUnit)
	}
	if input.Deposit < 0 || input.Fee < 0 {
		return nil, domain.NewValidationError("deposit", "deposit and fee must not be negative")
	}

	units, err := settlement.UnitsBetween(input.StartAt, input.EndAt, input.Item.PriceUnit)
	if err != nil {
		return nil, err
	}
	if input.Item.MinRentalDuration > 0 && units < input.Item.MinRentalDuration {
		return nil, domain.NewValidationError("endAt", "rental shorter than minimum of %d %s(s)", input.Item.MinRentalDuration, input.Item.PriceUnit)
	}
	if input.Item.MaxRentalDuration > 0 && units > input.Item.MaxRentalDuration {
		return nil, domain.NewValidationError("endAt", "rental longer than maximum of %d %s(s)", input.Item.MaxRentalDuration, input.Item.PriceUnit)
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	var order *domain.Order
	err = s.txm.WithinTx(ctx, func(r repository.Repos) error {
		order = &domain.Order{
			Code:         uuid.NewString(),
			RenterID:     input.RenterID,
			OwnerID:      input.OwnerID,
			Item:         input.Item,
			StartAt:      input.StartAt,
			EndAt:        input.EndAt,
			DepositCents: input.Deposit,
			FeeCents:     input.Fee,
			Currency:     currency,
			Status:       domain.OrderStatusCreated,
		}
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}

		// Escrow deposit + fee from the renter before activation.
		// The idempotency key carries the fresh order id, so a retry
		// of the whole request creates a new order rather than
		// replaying this debit; the debit itself can never double-post
		// within one order.
		_, _, err := r.Wallets.Post(ctx, repository.WalletPost{
			UserID:         input.RenterID,
			Type:           domain.TransactionTypePayment,
			AmountCents:    -(input.Deposit + input.Fee),
			RelatedOrderID: &order.ID,
			IdempotencyKey: escrowKey(order.ID),
			Description:    fmt.Sprintf("Escrow for order %s", order.Code),
		})
		if err != nil {
			return err
		}

		order.Status = domain.OrderStatusActive
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("order created", "order_id", order.ID, "renter_id", order.RenterID, "escrowed_cents", order.DepositCents+order.FeeCents)
	return order, nil
}

func (s *orderService) CompleteOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	var (
		order   *domain.Order
		already bool
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.OwnerID && actor.UserID != order.RenterID && !actor.Moderator() {
			return domain.NewUnauthorizedError("not a party to order %d", orderID)
		}
		if order.Status == domain.OrderStatusCompleted {
			// Re-invocation on a completed order is a no-op.
			already = true
			return nil
		}
		if order.Status != domain.OrderStatusActive && order.Status != domain.OrderStatusExtended {
			return domain.NewInvalidTransitionError("cannot complete order in status %s", order.Status)
		}
		if time.Now().Before(order.EndAt) && actor.Role != domain.RoleSystem {
			return domain.NewInvalidTransitionError("order %d has not ended yet", orderID)
		}

		return s.settle(ctx, r, order, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	if !already {
		s.notifier.OrderCompleted(ctx, order)
	}
	return order, nil
}

// settle pays the owner and returns the deposit, then marks the order
// completed. Callers hold the order row lock.
func (s *orderService) settle(ctx context.Context, r repository.Repos, order *domain.Order, completedBy int64) error {
	payout := order.FeeCents - s.feePolicy.Commission(order.FeeCents)
	_, _, err := r.Wallets.Post(ctx, repository.WalletPost{
		UserID:         order.OwnerID,
		Type:           domain.TransactionTypeOwnerPayment,
		AmountCents:    payout,
		RelatedOrderID: &order.ID,
		IdempotencyKey: ownerPaymentKey(order.ID),
		Description:    fmt.Sprintf("Rental payment for order %s", order.Code),
	})
	if err != nil {
		return err
	}

	// The deposit may already have been settled by a dispute decision;
	// in that case it must not flow back to the renter a second time.
	settled, err := r.Disputes.HasDepositSettlement(ctx, order.ID)
	if err != nil {
		return err
	}
	if !settled {
		_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
			UserID:         order.RenterID,
			Type:           domain.TransactionTypeRefundDeposit,
			AmountCents:    order.DepositCents,
			RelatedOrderID: &order.ID,
			IdempotencyKey: depositRefundKey(order.ID),
			Description:    fmt.Sprintf("Deposit return for order %s", order.Code),
		})
		if err != nil {
			return err
		}
	}

	order.Status = domain.OrderStatusCompleted
	order.CompletedBy = &completedBy
	return r.Orders.Update(ctx, order)
}

func (s *orderService) CancelOrder(ctx context.Context, actor domain.Actor, orderID int64, reason string) (*domain.Order, error) {
	var order *domain.Order
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if actor.UserID != order.RenterID && actor.UserID != order.OwnerID && !actor.Moderator() {
			return domain.NewUnauthorizedError("not a party to order %d", orderID)
		}
		if !order.Status.CanTransitionTo(domain.OrderStatusCancelled) {
			return domain.NewInvalidTransitionError("cannot cancel order in status %s", order.Status)
		}
		if !time.Now().Before(order.StartAt) {
			return domain.NewInvalidTransitionError("order %d has already started", orderID)
		}

		// Full refund of the escrowed deposit + fee.
		_, _, err = r.Wallets.Post(ctx, repository.WalletPost{
			UserID:         order.RenterID,
			Type:           domain.TransactionTypeRefundPayment,
			AmountCents:    order.DepositCents + order.FeeCents,
			RelatedOrderID: &order.ID,
			IdempotencyKey: cancelRefundKey(order.ID),
			Description:    fmt.Sprintf("Cancellation refund for order %s", order.Code),
		})
		if err != nil {
			return err
		}

		order.Status = domain.OrderStatusCancelled
		order.CancelReason = reason
		return r.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.OrderCancelled(ctx, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		order, err = r.Orders.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if actor.UserID != order.RenterID && actor.UserID != order.OwnerID && !actor.Moderator() {
		return nil, domain.NewUnauthorizedError("not a party to order %d", orderID)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, actor domain.Actor, asOwner bool, status string, page, pageSize int32) ([]domain.Order, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	var (
		orders []domain.Order
		total  int32
	)
	err := s.txm.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		if asOwner {
			orders, total, err = r.Orders.ListByOwner(ctx, actor.UserID, status, page, pageSize)
		} else {
			orders, total, err = r.Orders.ListByRenter(ctx, actor.UserID, status, page, pageSize)
		}
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
