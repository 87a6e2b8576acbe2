package service

import (
	"context"
	"time"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/settlement"
)

// CreateOrderInput carries everything checkout confirmation knows.
type CreateOrderInput struct {
	RenterID int64
	OwnerID  int64
	Item     domain.ItemSnapshot
	StartAt  time.Time
	EndAt    time.Time
	Deposit  int64
	Fee      int64
	Currency string
}

type OrderService interface {
	CreateOrder(ctx context.Context, actor domain.Actor, input CreateOrderInput) (*domain.Order, error)
	// CompleteOrder is idempotent: completing an already-completed
	// order returns it unchanged.
	CompleteOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	CancelOrder(ctx context.Context, actor domain.Actor, orderID int64, reason string) (*domain.Order, error)
	GetOrder(ctx context.Context, actor domain.Actor, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Actor, asOwner bool, status string, page, pageSize int32) ([]domain.Order, int32, error)
}

type ExtensionService interface {
	RequestExtension(ctx context.Context, actor domain.Actor, orderID int64, duration int32, notes string) (*domain.ExtensionRequest, error)
	ApproveExtension(ctx context.Context, actor domain.Actor, extensionID int64) (*domain.ExtensionRequest, error)
	RejectExtension(ctx context.Context, actor domain.Actor, extensionID int64, reason string) (*domain.ExtensionRequest, error)
	ListExtensions(ctx context.Context, actor domain.Actor, orderID int64) ([]domain.ExtensionRequest, error)
}

// ResolveDisputeInput is the moderator's verdict.
type ResolveDisputeInput struct {
	Decision         domain.DisputeDecision
	Notes            string
	RefundTarget     domain.RefundTarget
	RefundPercentage int32
}

type DisputeService interface {
	OpenDispute(ctx context.Context, actor domain.Actor, orderID int64, reason, description string, evidence []string) (*domain.Dispute, error)
	ResolveDispute(ctx context.Context, actor domain.Actor, disputeID int64, input ResolveDisputeInput) (*domain.Dispute, error)
	RejectDispute(ctx context.Context, actor domain.Actor, disputeID int64, notes string) (*domain.Dispute, error)
}

type LedgerService interface {
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

// DiscountService is the promotion collaborator boundary. The engine
// records and applies whatever reduction it returns; eligibility is
// not recomputed here. A nil discount means no reduction.
type DiscountService interface {
	ActiveDiscount(ctx context.Context, order *domain.Order, baseFeeCents int64) (*settlement.Discount, error)
}

// FeePolicy is the fee-configuration collaborator: the platform's cut
// of an owner payout.
type FeePolicy interface {
	Commission(feeCents int64) int64
}

// Notifier emits fire-and-forget notices on state transitions. Errors
// are swallowed by implementations; a failed notification never rolls
// back a financial transaction.
type Notifier interface {
	OrderCompleted(ctx context.Context, order *domain.Order)
	OrderCancelled(ctx context.Context, order *domain.Order)
	ExtensionRequested(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest)
	ExtensionApproved(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest)
	ExtensionRejected(ctx context.Context, order *domain.Order, ext *domain.ExtensionRequest)
	DisputeOpened(ctx context.Context, order *domain.Order, d *domain.Dispute)
	DisputeResolved(ctx context.Context, order *domain.Order, d *domain.Dispute)
}
