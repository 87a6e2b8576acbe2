package repository

import (
	"context"
	"time"

	"rentiva-backend/internal/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// GetByIDForUpdate locks the order row for the rest of the enclosing
	// transaction, serializing all settlement work on this order.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Order, int32, error)
	ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Order, int32, error)
	// ListDue returns orders past their end date that are still in a
	// completable status, for the auto-complete sweep.
	ListDue(ctx context.Context, asOf time.Time, limit int32) ([]domain.Order, error)
}

type ExtensionRepository interface {
	Create(ctx context.Context, ext *domain.ExtensionRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error)
	GetPendingByOrder(ctx context.Context, orderID int64) (*domain.ExtensionRequest, error)
	Update(ctx context.Context, ext *domain.ExtensionRequest) error
	ListByOrder(ctx context.Context, orderID int64) ([]domain.ExtensionRequest, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, d *domain.Dispute) error
	GetByID(ctx context.Context, id int64) (*domain.Dispute, error)
	GetOpenByOrder(ctx context.Context, orderID int64) (*domain.Dispute, error)
	// Close moves a dispute out of PENDING. It is guarded: if the
	// dispute is no longer pending the call fails with a conflict,
	// which is what stops a concurrent double-resolve from
	// double-posting.
	Close(ctx context.Context, d *domain.Dispute) error
	// HasDepositSettlement reports whether a resolved dispute already
	// consumed this order's deposit.
	HasDepositSettlement(ctx context.Context, orderID int64) (bool, error)
}

// WalletPost describes one ledger posting, addressed by the wallet
// owner's user id.
type WalletPost struct {
	UserID         int64
	AmountCents    int64 // signed: positive credit, negative debit
	Type           domain.TransactionType
	IdempotencyKey string
	RelatedOrderID *int64
	Description    string
}

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	Create(ctx context.Context, w *domain.Wallet) error
	// Post appends a transaction and atomically adjusts the balance.
	// A replayed idempotency key returns the original transaction with
	// replayed=true and posts nothing. A debit below zero fails with
	// an insufficient-funds error and no partial state.
	Post(ctx context.Context, p WalletPost) (tx *domain.WalletTransaction, replayed bool, err error)
	ListTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.WalletTransaction, int32, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

// Repos bundles every repository over one database handle. Inside
// WithinTx all members share the same transaction.
type Repos struct {
	Orders        OrderRepository
	Extensions    ExtensionRepository
	Disputes      DisputeRepository
	Wallets       WalletRepository
	Notifications NotificationRepository
}

// TxManager runs fn inside a single atomic transaction. If fn returns
// an error nothing it did is visible to any other caller.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
