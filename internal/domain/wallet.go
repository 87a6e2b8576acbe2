package domain

import "time"

type TransactionType string

const (
	TransactionTypeDeposit            TransactionType = "DEPOSIT"
	TransactionTypeWithdraw           TransactionType = "WITHDRAW"
	TransactionTypePayment            TransactionType = "PAYMENT"
	TransactionTypeRefundDeposit      TransactionType = "REFUND_DEPOSIT"
	TransactionTypeRefundPayment      TransactionType = "REFUND_PAYMENT"
	TransactionTypeOwnerPayment       TransactionType = "OWNER_PAYMENT"
	TransactionTypePayoutRenterRefund TransactionType = "PAYOUT_RENTER_REFUND"
	TransactionTypePayoutOwnerPayment TransactionType = "PAYOUT_OWNER_PAYMENT"
)

type TransactionStatus string

const TransactionStatusPosted TransactionStatus = "POSTED"

// Wallet is a per-user monetary account. Balance never goes negative;
// every change is backed by exactly one WalletTransaction.
type Wallet struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	BalanceCents int64     `json:"balance_cents"`
	Version      int64     `json:"version"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`
}

// WalletTransaction is an append-only ledger entry. Amount is signed:
// positive credits, negative debits. IdempotencyKey is unique per
// logical financial event; a replay returns the original row instead
// of posting twice.
type WalletTransaction struct {
	ID             int64             `json:"id"`
	WalletID       int64             `json:"wallet_id"`
	Type           TransactionType   `json:"type"`
	AmountCents    int64             `json:"amount_cents"`
	RelatedOrderID *int64            `json:"related_order_id,omitempty"`
	Status         TransactionStatus `json:"status"`
	IdempotencyKey string            `json:"idempotency_key"`
	Description    string            `json:"description,omitempty"`
	CreatedOn      time.Time         `json:"created_on"`
}
