package domain

import "time"

type ExtensionStatus string

const (
	ExtensionStatusPending  ExtensionStatus = "PENDING"
	ExtensionStatusApproved ExtensionStatus = "APPROVED"
	ExtensionStatusRejected ExtensionStatus = "REJECTED"
)

func (s ExtensionStatus) Terminal() bool { return s != ExtensionStatusPending }

// ExtensionRequest is one proposal to push an order's end date out by
// Duration billing units. The fee and any discount are frozen at
// request time; approval charges exactly what was quoted.
type ExtensionRequest struct {
	ID                int64           `json:"id"`
	OrderID           int64           `json:"order_id"`
	RequesterID       int64           `json:"requester_id"`
	Duration          int32           `json:"duration"` // in the item's billing unit
	RequestedEndAt    time.Time       `json:"requested_end_at"`
	OriginalFeeCents  int64           `json:"original_fee_cents"`
	FeeCents          int64           `json:"fee_cents"`
	DiscountCents     int64           `json:"discount_cents"`
	DiscountReason    string          `json:"discount_reason,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	Status            ExtensionStatus `json:"status"`
	ApproverID        *int64          `json:"approver_id,omitempty"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	CreatedOn         time.Time       `json:"created_on"`
	UpdatedOn         time.Time       `json:"updated_on"`
}
