package domain

import "time"

type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusActive    OrderStatus = "ACTIVE"
	OrderStatusExtended  OrderStatus = "EXTENDED"
	OrderStatusDisputed  OrderStatus = "DISPUTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// orderTransitions is the exhaustive transition table. A status absent
// from the map (or with an empty set) is terminal.
var orderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusCreated: {
		OrderStatusActive:    true,
		OrderStatusCancelled: true,
	},
	OrderStatusActive: {
		OrderStatusExtended:  true,
		OrderStatusDisputed:  true,
		OrderStatusCompleted: true,
		OrderStatusCancelled: true,
	},
	OrderStatusExtended: {
		OrderStatusDisputed:  true,
		OrderStatusCompleted: true,
	},
	OrderStatusDisputed: {
		OrderStatusActive:    true,
		OrderStatusExtended:  true,
		OrderStatusCompleted: true,
		OrderStatusRefunded:  true,
	},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderTransitions[s][next]
}

func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Disputable reports whether a dispute may be opened against an order
// in this status.
func (s OrderStatus) Disputable() bool {
	return s == OrderStatusActive || s == OrderStatusExtended
}

// Order is the aggregate root of one rental contract. Money fields are
// integers in the smallest currency unit.
type Order struct {
	ID           int64        `json:"id"`
	Code         string       `json:"code"`
	RenterID     int64        `json:"renter_id"`
	OwnerID      int64        `json:"owner_id"`
	Item         ItemSnapshot `json:"item"`
	StartAt      time.Time    `json:"start_at"`
	EndAt        time.Time    `json:"end_at"`
	DepositCents int64        `json:"deposit_cents"`
	FeeCents     int64        `json:"fee_cents"`
	Currency     string       `json:"currency"`
	Status       OrderStatus  `json:"status"`
	CancelReason string       `json:"cancel_reason,omitempty"`
	CompletedBy  *int64       `json:"completed_by,omitempty"`
	CreatedOn    time.Time    `json:"created_on"`
	UpdatedOn    time.Time    `json:"updated_on"`
}
