package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusPending  DisputeStatus = "PENDING"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
	DisputeStatusRejected DisputeStatus = "REJECTED"
)

func (s DisputeStatus) Terminal() bool { return s != DisputeStatusPending }

type DisputeDecision string

const (
	DecisionRefundFull    DisputeDecision = "REFUND_FULL"
	DecisionRefundPartial DisputeDecision = "REFUND_PARTIAL"
	DecisionReject        DisputeDecision = "REJECT"
	DecisionKeepForSeller DisputeDecision = "KEEP_FOR_SELLER"
)

func (d DisputeDecision) Valid() bool {
	switch d {
	case DecisionRefundFull, DecisionRefundPartial, DecisionReject, DecisionKeepForSeller:
		return true
	}
	return false
}

// RequiresRefund reports whether the decision moves deposit money to
// the refund target.
func (d DisputeDecision) RequiresRefund() bool {
	return d == DecisionRefundFull || d == DecisionRefundPartial
}

type RefundTarget string

const (
	RefundTargetReporter RefundTarget = "REPORTER"
	RefundTargetReported RefundTarget = "REPORTED"
)

// AllowedRefundPercentages is the closed set a moderator may pick from.
var AllowedRefundPercentages = []int32{10, 25, 50, 100}

func RefundPercentageAllowed(pct int32) bool {
	for _, p := range AllowedRefundPercentages {
		if p == pct {
			return true
		}
	}
	return false
}

const MaxDisputeEvidence = 5

// Dispute is a grievance raised against an order. PriorOrderStatus
// remembers what the order was frozen from, so a rejected dispute can
// restore it.
type Dispute struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"order_id"`
	ReporterID       int64           `json:"reporter_id"`
	ReportedID       int64           `json:"reported_id"`
	Reason           string          `json:"reason"`
	Description      string          `json:"description"`
	Evidence         []string        `json:"evidence,omitempty"`
	Status           DisputeStatus   `json:"status"`
	Decision         DisputeDecision `json:"decision,omitempty"`
	RefundTarget     RefundTarget    `json:"refund_target,omitempty"`
	RefundPercentage int32           `json:"refund_percentage,omitempty"`
	PriorOrderStatus OrderStatus     `json:"prior_order_status"`
	ModeratorID      *int64          `json:"moderator_id,omitempty"`
	ModeratorNotes   string          `json:"moderator_notes,omitempty"`
	ResolvedOn       *time.Time      `json:"resolved_on,omitempty"`
	CreatedOn        time.Time       `json:"created_on"`
	UpdatedOn        time.Time       `json:"updated_on"`
}

// ValidateResolution checks the decision/target/percentage triple
// before any money moves. REFUND_FULL forces 100 percent.
func ValidateResolution(decision DisputeDecision, target RefundTarget, pct int32) error {
	if !decision.Valid() {
		return NewValidationError("decision", "unknown decision %q", decision)
	}
	if !decision.RequiresRefund() {
		return nil
	}
	if target != RefundTargetReporter && target != RefundTargetReported {
		return NewValidationError("refund_target", "refund decisions require a refund target")
	}
	if decision == DecisionRefundFull {
		if pct != 100 {
			return NewValidationError("refund_percentage", "full refund requires percentage 100, got %d", pct)
		}
		return nil
	}
	if !RefundPercentageAllowed(pct) {
		return NewValidationError("refund_percentage", "percentage must be one of 10, 25, 50, 100, got %d", pct)
	}
	return nil
}
