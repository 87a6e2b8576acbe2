package settlement

import (
	"rentiva-backend/internal/domain"
)

// RefundSplit is the outcome of settling a deposit: what goes back to
// the refund target and what the counterparty retains. The two always
// sum to the deposit exactly.
type RefundSplit struct {
	RefundCents   int64
	RetainedCents int64
}

// SplitDeposit divides depositCents according to refundPercentage,
// rounding half up to the smallest currency unit. No side effects.
func SplitDeposit(depositCents int64, refundPercentage int32) (RefundSplit, error) {
	if depositCents < 0 {
		return RefundSplit{}, domain.NewValidationError("deposit", "deposit must be >= 0, got %d", depositCents)
	}
	if refundPercentage < 0 || refundPercentage > 100 {
		return RefundSplit{}, domain.NewValidationError("refund_percentage", "percentage must be within 0..100, got %d", refundPercentage)
	}

	// Round half up: amounts are non-negative so integer division
	// after adding half the divisor is exact.
	refund := (depositCents*int64(refundPercentage) + 50) / 100
	return RefundSplit{
		RefundCents:   refund,
		RetainedCents: depositCents - refund,
	}, nil
}

// SplitForDecision resolves a moderator decision into a deposit split.
// REJECT moves no money; KEEP_FOR_SELLER retains the whole deposit.
func SplitForDecision(depositCents int64, decision domain.DisputeDecision, refundPercentage int32) (RefundSplit, error) {
	switch decision {
	case domain.DecisionReject:
		return RefundSplit{}, nil
	case domain.DecisionKeepForSeller:
		return RefundSplit{RetainedCents: depositCents}, nil
	case domain.DecisionRefundFull:
		return SplitDeposit(depositCents, 100)
	case domain.DecisionRefundPartial:
		return SplitDeposit(depositCents, refundPercentage)
	}
	return RefundSplit{}, domain.NewValidationError("decision", "unknown decision %q", decision)
}
