package service

import (
	"context"

	"rentiva-backend/internal/domain"
	"rentiva-backend/internal/settlement"
)

// staticDiscountService grants a flat percentage off extension fees,
// driven by configuration. It stands in for a real promotion system;
// the engine only sees the DiscountService boundary.
type staticDiscountService struct {
	percent int32
	reason  string
}

func NewStaticDiscountService(percent int32, reason string) DiscountService {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return &staticDiscountService{percent: percent, reason: reason}
}

func (s *staticDiscountService) ActiveDiscount(ctx context.Context, order *domain.Order, baseFeeCents int64) (*settlement.Discount, error) {
	if s.percent == 0 || baseFeeCents <= 0 {
		return nil, nil
	}
	return &settlement.Discount{
		AmountCents: (baseFeeCents*int64(s.percent) + 50) / 100,
		Reason:      s.reason,
	}, nil
}

// commissionPolicy takes a configured percentage cut of owner payouts.
type commissionPolicy struct {
	percent int32
}

func NewCommissionPolicy(percent int32) FeePolicy {
	return &commissionPolicy{percent: percent}
}

func (p *commissionPolicy) Commission(feeCents int64) int64 {
	return settlement.Commission(feeCents, p.percent)
}
