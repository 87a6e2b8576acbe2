package settlement

import (
	"time"

	"rentiva-backend/internal/domain"
)

// Discount is the reduction supplied by the promotion collaborator.
// The engine records and applies it; eligibility is decided elsewhere.
type Discount struct {
	AmountCents int64
	Reason      string
}

// ExtensionFee is the undiscounted price of extending a rental by
// duration whole billing units at the order's snapshot price.
func ExtensionFee(pricePerUnitCents int64, duration int32) (int64, error) {
	if duration < 1 {
		return 0, domain.NewValidationError("duration", "duration must be >= 1, got %d", duration)
	}
	if pricePerUnitCents < 0 {
		return 0, domain.NewValidationError("price_per_unit", "price must be >= 0, got %d", pricePerUnitCents)
	}
	return pricePerUnitCents * int64(duration), nil
}

// ApplyDiscount reduces fee by the discount, clamped so the result
// stays within [0, fee]. A nil discount leaves the fee unchanged.
func ApplyDiscount(feeCents int64, d *Discount) int64 {
	if d == nil || d.AmountCents <= 0 {
		return feeCents
	}
	out := feeCents - d.AmountCents
	if out < 0 {
		return 0
	}
	return out
}

// UnitsBetween counts how many whole billing units cover [start, end),
// rounding up so a partial unit bills as a full one.
func UnitsBetween(start, end time.Time, unit domain.BillingUnit) (int32, error) {
	if !end.After(start) {
		return 0, domain.NewValidationError("end_at", "end must be after start")
	}
	switch unit {
	case domain.BillingUnitHour:
		return ceilDiv(end.Sub(start), time.Hour), nil
	case domain.BillingUnitDay:
		return ceilDiv(end.Sub(start), 24*time.Hour), nil
	case domain.BillingUnitWeek:
		return ceilDiv(end.Sub(start), 7*24*time.Hour), nil
	case domain.BillingUnitMonth:
		// Calendar months: walk forward until we cover the window.
		var n int32
		for t := start; t.Before(end); t = t.AddDate(0, 1, 0) {
			n++
		}
		return n, nil
	}
	return 0, domain.NewValidationError("price_unit", "unknown billing unit %q", unit)
}

// Commission computes the platform's cut of an owner payout, rounding
// half up. Percent comes from the fee configuration collaborator.
func Commission(feeCents int64, percent int32) int64 {
	if percent <= 0 || feeCents <= 0 {
		return 0
	}
	if percent > 100 {
		percent = 100
	}
	return (feeCents*int64(percent) + 50) / 100
}

func ceilDiv(span, unit time.Duration) int32 {
	n := span / unit
	if span%unit > 0 {
		n++
	}
	return int32(n)
}
