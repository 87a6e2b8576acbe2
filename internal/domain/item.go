package domain

import "time"

// BillingUnit is the item's declared rental granularity. Durations and
// fees are always expressed in whole units of it.
type BillingUnit string

const (
	BillingUnitHour  BillingUnit = "HOUR"
	BillingUnitDay   BillingUnit = "DAY"
	BillingUnitWeek  BillingUnit = "WEEK"
	BillingUnitMonth BillingUnit = "MONTH"
)

func (u BillingUnit) Valid() bool {
	switch u {
	case BillingUnitHour, BillingUnitDay, BillingUnitWeek, BillingUnitMonth:
		return true
	}
	return false
}

// Add advances t by n whole billing units. Months use calendar
// arithmetic; everything else is a fixed span.
func (u BillingUnit) Add(t time.Time, n int32) time.Time {
	switch u {
	case BillingUnitHour:
		return t.Add(time.Duration(n) * time.Hour)
	case BillingUnitDay:
		return t.AddDate(0, 0, int(n))
	case BillingUnitWeek:
		return t.AddDate(0, 0, 7*int(n))
	case BillingUnitMonth:
		return t.AddDate(0, int(n), 0)
	}
	return t
}

// ItemSnapshot is the slice of the catalog item captured on the order
// at checkout time. All settlement math uses this snapshot, never live
// catalog prices.
type ItemSnapshot struct {
	Title             string      `json:"title"`
	PriceUnit         BillingUnit `json:"price_unit"`
	PricePerUnitCents int64       `json:"price_per_unit_cents"`
	MinRentalDuration int32       `json:"min_rental_duration"`
	MaxRentalDuration int32       `json:"max_rental_duration"`
}
