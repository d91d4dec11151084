// Package interval converts recurring amounts billed on any cadence into a
// monthly amount using fixed 30-day months and 4-week months.
package interval

import (
	"errors"
	"strings"
)

var ErrUnknownInterval = errors.New("unknown_interval")

const (
	Day   = "day"
	Week  = "week"
	Month = "month"
	Year  = "year"
)

// Terms are the billing terms extracted from one subscription. Absent values are nil.
type Terms struct {
	Amount        *float64
	Quantity      int64
	Interval      string
	IntervalCount *int64
}

// ToMonthly converts amount billed every count intervals into a monthly amount.
// count must be positive.
func ToMonthly(amount float64, interval string, count int64) (float64, error) {
	n := float64(count)
	switch strings.ToLower(strings.TrimSpace(interval)) {
	case Day:
		return amount * 30.0 / n, nil
	case Week:
		return amount * 4.0 / n, nil
	case Month:
		return amount / n, nil
	case Year:
		return amount / (12.0 * n), nil
	default:
		return 0, ErrUnknownInterval
	}
}

// Normalize returns the monthly amount for terms, or 0 when amount, interval
// or interval count is absent. Quantity below 1 counts as 1.
func Normalize(terms Terms) (float64, error) {
	if terms.Amount == nil || strings.TrimSpace(terms.Interval) == "" || terms.IntervalCount == nil {
		return 0, nil
	}
	if *terms.IntervalCount < 1 {
		return 0, nil
	}
	quantity := terms.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return ToMonthly(*terms.Amount*float64(quantity), terms.Interval, *terms.IntervalCount)
}
