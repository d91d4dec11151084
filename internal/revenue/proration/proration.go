// Package proration apportions a monthly amount to the part of a billing
// cycle that overlaps a reporting window.
package proration

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Factor returns the share of the cycle covered by the window, in whole days,
// clamped to [0, 1]. ok is false when the cycle spans less than one day.
func Factor(cycleStart, cycleEnd, windowStart, windowEnd time.Time) (factor float64, ok bool) {
	totalDays := wholeDays(cycleEnd.Sub(cycleStart))
	if totalDays <= 0 {
		return 1, false
	}

	overlapStart := cycleStart
	if windowStart.After(overlapStart) {
		overlapStart = windowStart
	}
	overlapEnd := cycleEnd
	if windowEnd.Before(overlapEnd) {
		overlapEnd = windowEnd
	}

	overlapDays := wholeDays(overlapEnd.Sub(overlapStart))
	if overlapDays < 0 {
		overlapDays = 0
	}
	if overlapDays > totalDays {
		overlapDays = totalDays
	}
	return float64(overlapDays) / float64(totalDays), true
}

// Prorate scales fullMonthly by the cycle's overlap with the window and rounds
// to the nearest minor unit. A degenerate cycle returns fullMonthly unprorated.
func Prorate(fullMonthly float64, cycleStart, cycleEnd, windowStart, windowEnd time.Time) int64 {
	factor, ok := Factor(cycleStart, cycleEnd, windowStart, windowEnd)
	if !ok {
		return RoundMoney(fullMonthly)
	}
	return RoundMoney(fullMonthly * factor)
}

// RoundMoney rounds half up to the nearest minor unit.
func RoundMoney(raw float64) int64 {
	return int64(math.Floor(raw + 0.5))
}

func wholeDays(d time.Duration) int64 {
	return int64(d / day)
}
