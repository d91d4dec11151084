package interval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestToMonthly(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		interval string
		count    int64
		want     float64
	}{
		{name: "month", amount: 1000, interval: "month", count: 1, want: 1000},
		{name: "quarterly", amount: 900, interval: "month", count: 3, want: 300},
		{name: "year", amount: 1200, interval: "year", count: 1, want: 100},
		{name: "two years", amount: 2400, interval: "year", count: 2, want: 100},
		{name: "day", amount: 10, interval: "day", count: 1, want: 300},
		{name: "week", amount: 250, interval: "week", count: 1, want: 1000},
		{name: "fortnightly week", amount: 250, interval: "week", count: 2, want: 500},
		{name: "case insensitive", amount: 1200, interval: " YEAR ", count: 1, want: 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToMonthly(tc.amount, tc.interval, tc.count)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestToMonthlyIdentities(t *testing.T) {
	for _, amount := range []float64{0, 1, 99, 1000, 123456} {
		month, _ := ToMonthly(amount, "month", 1)
		assert.Equal(t, amount, month)

		year, _ := ToMonthly(amount, "year", 1)
		assert.Equal(t, amount/12.0, year)

		day, _ := ToMonthly(amount, "day", 1)
		assert.Equal(t, amount*30.0, day)

		week, _ := ToMonthly(amount, "week", 2)
		assert.Equal(t, amount*2.0, week)
	}
}

func TestToMonthlyUsesFloatDivision(t *testing.T) {
	got, err := ToMonthly(1000, "month", 3)
	require.NoError(t, err)
	assert.InDelta(t, 333.3333, got, 1e-3)
}

func TestToMonthlyUnknownInterval(t *testing.T) {
	for _, amount := range []float64{0, 1, 5000} {
		got, err := ToMonthly(amount, "fortnight", 1)
		assert.True(t, errors.Is(err, ErrUnknownInterval))
		assert.Zero(t, got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		terms   Terms
		want    float64
		wantErr error
	}{
		{name: "missing amount", terms: Terms{Interval: "month", IntervalCount: i64(1)}, want: 0},
		{name: "missing interval", terms: Terms{Amount: f64(100), IntervalCount: i64(1)}, want: 0},
		{name: "missing count", terms: Terms{Amount: f64(100), Interval: "month"}, want: 0},
		{name: "zero count is absent", terms: Terms{Amount: f64(100), Interval: "month", IntervalCount: i64(0)}, want: 0},
		{name: "quantity multiplies", terms: Terms{Amount: f64(100), Quantity: 3, Interval: "month", IntervalCount: i64(1)}, want: 300},
		{name: "quantity defaults to one", terms: Terms{Amount: f64(100), Interval: "month", IntervalCount: i64(1)}, want: 100},
		{name: "unknown interval", terms: Terms{Amount: f64(100), Interval: "decade", IntervalCount: i64(1)}, want: 0, wantErr: ErrUnknownInterval},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.terms)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
