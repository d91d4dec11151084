package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseProcessor(t *testing.T) {
	cases := map[string]Processor{
		"stripe":         ProcessorStripe,
		" Braintree ":    ProcessorBraintree,
		"PADDLE_BILLING": ProcessorPaddleBilling,
		"paddle_classic": ProcessorPaddleClassic,
		"lemon_squeezy":  ProcessorUnknown,
		"":               ProcessorUnknown,
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, ParseProcessor(name))
		})
	}
}

func TestEffectiveQuantity(t *testing.T) {
	three := int64(3)
	zero := int64(0)
	assert.Equal(t, int64(1), Subscription{}.EffectiveQuantity())
	assert.Equal(t, int64(1), Subscription{Quantity: &zero}.EffectiveQuantity())
	assert.Equal(t, int64(3), Subscription{Quantity: &three}.EffectiveQuantity())
}

func TestChargeIsPaid(t *testing.T) {
	yes, no := true, false
	succeeded, failed := "succeeded", "failed"

	cases := []struct {
		name   string
		charge Charge
		want   bool
	}{
		{name: "no flags", charge: Charge{Amount: 100}, want: true},
		{name: "paid and succeeded", charge: Charge{Amount: 100, Paid: &yes, Status: &succeeded}, want: true},
		{name: "explicitly unpaid", charge: Charge{Amount: 100, Paid: &no}, want: false},
		{name: "failed status", charge: Charge{Amount: 100, Status: &failed}, want: false},
		{name: "zero amount", charge: Charge{Amount: 0, Paid: &yes}, want: false},
		{name: "refund", charge: Charge{Amount: -100}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.charge.IsPaid())
		})
	}
}

func TestSubscriptionFilterMatches(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ends := start.AddDate(0, 0, 10)
	sub := Subscription{Status: SubscriptionStatusCanceled, CreatedAt: start, UpdatedAt: start, EndsAt: &ends}

	assert.True(t, SubscriptionFilter{}.Matches(sub))
	assert.True(t, SubscriptionFilter{
		Statuses: []SubscriptionStatus{SubscriptionStatusCanceled, SubscriptionStatusEnded},
		Ends:     Between(start, start.AddDate(0, 0, 30)),
	}.Matches(sub))
	assert.False(t, SubscriptionFilter{Statuses: []SubscriptionStatus{SubscriptionStatusActive}}.Matches(sub))
	assert.False(t, SubscriptionFilter{Created: Before(start)}.Matches(sub))
	assert.True(t, SubscriptionFilter{Created: AtOrBefore(start)}.Matches(sub))
	assert.False(t, SubscriptionFilter{Ends: Between(start, start.AddDate(0, 0, 5))}.Matches(sub))

	sub.EndsAt = nil
	assert.False(t, SubscriptionFilter{Ends: &TimeRange{}}.Matches(sub))
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, SubscriptionStatusActive.ContributesMRR())
	assert.False(t, SubscriptionStatusTrialing.ContributesMRR())
	assert.False(t, SubscriptionStatusPaused.ContributesMRR())
	assert.True(t, SubscriptionStatusCanceled.Churned())
	assert.True(t, SubscriptionStatusEnded.Churned())
	assert.False(t, SubscriptionStatusPaused.Churned())
}
