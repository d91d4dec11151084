package domain

import (
	"context"
	"iter"
	"time"
)

// TimeRange is an inclusive interval. A zero bound leaves that side open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Between returns the inclusive range [from, to].
func Between(from, to time.Time) *TimeRange {
	return &TimeRange{From: from, To: to}
}

// Before returns the range of instants strictly earlier than t.
func Before(t time.Time) *TimeRange {
	return &TimeRange{To: t.Add(-time.Nanosecond)}
}

// AtOrBefore returns the range of instants up to and including t.
func AtOrBefore(t time.Time) *TimeRange {
	return &TimeRange{To: t}
}

type SubscriptionFilter struct {
	Statuses []SubscriptionStatus
	Created  *TimeRange
	Ends     *TimeRange
	Updated  *TimeRange
}

// Matches applies the filter to a single subscription.
func (f SubscriptionFilter) Matches(s Subscription) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, status := range f.Statuses {
			if s.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Created != nil && !f.Created.Contains(s.CreatedAt) {
		return false
	}
	if f.Ends != nil && (s.EndsAt == nil || !f.Ends.Contains(*s.EndsAt)) {
		return false
	}
	if f.Updated != nil && !f.Updated.Contains(s.UpdatedAt) {
		return false
	}
	return true
}

type ChargeFilter struct {
	// Paid restricts to charges that are (true) or are not (false) paid.
	Paid    *bool
	Created *TimeRange
	// SubscriptionJoined restricts to charges attached to a subscription.
	SubscriptionJoined bool
}

// Matches applies the filter to a single charge.
func (f ChargeFilter) Matches(c Charge) bool {
	if f.Paid != nil && c.IsPaid() != *f.Paid {
		return false
	}
	if f.Created != nil && !f.Created.Contains(c.CreatedAt) {
		return false
	}
	if f.SubscriptionJoined && c.SubscriptionID == nil {
		return false
	}
	return true
}

type CustomerFilter struct {
	Created           *TimeRange
	HasSubscription   bool
	HasPositiveCharge bool
}

// Provider supplies billing records as lazy, finite sequences. A retrieval
// failure is yielded once as a non-nil error, after which the sequence ends.
type Provider interface {
	ActiveSubscriptions(ctx context.Context) iter.Seq2[Subscription, error]
	Subscriptions(ctx context.Context, filter SubscriptionFilter) iter.Seq2[Subscription, error]
	Charges(ctx context.Context, filter ChargeFilter) iter.Seq2[Charge, error]
	Customers(ctx context.Context, filter CustomerFilter) iter.Seq2[Customer, error]
}
