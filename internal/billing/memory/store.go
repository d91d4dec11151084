// Package memory holds billing records in process memory. It backs tests and
// local report runs against fixture data.
package memory

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
)

type Store struct {
	mu            sync.RWMutex
	customers     []billingdomain.Customer
	subscriptions []billingdomain.Subscription
	charges       []billingdomain.Charge
	err           error
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) AddCustomer(customers ...billingdomain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = append(s.customers, customers...)
}

// AddSubscription stores subscriptions, filling ProcessorName from the owning customer when empty.
func (s *Store) AddSubscription(subs ...billingdomain.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range subs {
		if sub.ProcessorName == "" {
			for _, c := range s.customers {
				if c.ID == sub.CustomerID {
					sub.ProcessorName = c.Processor
					break
				}
			}
		}
		s.subscriptions = append(s.subscriptions, sub)
	}
}

func (s *Store) AddCharge(charges ...billingdomain.Charge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.charges = append(s.charges, charges...)
}

// FailWith makes every subsequent read yield err as a provider failure. A nil err clears it.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.err = nil
		return
	}
	s.err = fmt.Errorf("%w: %w", billingdomain.ErrProviderUnavailable, err)
}

func (s *Store) ActiveSubscriptions(ctx context.Context) iter.Seq2[billingdomain.Subscription, error] {
	return s.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: []billingdomain.SubscriptionStatus{billingdomain.SubscriptionStatusActive},
	})
}

func (s *Store) Subscriptions(ctx context.Context, filter billingdomain.SubscriptionFilter) iter.Seq2[billingdomain.Subscription, error] {
	s.mu.RLock()
	items, err := append([]billingdomain.Subscription(nil), s.subscriptions...), s.err
	s.mu.RUnlock()
	return seq(ctx, items, err, filter.Matches)
}

func (s *Store) Charges(ctx context.Context, filter billingdomain.ChargeFilter) iter.Seq2[billingdomain.Charge, error] {
	s.mu.RLock()
	items, err := append([]billingdomain.Charge(nil), s.charges...), s.err
	s.mu.RUnlock()
	return seq(ctx, items, err, filter.Matches)
}

func (s *Store) Customers(ctx context.Context, filter billingdomain.CustomerFilter) iter.Seq2[billingdomain.Customer, error] {
	s.mu.RLock()
	items, err := append([]billingdomain.Customer(nil), s.customers...), s.err
	withSubscription := map[snowflake.ID]bool{}
	for _, sub := range s.subscriptions {
		withSubscription[sub.CustomerID] = true
	}
	withPositiveCharge := map[snowflake.ID]bool{}
	for _, charge := range s.charges {
		if charge.IsPaid() {
			withPositiveCharge[charge.CustomerID] = true
		}
	}
	s.mu.RUnlock()

	return seq(ctx, items, err, func(c billingdomain.Customer) bool {
		if filter.Created != nil && !filter.Created.Contains(c.CreatedAt) {
			return false
		}
		if filter.HasSubscription && !withSubscription[c.ID] {
			return false
		}
		if filter.HasPositiveCharge && !withPositiveCharge[c.ID] {
			return false
		}
		return true
	})
}

func seq[T any](ctx context.Context, items []T, err error, match func(T) bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		if err != nil {
			yield(zero, err)
			return
		}
		for _, item := range items {
			if ctxErr := ctx.Err(); ctxErr != nil {
				yield(zero, fmt.Errorf("%w: %w", billingdomain.ErrProviderUnavailable, ctxErr))
				return
			}
			if !match(item) {
				continue
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

var _ billingdomain.Provider = (*Store)(nil)
