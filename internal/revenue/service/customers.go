package service

import (
	"context"
	"iter"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
)

func (s *Service) Churn(ctx context.Context, period time.Duration) (float64, error) {
	var rate float64
	err := s.observe(ctx, "churn", func(ctx context.Context) error {
		var err error
		rate, err = s.churn(ctx, period)
		return err
	})
	if err != nil {
		return 0, calculationFailed("churn", err)
	}
	return rate, nil
}

// churn is churned customers over customers subscribed before the window, as a percentage.
func (s *Service) churn(ctx context.Context, period time.Duration) (float64, error) {
	start, _, err := s.window(period)
	if err != nil {
		return 0, err
	}
	activeBefore, err := distinctCustomers(s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: activeStatuses,
		Created:  billingdomain.Before(start),
	}))
	if err != nil {
		return 0, err
	}
	if activeBefore == 0 {
		return 0, nil
	}
	churned, err := s.churnedCustomers(ctx, period)
	if err != nil {
		return 0, err
	}
	return percentage(float64(churned), float64(activeBefore)), nil
}

func (s *Service) ChurnedCustomers(ctx context.Context, period time.Duration) (int64, error) {
	var count int64
	err := s.observe(ctx, "churned_customers", func(ctx context.Context) error {
		var err error
		count, err = s.churnedCustomers(ctx, period)
		return err
	})
	if err != nil {
		return 0, calculationFailed("churned_customers", err)
	}
	return count, nil
}

func (s *Service) churnedCustomers(ctx context.Context, period time.Duration) (int64, error) {
	start, now, err := s.window(period)
	if err != nil {
		return 0, err
	}
	return distinctCustomers(s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: churnedStatuses,
		Ends:     billingdomain.Between(start, now),
	}))
}

func (s *Service) TotalCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := s.observe(ctx, "total_customers", func(ctx context.Context) error {
		var err error
		count, err = countSeq(s.provider.Customers(ctx, billingdomain.CustomerFilter{}))
		return err
	})
	if err != nil {
		return 0, calculationFailed("total_customers", err)
	}
	return count, nil
}

func (s *Service) NewCustomers(ctx context.Context, period time.Duration) (int64, error) {
	var count int64
	err := s.observe(ctx, "new_customers", func(ctx context.Context) error {
		start, now, err := s.window(period)
		if err != nil {
			return err
		}
		count, err = countSeq(s.provider.Customers(ctx, billingdomain.CustomerFilter{
			Created: billingdomain.Between(start, now),
		}))
		return err
	})
	if err != nil {
		return 0, calculationFailed("new_customers", err)
	}
	return count, nil
}

func (s *Service) TotalSubscribers(ctx context.Context) (int64, error) {
	var count int64
	err := s.observe(ctx, "total_subscribers", func(ctx context.Context) error {
		var err error
		count, err = distinctCustomers(s.provider.ActiveSubscriptions(ctx))
		return err
	})
	if err != nil {
		return 0, calculationFailed("total_subscribers", err)
	}
	return count, nil
}

func (s *Service) NewSubscribers(ctx context.Context, period time.Duration) (int64, error) {
	var count int64
	err := s.observe(ctx, "new_subscribers", func(ctx context.Context) error {
		start, now, err := s.window(period)
		if err != nil {
			return err
		}
		count, err = distinctCustomers(s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
			Statuses: activeStatuses,
			Created:  billingdomain.Between(start, now),
		}))
		return err
	})
	if err != nil {
		return 0, calculationFailed("new_subscribers", err)
	}
	return count, nil
}

func distinctCustomers(subs iter.Seq2[billingdomain.Subscription, error]) (int64, error) {
	seen := map[snowflake.ID]struct{}{}
	for sub, err := range subs {
		if err != nil {
			return 0, err
		}
		seen[sub.CustomerID] = struct{}{}
	}
	return int64(len(seen)), nil
}

func countSeq[T any](seq iter.Seq2[T, error]) (int64, error) {
	var n int64
	for _, err := range seq {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
