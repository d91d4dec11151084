package service

import (
	"context"
	"iter"
	"time"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/revenue/proration"
)

func (s *Service) MRR(ctx context.Context) (int64, error) {
	var mrr float64
	err := s.observe(ctx, "mrr", func(ctx context.Context) error {
		var err error
		mrr, err = s.rawMRR(ctx, s.provider.ActiveSubscriptions(ctx))
		return err
	})
	if err != nil {
		return 0, calculationFailed("mrr", err)
	}
	return proration.RoundMoney(mrr), nil
}

func (s *Service) ARR(ctx context.Context) (int64, error) {
	var mrr float64
	err := s.observe(ctx, "arr", func(ctx context.Context) error {
		var err error
		mrr, err = s.rawMRR(ctx, s.provider.ActiveSubscriptions(ctx))
		return err
	})
	if err != nil {
		return 0, calculationFailed("arr", err)
	}
	return proration.RoundMoney(mrr * 12), nil
}

// mrrAt is MRR restricted to active subscriptions created at or before t.
func (s *Service) mrrAt(ctx context.Context, t time.Time) (int64, error) {
	subs := s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: activeStatuses,
		Created:  billingdomain.AtOrBefore(t),
	})
	mrr, err := s.rawMRR(ctx, subs)
	if err != nil {
		return 0, err
	}
	return proration.RoundMoney(mrr), nil
}

func (s *Service) rawMRR(ctx context.Context, subs iter.Seq2[billingdomain.Subscription, error]) (float64, error) {
	var total float64
	for sub, err := range subs {
		if err != nil {
			return 0, err
		}
		if !sub.Status.ContributesMRR() {
			continue
		}
		total += s.ProcessSubscription(ctx, sub)
	}
	return total, nil
}

func (s *Service) NewMRR(ctx context.Context, period time.Duration) (int64, error) {
	var total int64
	err := s.observe(ctx, "new_mrr", func(ctx context.Context) error {
		var err error
		total, err = s.newMRR(ctx, period)
		return err
	})
	if err != nil {
		return 0, calculationFailed("new_mrr", err)
	}
	return total, nil
}

func (s *Service) newMRR(ctx context.Context, period time.Duration) (int64, error) {
	start, now, err := s.window(period)
	if err != nil {
		return 0, err
	}

	subs := s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: activeStatuses,
		Created:  billingdomain.Between(start, now),
	})

	var total int64
	for sub, err := range subs {
		if err != nil {
			return 0, err
		}
		if !sub.Status.ContributesMRR() {
			continue
		}
		windowStart := start
		if sub.CreatedAt.After(windowStart) {
			windowStart = sub.CreatedAt
		}
		total += s.prorated(ctx, sub, windowStart, now)
	}
	return total, nil
}

func (s *Service) ChurnedMRR(ctx context.Context, period time.Duration) (int64, error) {
	var total int64
	err := s.observe(ctx, "churned_mrr", func(ctx context.Context) error {
		var err error
		total, err = s.churnedMRR(ctx, period)
		return err
	})
	if err != nil {
		return 0, calculationFailed("churned_mrr", err)
	}
	return total, nil
}

func (s *Service) churnedMRR(ctx context.Context, period time.Duration) (int64, error) {
	start, now, err := s.window(period)
	if err != nil {
		return 0, err
	}

	subs := s.provider.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: churnedStatuses,
		Ends:     billingdomain.Between(start, now),
	})

	var total int64
	for sub, err := range subs {
		if err != nil {
			return 0, err
		}
		if sub.EndsAt == nil {
			continue
		}
		total += s.prorated(ctx, sub, start, *sub.EndsAt)
	}
	return total, nil
}

// prorated apportions the subscription's MRR to [windowStart, windowEnd]
// against its current billing period. Without a period it counts in full.
func (s *Service) prorated(ctx context.Context, sub billingdomain.Subscription, windowStart, windowEnd time.Time) int64 {
	monthly := s.ProcessSubscription(ctx, sub)
	if monthly == 0 {
		return 0
	}
	var cycleStart, cycleEnd time.Time
	if sub.CurrentPeriodStart != nil && sub.CurrentPeriodEnd != nil {
		cycleStart, cycleEnd = *sub.CurrentPeriodStart, *sub.CurrentPeriodEnd
	}
	return proration.Prorate(monthly, cycleStart, cycleEnd, windowStart, windowEnd)
}

func (s *Service) MRRGrowth(ctx context.Context, period time.Duration) (int64, error) {
	var growth int64
	err := s.observe(ctx, "mrr_growth", func(ctx context.Context) error {
		added, err := s.newMRR(ctx, period)
		if err != nil {
			return err
		}
		churned, err := s.churnedMRR(ctx, period)
		if err != nil {
			return err
		}
		growth = added - churned
		return nil
	})
	if err != nil {
		return 0, calculationFailed("mrr_growth", err)
	}
	return growth, nil
}

func (s *Service) MRRGrowthRate(ctx context.Context, period time.Duration) (float64, error) {
	var rate float64
	err := s.observe(ctx, "mrr_growth_rate", func(ctx context.Context) error {
		var err error
		rate, err = s.mrrGrowthRate(ctx, period)
		return err
	})
	if err != nil {
		return 0, calculationFailed("mrr_growth_rate", err)
	}
	return rate, nil
}

func (s *Service) mrrGrowthRate(ctx context.Context, period time.Duration) (float64, error) {
	start, now, err := s.window(period)
	if err != nil {
		return 0, err
	}
	current, err := s.mrrAt(ctx, now)
	if err != nil {
		return 0, err
	}
	previous, err := s.mrrAt(ctx, start)
	if err != nil {
		return 0, err
	}
	return percentage(float64(current-previous), float64(previous)), nil
}
