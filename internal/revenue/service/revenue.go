package service

import (
	"context"
	"iter"
	"time"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/revenue/proration"
)

func (s *Service) AllTimeRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := s.observe(ctx, "all_time_revenue", func(ctx context.Context) error {
		var err error
		total, err = s.allTimeRevenue(ctx)
		return err
	})
	if err != nil {
		return 0, calculationFailed("all_time_revenue", err)
	}
	return total, nil
}

func (s *Service) allTimeRevenue(ctx context.Context) (int64, error) {
	return sumPaid(s.provider.Charges(ctx, billingdomain.ChargeFilter{Paid: boolPtr(true)}))
}

func (s *Service) RevenueInPeriod(ctx context.Context, period time.Duration) (int64, error) {
	var total int64
	err := s.observe(ctx, "revenue_in_period", func(ctx context.Context) error {
		var err error
		total, err = s.revenueInPeriod(ctx, period, false)
		return err
	})
	if err != nil {
		return 0, calculationFailed("revenue_in_period", err)
	}
	return total, nil
}

func (s *Service) RecurringRevenueInPeriod(ctx context.Context, period time.Duration) (int64, error) {
	var total int64
	err := s.observe(ctx, "recurring_revenue_in_period", func(ctx context.Context) error {
		var err error
		total, err = s.revenueInPeriod(ctx, period, true)
		return err
	})
	if err != nil {
		return 0, calculationFailed("recurring_revenue_in_period", err)
	}
	return total, nil
}

func (s *Service) revenueInPeriod(ctx context.Context, period time.Duration, recurringOnly bool) (int64, error) {
	start, now, err := s.window(period)
	if err != nil {
		return 0, err
	}
	return sumPaid(s.provider.Charges(ctx, billingdomain.ChargeFilter{
		Paid:               boolPtr(true),
		Created:            billingdomain.Between(start, now),
		SubscriptionJoined: recurringOnly,
	}))
}

func (s *Service) AverageRevenuePerCustomer(ctx context.Context) (int64, error) {
	var arpc int64
	err := s.observe(ctx, "average_revenue_per_customer", func(ctx context.Context) error {
		var err error
		arpc, err = s.averageRevenuePerCustomer(ctx)
		return err
	})
	if err != nil {
		return 0, calculationFailed("average_revenue_per_customer", err)
	}
	return arpc, nil
}

func (s *Service) averageRevenuePerCustomer(ctx context.Context) (int64, error) {
	paying, err := countSeq(s.provider.Customers(ctx, billingdomain.CustomerFilter{HasPositiveCharge: true}))
	if err != nil {
		return 0, err
	}
	if paying == 0 {
		return 0, nil
	}
	revenue, err := s.allTimeRevenue(ctx)
	if err != nil {
		return 0, err
	}
	return proration.RoundMoney(float64(revenue) / float64(paying)), nil
}

// LifetimeValue is ARPC divided by the churn fraction over the default period.
// It is 0 when there are no customers or no churn.
func (s *Service) LifetimeValue(ctx context.Context) (int64, error) {
	var ltv int64
	err := s.observe(ctx, "lifetime_value", func(ctx context.Context) error {
		customers, err := countSeq(s.provider.Customers(ctx, billingdomain.CustomerFilter{}))
		if err != nil {
			return err
		}
		if customers == 0 {
			return nil
		}
		churn, err := s.churn(ctx, DefaultPeriod)
		if err != nil {
			return err
		}
		if churn <= 0 {
			return nil
		}
		arpc, err := s.averageRevenuePerCustomer(ctx)
		if err != nil {
			return err
		}
		ltv = proration.RoundMoney(float64(arpc) / (churn / 100))
		return nil
	})
	if err != nil {
		return 0, calculationFailed("lifetime_value", err)
	}
	return ltv, nil
}

func sumPaid(charges iter.Seq2[billingdomain.Charge, error]) (int64, error) {
	var total int64
	for charge, err := range charges {
		if err != nil {
			return 0, err
		}
		if !charge.IsPaid() {
			continue
		}
		total += charge.Amount
	}
	return total, nil
}

func boolPtr(v bool) *bool {
	return &v
}
