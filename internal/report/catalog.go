package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/profitable/internal/format"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

var ErrUnknownMetric = errors.New("unknown_metric")

// Metric names a single engine calculation exposed by the report.
type Metric string

const (
	MetricMRR                       Metric = "mrr"
	MetricARR                       Metric = "arr"
	MetricChurn                     Metric = "churn"
	MetricNewMRR                    Metric = "new_mrr"
	MetricChurnedMRR                Metric = "churned_mrr"
	MetricMRRGrowth                 Metric = "mrr_growth"
	MetricMRRGrowthRate             Metric = "mrr_growth_rate"
	MetricAverageRevenuePerCustomer Metric = "average_revenue_per_customer"
	MetricLifetimeValue             Metric = "lifetime_value"
	MetricEstimatedValuation        Metric = "estimated_valuation"
	MetricAllTimeRevenue            Metric = "all_time_revenue"
	MetricRevenueInPeriod           Metric = "revenue_in_period"
	MetricRecurringRevenueInPeriod  Metric = "recurring_revenue_in_period"
	MetricTotalCustomers            Metric = "total_customers"
	MetricNewCustomers              Metric = "new_customers"
	MetricChurnedCustomers          Metric = "churned_customers"
	MetricTotalSubscribers          Metric = "total_subscribers"
	MetricNewSubscribers            Metric = "new_subscribers"
)

// Query carries the arguments shared by every metric.
type Query struct {
	Period     time.Duration
	Multiplier any
}

type definition struct {
	kind    format.Kind
	compute func(ctx context.Context, q Query) (float64, error)
}

type computeFunc = func(ctx context.Context, q Query) (float64, error)

func scalar(fn func(context.Context) (int64, error)) computeFunc {
	return func(ctx context.Context, _ Query) (float64, error) {
		v, err := fn(ctx)
		return float64(v), err
	}
}

func periodic(fn func(context.Context, time.Duration) (int64, error)) computeFunc {
	return func(ctx context.Context, q Query) (float64, error) {
		v, err := fn(ctx, q.Period)
		return float64(v), err
	}
}

func rate(fn func(context.Context, time.Duration) (float64, error)) computeFunc {
	return func(ctx context.Context, q Query) (float64, error) {
		return fn(ctx, q.Period)
	}
}

func catalog(svc revenuedomain.Service) map[Metric]definition {
	valuation := func(ctx context.Context, q Query) (float64, error) {
		v, err := svc.EstimatedValuation(ctx, q.Multiplier)
		return float64(v), err
	}

	return map[Metric]definition{
		MetricMRR:                       {kind: format.KindCurrency, compute: scalar(svc.MRR)},
		MetricARR:                       {kind: format.KindCurrency, compute: scalar(svc.ARR)},
		MetricChurn:                     {kind: format.KindPercentage, compute: rate(svc.Churn)},
		MetricNewMRR:                    {kind: format.KindCurrency, compute: periodic(svc.NewMRR)},
		MetricChurnedMRR:                {kind: format.KindCurrency, compute: periodic(svc.ChurnedMRR)},
		MetricMRRGrowth:                 {kind: format.KindCurrency, compute: periodic(svc.MRRGrowth)},
		MetricMRRGrowthRate:             {kind: format.KindPercentage, compute: rate(svc.MRRGrowthRate)},
		MetricAverageRevenuePerCustomer: {kind: format.KindCurrency, compute: scalar(svc.AverageRevenuePerCustomer)},
		MetricLifetimeValue:             {kind: format.KindCurrency, compute: scalar(svc.LifetimeValue)},
		MetricEstimatedValuation:        {kind: format.KindCurrency, compute: valuation},
		MetricAllTimeRevenue:            {kind: format.KindCurrency, compute: scalar(svc.AllTimeRevenue)},
		MetricRevenueInPeriod:           {kind: format.KindCurrency, compute: periodic(svc.RevenueInPeriod)},
		MetricRecurringRevenueInPeriod:  {kind: format.KindCurrency, compute: periodic(svc.RecurringRevenueInPeriod)},
		MetricTotalCustomers:            {kind: format.KindInteger, compute: scalar(svc.TotalCustomers)},
		MetricNewCustomers:              {kind: format.KindInteger, compute: periodic(svc.NewCustomers)},
		MetricChurnedCustomers:          {kind: format.KindInteger, compute: periodic(svc.ChurnedCustomers)},
		MetricTotalSubscribers:          {kind: format.KindInteger, compute: scalar(svc.TotalSubscribers)},
		MetricNewSubscribers:            {kind: format.KindInteger, compute: periodic(svc.NewSubscribers)},
	}
}

// Metrics lists every metric in report order.
func Metrics() []Metric {
	return []Metric{
		MetricMRR,
		MetricARR,
		MetricNewMRR,
		MetricChurnedMRR,
		MetricMRRGrowth,
		MetricMRRGrowthRate,
		MetricChurn,
		MetricAverageRevenuePerCustomer,
		MetricLifetimeValue,
		MetricEstimatedValuation,
		MetricAllTimeRevenue,
		MetricRevenueInPeriod,
		MetricRecurringRevenueInPeriod,
		MetricTotalCustomers,
		MetricNewCustomers,
		MetricChurnedCustomers,
		MetricTotalSubscribers,
		MetricNewSubscribers,
	}
}

// ParseMetric accepts metric names case-insensitively, with dashes or underscores.
func ParseMetric(name string) (Metric, error) {
	normalized := Metric(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_"))
	for _, m := range Metrics() {
		if m == normalized {
			return m, nil
		}
	}
	return "", ErrUnknownMetric
}
