package braintree

import (
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/revenue/adapters"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
	"github.com/smallbiznis/profitable/internal/revenue/interval"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Processor() billingdomain.Processor {
	return billingdomain.ProcessorBraintree
}

func (a *Adapter) Extract(sub billingdomain.Subscription) (interval.Terms, error) {
	var payload braintreeSubscription
	if err := adapters.Decode(sub.Data, &payload); err != nil {
		return interval.Terms{}, err
	}
	if payload.Price == nil || payload.BillingPeriodUnit == nil {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	count := adapters.Int64(1)
	if payload.BillingPeriodFrequency != nil {
		count = payload.BillingPeriodFrequency
	}

	return interval.Terms{
		Amount:        payload.Price,
		Quantity:      sub.EffectiveQuantity(),
		Interval:      *payload.BillingPeriodUnit,
		IntervalCount: count,
	}, nil
}

type braintreeSubscription struct {
	Price                  *float64 `json:"price"`
	BillingPeriodUnit      *string  `json:"billing_period_unit"`
	BillingPeriodFrequency *int64   `json:"billing_period_frequency"`
}
