package paddleclassic

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
	return billingdomain.ProcessorPaddleClassic
}

// Extract reads the recurring price. Paddle Classic has no interval count.
func (a *Adapter) Extract(sub billingdomain.Subscription) (interval.Terms, error) {
	var payload classicSubscription
	if err := adapters.Decode(sub.Data, &payload); err != nil {
		return interval.Terms{}, err
	}
	if payload.RecurringPrice == nil || payload.RecurringInterval == nil {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	return interval.Terms{
		Amount:        payload.RecurringPrice,
		Quantity:      sub.EffectiveQuantity(),
		Interval:      *payload.RecurringInterval,
		IntervalCount: adapters.Int64(1),
	}, nil
}

type classicSubscription struct {
	RecurringPrice    *float64 `json:"recurring_price"`
	RecurringInterval *string  `json:"recurring_interval"`
}
