package stripe

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
	return billingdomain.ProcessorStripe
}

// Extract reads the first subscription item's price.
func (a *Adapter) Extract(sub billingdomain.Subscription) (interval.Terms, error) {
	var payload stripeSubscription
	if err := adapters.Decode(sub.Data, &payload); err != nil {
		return interval.Terms{}, err
	}
	if len(payload.SubscriptionItems) == 0 {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	price := payload.SubscriptionItems[0].Price
	if price == nil || price.UnitAmount == nil || price.Recurring == nil || price.Recurring.Interval == nil {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	count := adapters.Int64(1)
	if price.Recurring.IntervalCount != nil {
		count = price.Recurring.IntervalCount
	}

	return interval.Terms{
		Amount:        price.UnitAmount,
		Quantity:      sub.EffectiveQuantity(),
		Interval:      *price.Recurring.Interval,
		IntervalCount: count,
	}, nil
}

type stripeSubscription struct {
	SubscriptionItems []stripeItem `json:"subscription_items"`
}

type stripeItem struct {
	Price *stripePrice `json:"price"`
}

type stripePrice struct {
	UnitAmount *float64         `json:"unit_amount"`
	Recurring  *stripeRecurring `json:"recurring"`
}

type stripeRecurring struct {
	Interval      *string `json:"interval"`
	IntervalCount *int64  `json:"interval_count"`
}
