package paddlebilling

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
	return billingdomain.ProcessorPaddleBilling
}

// Extract reads the first item's price. Paddle sends amounts as strings in
// minor units, so both strings and numbers are accepted.
func (a *Adapter) Extract(sub billingdomain.Subscription) (interval.Terms, error) {
	var payload paddleSubscription
	if err := adapters.Decode(sub.Data, &payload); err != nil {
		return interval.Terms{}, err
	}
	if len(payload.Items) == 0 {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	price := payload.Items[0].Price
	if price == nil || price.UnitPrice == nil || price.UnitPrice.Amount == nil || price.BillingCycle == nil {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}
	cycle := price.BillingCycle
	if cycle.Interval == nil || cycle.Frequency == nil {
		return interval.Terms{}, revenuedomain.ErrNoBillingTerms
	}

	return interval.Terms{
		Amount:        price.UnitPrice.Amount.Float(),
		Quantity:      sub.EffectiveQuantity(),
		Interval:      *cycle.Interval,
		IntervalCount: cycle.Frequency,
	}, nil
}

type paddleSubscription struct {
	Items []paddleItem `json:"items"`
}

type paddleItem struct {
	Price *paddlePrice `json:"price"`
}

type paddlePrice struct {
	UnitPrice    *paddleMoney        `json:"unit_price"`
	BillingCycle *paddleBillingCycle `json:"billing_cycle"`
}

type paddleMoney struct {
	Amount       *adapters.Number `json:"amount"`
	CurrencyCode string           `json:"currency_code"`
}

type paddleBillingCycle struct {
	Interval  *string `json:"interval"`
	Frequency *int64  `json:"frequency"`
}
