package domain

import (
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/revenue/interval"
)

// Adapter extracts billing terms from one processor's raw subscription payload.
type Adapter interface {
	Processor() billingdomain.Processor
	Extract(sub billingdomain.Subscription) (interval.Terms, error)
}
