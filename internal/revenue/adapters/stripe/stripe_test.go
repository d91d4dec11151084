package stripe

import (
	"testing"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
	"github.com/smallbiznis/profitable/internal/revenue/interval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestExtract(t *testing.T) {
	two := int64(2)

	tests := []struct {
		name        string
		data        string
		quantity    *int64
		wantMonthly float64
		wantErr     error
	}{
		{
			name:        "monthly",
			data:        `{"subscription_items":[{"price":{"unit_amount":1000,"recurring":{"interval":"month","interval_count":1}}}]}`,
			wantMonthly: 1000,
		},
		{
			name:        "yearly with quantity",
			data:        `{"subscription_items":[{"price":{"unit_amount":12000,"recurring":{"interval":"year"}}}]}`,
			quantity:    &two,
			wantMonthly: 2000,
		},
		{
			name:        "interval count defaults to one",
			data:        `{"subscription_items":[{"price":{"unit_amount":500,"recurring":{"interval":"week"}}}]}`,
			wantMonthly: 2000,
		},
		{
			name:        "uses first item only",
			data:        `{"subscription_items":[{"price":{"unit_amount":100,"recurring":{"interval":"month"}}},{"price":{"unit_amount":9999,"recurring":{"interval":"month"}}}]}`,
			wantMonthly: 100,
		},
		{name: "empty items", data: `{"subscription_items":[]}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "missing items", data: `{}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "missing price", data: `{"subscription_items":[{}]}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "null amount", data: `{"subscription_items":[{"price":{"unit_amount":null,"recurring":{"interval":"month"}}}]}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "missing recurring", data: `{"subscription_items":[{"price":{"unit_amount":100}}]}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "string amount", data: `{"subscription_items":[{"price":{"unit_amount":"100","recurring":{"interval":"month"}}}]}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "items not a list", data: `{"subscription_items":{"price":{}}}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "corrupted", data: `{"subscription_items":[{"price":`, wantErr: revenuedomain.ErrMalformedBillingData},
	}

	adapter := New()
	assert.Equal(t, billingdomain.ProcessorStripe, adapter.Processor())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sub := billingdomain.Subscription{Quantity: tc.quantity, Data: datatypes.JSON(tc.data)}
			terms, err := adapter.Extract(sub)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			monthly, err := interval.Normalize(terms)
			require.NoError(t, err)
			assert.InDelta(t, tc.wantMonthly, monthly, 1e-9)
		})
	}
}
