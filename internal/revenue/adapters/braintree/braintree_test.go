package braintree

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
	three := int64(3)

	tests := []struct {
		name        string
		data        string
		quantity    *int64
		wantMonthly float64
		wantErr     error
	}{
		{name: "weekly", data: `{"price":250,"billing_period_unit":"week","billing_period_frequency":1}`, wantMonthly: 1000},
		{name: "frequency defaults to one", data: `{"price":1000,"billing_period_unit":"month"}`, wantMonthly: 1000},
		{name: "quarterly", data: `{"price":3000,"billing_period_unit":"month","billing_period_frequency":3}`, wantMonthly: 1000},
		{name: "quantity", data: `{"price":1000,"billing_period_unit":"month"}`, quantity: &three, wantMonthly: 3000},
		{name: "missing price", data: `{"billing_period_unit":"month"}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "missing unit", data: `{"price":1000}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "price object", data: `{"price":{"amount":1000},"billing_period_unit":"month"}`, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "empty payload", data: ``, wantErr: revenuedomain.ErrNoBillingTerms},
		{name: "corrupted", data: `{"price":`, wantErr: revenuedomain.ErrMalformedBillingData},
	}

	adapter := New()
	assert.Equal(t, billingdomain.ProcessorBraintree, adapter.Processor())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			terms, err := adapter.Extract(billingdomain.Subscription{Quantity: tc.quantity, Data: datatypes.JSON(tc.data)})
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
