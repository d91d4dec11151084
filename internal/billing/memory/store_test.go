package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreFillsProcessorFromCustomer(t *testing.T) {
	store := NewStore()
	store.AddCustomer(billingdomain.Customer{ID: 1, Processor: "braintree"})
	store.AddSubscription(billingdomain.Subscription{ID: 10, CustomerID: 1, Status: billingdomain.SubscriptionStatusActive})

	var got []billingdomain.Subscription
	for sub, err := range store.ActiveSubscriptions(context.Background()) {
		require.NoError(t, err)
		got = append(got, sub)
	}
	require.Len(t, got, 1)
	assert.Equal(t, billingdomain.ProcessorBraintree, got[0].Processor())
}

func TestStoreCustomerFilters(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore()
	store.AddCustomer(
		billingdomain.Customer{ID: 1, Processor: "stripe", CreatedAt: now},
		billingdomain.Customer{ID: 2, Processor: "stripe", CreatedAt: now},
	)
	store.AddSubscription(billingdomain.Subscription{ID: 10, CustomerID: 1, Status: billingdomain.SubscriptionStatusActive})
	store.AddCharge(billingdomain.Charge{ID: 100, CustomerID: 2, Amount: 500})

	count := func(filter billingdomain.CustomerFilter) int {
		n := 0
		for _, err := range store.Customers(context.Background(), filter) {
			require.NoError(t, err)
			n++
		}
		return n
	}
	assert.Equal(t, 2, count(billingdomain.CustomerFilter{}))
	assert.Equal(t, 1, count(billingdomain.CustomerFilter{HasSubscription: true}))
	assert.Equal(t, 1, count(billingdomain.CustomerFilter{HasPositiveCharge: true}))
	assert.Equal(t, 0, count(billingdomain.CustomerFilter{Created: billingdomain.Before(now)}))
}

func TestStoreFailWith(t *testing.T) {
	store := NewStore()
	store.FailWith(errors.New("connection refused"))

	var gotErr error
	for _, err := range store.Charges(context.Background(), billingdomain.ChargeFilter{}) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, billingdomain.ErrProviderUnavailable)

	store.FailWith(nil)
	for _, err := range store.Charges(context.Background(), billingdomain.ChargeFilter{}) {
		require.NoError(t, err)
	}
}
