package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var base = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&billingdomain.Customer{}, &billingdomain.Subscription{}, &billingdomain.Charge{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &fixture{db: db, node: node}
}

func (f *fixture) customer(t *testing.T, processor string, createdAt time.Time) billingdomain.Customer {
	t.Helper()
	c := billingdomain.Customer{ID: f.node.Generate(), Processor: processor, CreatedAt: createdAt}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) subscription(t *testing.T, customer billingdomain.Customer, status billingdomain.SubscriptionStatus, createdAt time.Time, endsAt *time.Time) billingdomain.Subscription {
	t.Helper()
	s := billingdomain.Subscription{
		ID:         f.node.Generate(),
		CustomerID: customer.ID,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
		EndsAt:     endsAt,
		Data:       datatypes.JSON(`{"price": 1000, "billing_period_unit": "month"}`),
	}
	require.NoError(t, f.db.Create(&s).Error)
	return s
}

func (f *fixture) charge(t *testing.T, customer billingdomain.Customer, sub *billingdomain.Subscription, amount int64, paid *bool, status *string, createdAt time.Time) billingdomain.Charge {
	t.Helper()
	c := billingdomain.Charge{
		ID:         f.node.Generate(),
		CustomerID: customer.ID,
		Amount:     amount,
		Paid:       paid,
		Status:     status,
		CreatedAt:  createdAt,
	}
	if sub != nil {
		id := sub.ID
		c.SubscriptionID = &id
	}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for item, err := range seq {
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func boolPtr(v bool) *bool           { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestActiveSubscriptionsJoinsProcessor(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	stripeCustomer := f.customer(t, "stripe", base)
	braintreeCustomer := f.customer(t, "Braintree", base)
	active := f.subscription(t, stripeCustomer, billingdomain.SubscriptionStatusActive, base, nil)
	f.subscription(t, braintreeCustomer, billingdomain.SubscriptionStatusTrialing, base, nil)
	f.subscription(t, braintreeCustomer, billingdomain.SubscriptionStatusCanceled, base, timePtr(base.AddDate(0, 0, 3)))

	subs := collect(t, repo.ActiveSubscriptions(context.Background()))
	require.Len(t, subs, 1)
	assert.Equal(t, active.ID, subs[0].ID)
	assert.Equal(t, "stripe", subs[0].ProcessorName)
	assert.Equal(t, billingdomain.ProcessorStripe, subs[0].Processor())
	assert.JSONEq(t, `{"price": 1000, "billing_period_unit": "month"}`, string(subs[0].Data))
}

func TestSubscriptionsFilters(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	c := f.customer(t, "paddle_billing", base)
	inWindow := f.subscription(t, c, billingdomain.SubscriptionStatusCanceled, base, timePtr(base.AddDate(0, 0, 10)))
	f.subscription(t, c, billingdomain.SubscriptionStatusEnded, base, timePtr(base.AddDate(0, 0, 40)))
	f.subscription(t, c, billingdomain.SubscriptionStatusActive, base.AddDate(0, 0, 5), nil)

	churned := collect(t, repo.Subscriptions(context.Background(), billingdomain.SubscriptionFilter{
		Statuses: []billingdomain.SubscriptionStatus{billingdomain.SubscriptionStatusCanceled, billingdomain.SubscriptionStatusEnded},
		Ends:     billingdomain.Between(base, base.AddDate(0, 0, 30)),
	}))
	require.Len(t, churned, 1)
	assert.Equal(t, inWindow.ID, churned[0].ID)

	createdBefore := collect(t, repo.Subscriptions(context.Background(), billingdomain.SubscriptionFilter{
		Created: billingdomain.Before(base.AddDate(0, 0, 5)),
	}))
	assert.Len(t, createdBefore, 2)
}

func TestChargesFilters(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	c := f.customer(t, "stripe", base)
	sub := f.subscription(t, c, billingdomain.SubscriptionStatusActive, base, nil)

	f.charge(t, c, &sub, 1000, nil, nil, base)
	f.charge(t, c, nil, 500, boolPtr(true), strPtr("succeeded"), base.AddDate(0, 0, 1))
	f.charge(t, c, nil, 700, boolPtr(false), nil, base)
	f.charge(t, c, nil, 900, nil, strPtr("failed"), base)
	f.charge(t, c, nil, 0, boolPtr(true), nil, base)

	paid := collect(t, repo.Charges(context.Background(), billingdomain.ChargeFilter{Paid: boolPtr(true)}))
	assert.Len(t, paid, 2)

	unpaid := collect(t, repo.Charges(context.Background(), billingdomain.ChargeFilter{Paid: boolPtr(false)}))
	assert.Len(t, unpaid, 3)

	recurring := collect(t, repo.Charges(context.Background(), billingdomain.ChargeFilter{Paid: boolPtr(true), SubscriptionJoined: true}))
	require.Len(t, recurring, 1)
	assert.Equal(t, int64(1000), recurring[0].Amount)

	later := collect(t, repo.Charges(context.Background(), billingdomain.ChargeFilter{
		Paid:    boolPtr(true),
		Created: billingdomain.Between(base.Add(time.Hour), base.AddDate(0, 0, 2)),
	}))
	require.Len(t, later, 1)
	assert.Equal(t, int64(500), later[0].Amount)
}

func TestCustomersFilters(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	paying := f.customer(t, "stripe", base)
	subscribed := f.customer(t, "stripe", base.AddDate(0, 0, 2))
	f.customer(t, "stripe", base.AddDate(0, 0, 3))

	f.subscription(t, paying, billingdomain.SubscriptionStatusActive, base, nil)
	f.subscription(t, subscribed, billingdomain.SubscriptionStatusActive, base, nil)
	f.charge(t, paying, nil, 1000, nil, nil, base)
	f.charge(t, subscribed, nil, 1000, boolPtr(false), nil, base)

	all := collect(t, repo.Customers(context.Background(), billingdomain.CustomerFilter{}))
	assert.Len(t, all, 3)

	withSubs := collect(t, repo.Customers(context.Background(), billingdomain.CustomerFilter{HasSubscription: true}))
	assert.Len(t, withSubs, 2)

	payingOnly := collect(t, repo.Customers(context.Background(), billingdomain.CustomerFilter{HasPositiveCharge: true}))
	require.Len(t, payingOnly, 1)
	assert.Equal(t, paying.ID, payingOnly[0].ID)

	recent := collect(t, repo.Customers(context.Background(), billingdomain.CustomerFilter{
		Created: billingdomain.Between(base.AddDate(0, 0, 1), base.AddDate(0, 0, 30)),
	}))
	assert.Len(t, recent, 2)
}

func TestStreamStopsOnBreak(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	c := f.customer(t, "stripe", base)
	for i := 0; i < 3; i++ {
		f.subscription(t, c, billingdomain.SubscriptionStatusActive, base, nil)
	}

	seen := 0
	for _, err := range repo.ActiveSubscriptions(context.Background()) {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestProviderUnavailable(t *testing.T) {
	f := setup(t)
	repo := Provide(f.db)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	var gotErr error
	for _, err := range repo.ActiveSubscriptions(context.Background()) {
		gotErr = err
	}
	require.Error(t, gotErr)
	assert.True(t, errors.Is(gotErr, billingdomain.ErrProviderUnavailable))
}
