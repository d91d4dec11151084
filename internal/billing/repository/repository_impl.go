package repository

import (
	"context"
	"fmt"
	"iter"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"gorm.io/gorm"
)

const paidChargeCondition = "(charges.paid IS NULL OR charges.paid = ?) AND " +
	"(charges.status IS NULL OR charges.status = ?) AND charges.amount > 0"

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) billingdomain.Provider {
	return &repo{db: db}
}

func (r *repo) ActiveSubscriptions(ctx context.Context) iter.Seq2[billingdomain.Subscription, error] {
	return r.Subscriptions(ctx, billingdomain.SubscriptionFilter{
		Statuses: []billingdomain.SubscriptionStatus{billingdomain.SubscriptionStatusActive},
	})
}

func (r *repo) Subscriptions(ctx context.Context, filter billingdomain.SubscriptionFilter) iter.Seq2[billingdomain.Subscription, error] {
	query := r.db.WithContext(ctx).
		Model(&billingdomain.Subscription{}).
		Select("subscriptions.*, customers.processor AS processor").
		Joins("JOIN customers ON customers.id = subscriptions.customer_id")

	if len(filter.Statuses) > 0 {
		query = query.Where("subscriptions.status IN ?", filter.Statuses)
	}
	query = applyRange(query, "subscriptions.created_at", filter.Created)
	if filter.Ends != nil {
		query = query.Where("subscriptions.ends_at IS NOT NULL")
		query = applyRange(query, "subscriptions.ends_at", filter.Ends)
	}
	query = applyRange(query, "subscriptions.updated_at", filter.Updated)

	return stream[billingdomain.Subscription](query.Order("subscriptions.id ASC"))
}

func (r *repo) Charges(ctx context.Context, filter billingdomain.ChargeFilter) iter.Seq2[billingdomain.Charge, error] {
	query := r.db.WithContext(ctx).Model(&billingdomain.Charge{}).Select("charges.*")

	if filter.Paid != nil {
		if *filter.Paid {
			query = query.Where(paidChargeCondition, true, billingdomain.ChargeStatusSucceeded)
		} else {
			query = query.Where("NOT ("+paidChargeCondition+")", true, billingdomain.ChargeStatusSucceeded)
		}
	}
	query = applyRange(query, "charges.created_at", filter.Created)
	if filter.SubscriptionJoined {
		query = query.Joins("JOIN subscriptions ON subscriptions.id = charges.subscription_id")
	}

	return stream[billingdomain.Charge](query.Order("charges.id ASC"))
}

func (r *repo) Customers(ctx context.Context, filter billingdomain.CustomerFilter) iter.Seq2[billingdomain.Customer, error] {
	query := r.db.WithContext(ctx).Model(&billingdomain.Customer{})

	query = applyRange(query, "customers.created_at", filter.Created)
	if filter.HasSubscription {
		query = query.Where("EXISTS (SELECT 1 FROM subscriptions WHERE subscriptions.customer_id = customers.id)")
	}
	if filter.HasPositiveCharge {
		query = query.Where("EXISTS (SELECT 1 FROM charges WHERE charges.customer_id = customers.id AND "+
			paidChargeCondition+")", true, billingdomain.ChargeStatusSucceeded)
	}

	return stream[billingdomain.Customer](query.Order("customers.id ASC"))
}

func applyRange(query *gorm.DB, column string, r *billingdomain.TimeRange) *gorm.DB {
	if r == nil {
		return query
	}
	if !r.From.IsZero() {
		query = query.Where(column+" >= ?", r.From.UTC())
	}
	if !r.To.IsZero() {
		query = query.Where(column+" <= ?", r.To.UTC())
	}
	return query
}

// stream scans rows one at a time so large tables are never loaded whole.
func stream[T any](query *gorm.DB) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		rows, err := query.Rows()
		if err != nil {
			yield(zero, unavailable(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item T
			if err := query.ScanRows(rows, &item); err != nil {
				yield(zero, unavailable(err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, unavailable(err))
		}
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", billingdomain.ErrProviderUnavailable, err)
}
