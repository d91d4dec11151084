// Package domain contains read models for subscriptions, charges and customers
// owned by the external billing system.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Processor identifies the payment processor that produced a billing record.
type Processor string

const (
	ProcessorStripe        Processor = "stripe"
	ProcessorBraintree     Processor = "braintree"
	ProcessorPaddleBilling Processor = "paddle_billing"
	ProcessorPaddleClassic Processor = "paddle_classic"
	ProcessorUnknown       Processor = "unknown"
)

// ParseProcessor maps a stored processor name onto the closed set of processors.
func ParseProcessor(name string) Processor {
	switch Processor(strings.ToLower(strings.TrimSpace(name))) {
	case ProcessorStripe:
		return ProcessorStripe
	case ProcessorBraintree:
		return ProcessorBraintree
	case ProcessorPaddleBilling:
		return ProcessorPaddleBilling
	case ProcessorPaddleClassic:
		return ProcessorPaddleClassic
	default:
		return ProcessorUnknown
	}
}

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPaused   SubscriptionStatus = "paused"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusEnded    SubscriptionStatus = "ended"
)

// ContributesMRR reports whether a subscription in this status counts toward steady-state MRR.
func (s SubscriptionStatus) ContributesMRR() bool {
	return s == SubscriptionStatusActive
}

// Churned reports whether the status is terminal.
func (s SubscriptionStatus) Churned() bool {
	return s == SubscriptionStatusCanceled || s == SubscriptionStatusEnded
}

// Subscription is a customer's recurring billing agreement as recorded by a processor.
type Subscription struct {
	ID         snowflake.ID       `gorm:"primaryKey"`
	CustomerID snowflake.ID       `gorm:"not null;index"`
	Status     SubscriptionStatus `gorm:"type:text;not null;index"`
	Quantity   *int64             `gorm:""`
	// ProcessorName is read from the owning customer.
	ProcessorName      string         `gorm:"column:processor;->;-:migration"`
	CreatedAt          time.Time      `gorm:"not null;index"`
	UpdatedAt          time.Time      `gorm:"not null"`
	EndsAt             *time.Time     `gorm:"index"`
	CurrentPeriodStart *time.Time     `gorm:""`
	CurrentPeriodEnd   *time.Time     `gorm:""`
	Data               datatypes.JSON `gorm:""`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// Processor returns the processor variant for this subscription.
func (s Subscription) Processor() Processor {
	return ParseProcessor(s.ProcessorName)
}

// EffectiveQuantity returns the billed quantity, defaulting to 1 when absent or invalid.
func (s Subscription) EffectiveQuantity() int64 {
	if s.Quantity == nil || *s.Quantity < 1 {
		return 1
	}
	return *s.Quantity
}

// Charge is a single payment attempt.
type Charge struct {
	ID             snowflake.ID  `gorm:"primaryKey"`
	CustomerID     snowflake.ID  `gorm:"not null;index"`
	SubscriptionID *snowflake.ID `gorm:"index"`
	Amount         int64         `gorm:"not null"`
	Paid           *bool         `gorm:""`
	Status         *string       `gorm:"type:text"`
	CreatedAt      time.Time     `gorm:"not null;index"`
}

// TableName sets the database table name.
func (Charge) TableName() string { return "charges" }

// ChargeStatusSucceeded is the only explicit status that marks a charge as paid.
const ChargeStatusSucceeded = "succeeded"

// IsPaid reports whether the charge counts as revenue.
func (c Charge) IsPaid() bool {
	if c.Paid != nil && !*c.Paid {
		return false
	}
	if c.Status != nil && *c.Status != ChargeStatusSucceeded {
		return false
	}
	return c.Amount > 0
}

// Customer is a billed party at one processor.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Processor string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;index"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
