package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Service computes recurring revenue metrics. Money is in minor currency
// units and rates are percentages rounded to two decimals.
type Service interface {
	MRR(ctx context.Context) (int64, error)
	ARR(ctx context.Context) (int64, error)
	Churn(ctx context.Context, period time.Duration) (float64, error)
	NewMRR(ctx context.Context, period time.Duration) (int64, error)
	ChurnedMRR(ctx context.Context, period time.Duration) (int64, error)
	MRRGrowth(ctx context.Context, period time.Duration) (int64, error)
	MRRGrowthRate(ctx context.Context, period time.Duration) (float64, error)
	AverageRevenuePerCustomer(ctx context.Context) (int64, error)
	LifetimeValue(ctx context.Context) (int64, error)
	EstimatedValuation(ctx context.Context, multiplier any) (int64, error)
	TimeToNextMRRMilestone(ctx context.Context) (MilestoneProjection, error)

	AllTimeRevenue(ctx context.Context) (int64, error)
	RevenueInPeriod(ctx context.Context, period time.Duration) (int64, error)
	RecurringRevenueInPeriod(ctx context.Context, period time.Duration) (int64, error)
	TotalCustomers(ctx context.Context) (int64, error)
	NewCustomers(ctx context.Context, period time.Duration) (int64, error)
	TotalSubscribers(ctx context.Context) (int64, error)
	NewSubscribers(ctx context.Context, period time.Duration) (int64, error)
	ChurnedCustomers(ctx context.Context, period time.Duration) (int64, error)
}

// MilestoneSource supplies ascending MRR milestones in whole currency units.
type MilestoneSource interface {
	Milestones() []float64
}

type StaticMilestones []float64

func (m StaticMilestones) Milestones() []float64 { return m }

type MilestoneStatus string

const (
	MilestoneStatusProjected        MilestoneStatus = "projected"
	MilestoneStatusReachedHighest   MilestoneStatus = "reached_highest"
	MilestoneStatusInsufficientData MilestoneStatus = "insufficient_data"
)

type MilestoneProjection struct {
	Status MilestoneStatus `json:"status"`
	// NextMilestone is in whole currency units.
	NextMilestone float64   `json:"next_milestone,omitempty"`
	Months        int64     `json:"months,omitempty"`
	Days          int64     `json:"days,omitempty"`
	ProjectedAt   time.Time `json:"projected_at,omitzero"`
}

func (p MilestoneProjection) String() string {
	switch p.Status {
	case MilestoneStatusReachedHighest:
		return "Congratulations! You've reached the highest milestone."
	case MilestoneStatusProjected:
		return fmt.Sprintf("%d days left to $%s MRR (%s)",
			p.Days, humanize.Comma(int64(math.Round(p.NextMilestone))), p.ProjectedAt.Format("Jan 02, 2006"))
	default:
		return "Unable to calculate. Need more data or positive growth."
	}
}
