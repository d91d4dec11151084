package service

import (
	"context"
	"math"

	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

// TimeToNextMRRMilestone projects when MRR reaches the next milestone if the
// growth rate of the last DefaultPeriod holds, compounding monthly.
func (s *Service) TimeToNextMRRMilestone(ctx context.Context) (revenuedomain.MilestoneProjection, error) {
	var projection revenuedomain.MilestoneProjection
	err := s.observe(ctx, "time_to_next_mrr_milestone", func(ctx context.Context) error {
		mrr, err := s.rawMRR(ctx, s.provider.ActiveSubscriptions(ctx))
		if err != nil {
			return err
		}
		current := mrr / 100

		next, ok := nextMilestone(s.milestones.Milestones(), current)
		if !ok {
			projection = revenuedomain.MilestoneProjection{Status: revenuedomain.MilestoneStatusReachedHighest}
			return nil
		}

		rate, err := s.mrrGrowthRate(ctx, DefaultPeriod)
		if err != nil {
			return err
		}
		if rate <= 0 || current <= 0 {
			projection = revenuedomain.MilestoneProjection{
				Status:        revenuedomain.MilestoneStatusInsufficientData,
				NextMilestone: next,
			}
			return nil
		}

		months := int64(math.Ceil(math.Log(next/current) / math.Log(1+rate/100)))
		days := months * 30
		projection = revenuedomain.MilestoneProjection{
			Status:        revenuedomain.MilestoneStatusProjected,
			NextMilestone: next,
			Months:        months,
			Days:          days,
			ProjectedAt:   s.clock.Now().AddDate(0, 0, int(days)),
		}
		return nil
	})
	if err != nil {
		return revenuedomain.MilestoneProjection{}, calculationFailed("time_to_next_mrr_milestone", err)
	}
	return projection, nil
}

// nextMilestone returns the first milestone strictly greater than current.
func nextMilestone(milestones []float64, current float64) (float64, bool) {
	for _, m := range milestones {
		if m > current {
			return m, true
		}
	}
	return 0, false
}
