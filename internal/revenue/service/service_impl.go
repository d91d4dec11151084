package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	billingdomain "github.com/smallbiznis/profitable/internal/billing/domain"
	"github.com/smallbiznis/profitable/internal/clock"
	"github.com/smallbiznis/profitable/internal/config"
	obslogger "github.com/smallbiznis/profitable/internal/observability/logger"
	"github.com/smallbiznis/profitable/internal/observability/metrics"
	"github.com/smallbiznis/profitable/internal/observability/tracing"
	"github.com/smallbiznis/profitable/internal/revenue/adapters"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
	"github.com/smallbiznis/profitable/internal/revenue/interval"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DefaultPeriod is the window used when a metric depends on recent growth or churn.
const DefaultPeriod = 30 * 24 * time.Hour

type Params struct {
	fx.In

	Provider   billingdomain.Provider
	Registry   *adapters.Registry
	Clock      clock.Clock
	Log        *zap.Logger
	Metrics    *metrics.Metrics              `optional:"true"`
	Milestones revenuedomain.MilestoneSource `optional:"true"`
}

// Service holds no per-call state; every method reads a fresh snapshot from the provider.
type Service struct {
	provider   billingdomain.Provider
	registry   *adapters.Registry
	clock      clock.Clock
	log        *zap.Logger
	metrics    *metrics.Metrics
	milestones revenuedomain.MilestoneSource
	tracer     trace.Tracer
}

func NewService(p Params) revenuedomain.Service {
	milestones := p.Milestones
	if milestones == nil {
		milestones = revenuedomain.StaticMilestones(config.DefaultMetricsConfig().Milestones)
	}
	return &Service{
		provider:   p.Provider,
		registry:   p.Registry,
		clock:      p.Clock,
		log:        p.Log.Named("revenue.service"),
		metrics:    p.Metrics,
		milestones: milestones,
		tracer:     tracing.Tracer("profitable/revenue"),
	}
}

// ProcessSubscription returns the subscription's monthly recurring amount.
// Any failure is logged and yields 0 so one bad record never aborts a batch.
func (s *Service) ProcessSubscription(ctx context.Context, sub billingdomain.Subscription) (monthly float64) {
	processor := sub.Processor()
	log := obslogger.WithSubscription(s.log, sub.ID.String(), sub.ProcessorName)

	defer func() {
		if r := recover(); r != nil {
			log.Error("subscription processing panicked", zap.Any("panic", r))
			s.metrics.RecordSubscriptionProcessed(ctx, string(processor), metrics.OutcomeFailed)
			monthly = 0
		}
	}()

	adapter, err := s.registry.Resolve(processor)
	if err != nil {
		return s.skip(ctx, log, processor, err)
	}
	terms, err := adapter.Extract(sub)
	if err != nil {
		return s.skip(ctx, log, processor, err)
	}
	monthly, err = interval.Normalize(terms)
	if err != nil {
		return s.skip(ctx, log, processor, fmt.Errorf("%w: %q", err, terms.Interval))
	}
	if monthly < 0 || math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		log.Warn("discarding invalid monthly amount", zap.Float64("monthly", monthly))
		monthly = 0
	}

	s.metrics.RecordSubscriptionProcessed(ctx, string(processor), metrics.OutcomeOK)
	return monthly
}

func (s *Service) skip(ctx context.Context, log *zap.Logger, processor billingdomain.Processor, err error) float64 {
	outcome := metrics.OutcomeFailed
	switch {
	case errors.Is(err, revenuedomain.ErrNoBillingTerms):
		outcome = metrics.OutcomeNoTerms
		log.Warn("no billing terms", zap.Error(err))
	case errors.Is(err, revenuedomain.ErrUnknownProcessor):
		outcome = metrics.OutcomeUnknownProcessor
		log.Warn("unknown processor")
	case errors.Is(err, interval.ErrUnknownInterval):
		outcome = metrics.OutcomeUnknownInterval
		log.Warn("unknown billing interval", zap.Error(err))
	default:
		log.Error("failed to process subscription", zap.Error(err))
	}
	s.metrics.RecordSubscriptionProcessed(ctx, string(processor), outcome)
	return 0
}

// observe wraps a metric computation in a span and records its outcome.
func (s *Service) observe(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "revenue."+name, trace.WithAttributes(attribute.String("metric", name)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordCalculation(ctx, name, time.Since(start), err)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, name+" failed")
	}
	return err
}

func (s *Service) window(period time.Duration) (time.Time, time.Time, error) {
	if period <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s", revenuedomain.ErrInvalidPeriod, period)
	}
	now := s.clock.Now()
	return now.Add(-period), now, nil
}

func calculationFailed(metric string, err error) error {
	if errors.Is(err, revenuedomain.ErrCalculationFailed) || errors.Is(err, revenuedomain.ErrInvalidPeriod) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", revenuedomain.ErrCalculationFailed, metric, err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percentage returns part/whole*100 rounded to two decimals, or 0 when whole is 0.
func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return round2(part / whole * 100)
}

var (
	churnedStatuses = []billingdomain.SubscriptionStatus{
		billingdomain.SubscriptionStatusCanceled,
		billingdomain.SubscriptionStatusEnded,
	}
	activeStatuses = []billingdomain.SubscriptionStatus{
		billingdomain.SubscriptionStatusActive,
	}
)
