package report

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/profitable/internal/clock"
	"github.com/smallbiznis/profitable/internal/config"
	"github.com/smallbiznis/profitable/internal/format"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Entry is one formatted metric.
type Entry struct {
	Name    Metric      `json:"name"`
	Value   float64     `json:"value"`
	Kind    format.Kind `json:"kind"`
	Display string      `json:"display"`
}

// Report is the full metric set for one period.
type Report struct {
	Period           string                            `json:"period"`
	GeneratedAt      time.Time                         `json:"generated_at"`
	Metrics          []Entry                           `json:"metrics"`
	Milestone        revenuedomain.MilestoneProjection `json:"milestone"`
	MilestoneDisplay string                            `json:"milestone_display"`
}

// Lookup returns the entry for name.
func (r Report) Lookup(name Metric) (Entry, bool) {
	for _, e := range r.Metrics {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

type Params struct {
	fx.In

	Service  revenuedomain.Service
	Clock    clock.Clock
	Log      *zap.Logger
	Gauges   *Gauges                     `optional:"true"`
	Redis    *redis.Client               `optional:"true"`
	Settings *config.MetricsConfigHolder `optional:"true"`
}

// Builder runs engine calculations and shapes them for display.
type Builder struct {
	svc      revenuedomain.Service
	clock    clock.Clock
	log      *zap.Logger
	gauges   *Gauges
	cache    *Cache
	settings *config.MetricsConfigHolder
	metrics  map[Metric]definition
}

func NewBuilder(p Params) *Builder {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("report")

	b := &Builder{
		svc:      p.Service,
		clock:    p.Clock,
		log:      log,
		gauges:   p.Gauges,
		settings: p.Settings,
		metrics:  catalog(p.Service),
	}
	if p.Redis != nil {
		b.cache = NewCache(p.Redis, b.cacheTTL, log)
	}
	return b
}

// Build computes every metric for period. A cached report is returned when one
// exists for the same period.
func (b *Builder) Build(ctx context.Context, period time.Duration) (Report, error) {
	if period <= 0 {
		return Report{}, revenuedomain.ErrInvalidPeriod
	}
	if cached, ok := b.cache.Get(ctx, period); ok {
		b.gauges.Record(cached)
		return cached, nil
	}

	q := Query{Period: period, Multiplier: b.defaultMultiplier()}
	out := Report{
		Period:      period.String(),
		GeneratedAt: b.clock.Now(),
		Metrics:     make([]Entry, 0, len(b.metrics)),
	}
	for _, name := range Metrics() {
		entry, err := b.compute(ctx, name, q)
		if err != nil {
			return Report{}, err
		}
		out.Metrics = append(out.Metrics, entry)
	}

	milestone, err := b.svc.TimeToNextMRRMilestone(ctx)
	if err != nil {
		return Report{}, err
	}
	out.Milestone = milestone
	out.MilestoneDisplay = milestone.String()

	b.gauges.Record(out)
	b.cache.Set(ctx, period, out)
	return out, nil
}

// Metric computes a single metric. A nil multiplier uses the configured default.
func (b *Builder) Metric(ctx context.Context, name Metric, period time.Duration, multiplier any) (Entry, error) {
	if period <= 0 {
		return Entry{}, revenuedomain.ErrInvalidPeriod
	}
	if multiplier == nil {
		multiplier = b.defaultMultiplier()
	}
	return b.compute(ctx, name, Query{Period: period, Multiplier: multiplier})
}

func (b *Builder) compute(ctx context.Context, name Metric, q Query) (Entry, error) {
	def, ok := b.metrics[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownMetric, name)
	}
	value, err := def.compute(ctx, q)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:    name,
		Value:   value,
		Kind:    def.kind,
		Display: format.Format(value, def.kind, format.DefaultPrecision),
	}, nil
}

// DefaultPeriod is the configured lookback used when a caller gives none.
func (b *Builder) DefaultPeriod() time.Duration {
	if b.settings == nil {
		return config.DefaultMetricsConfig().DefaultPeriod()
	}
	return b.settings.Get().DefaultPeriod()
}

func (b *Builder) defaultMultiplier() any {
	if b.settings == nil {
		return config.DefaultMetricsConfig().ValuationMultiplier
	}
	return b.settings.Get().ValuationMultiplier
}

func (b *Builder) cacheTTL() time.Duration {
	if b.settings == nil {
		return config.DefaultMetricsConfig().CacheTTL()
	}
	return b.settings.Get().CacheTTL()
}
