package report

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/profitable/internal/config"
	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

// Gauges exposes the latest report values to Prometheus. A nil *Gauges is a no-op.
type Gauges struct {
	values        *prometheus.GaugeVec
	milestoneDays prometheus.Gauge
}

func NewGauges(registerer prometheus.Registerer, cfg config.Config) *Gauges {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{"env": environment}

	values := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "profitable_metric_value",
		Help:        "Latest computed value of each revenue metric. Money is in minor units.",
		ConstLabels: constLabels,
	}, []string{"metric"})
	milestoneDays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "profitable_mrr_milestone_days",
		Help:        "Projected days until the next MRR milestone, -1 when no projection exists.",
		ConstLabels: constLabels,
	})
	registerer.MustRegister(values, milestoneDays)

	return &Gauges{values: values, milestoneDays: milestoneDays}
}

func (g *Gauges) Record(r Report) {
	if g == nil {
		return
	}
	for _, e := range r.Metrics {
		g.values.WithLabelValues(string(e.Name)).Set(e.Value)
	}
	if r.Milestone.Status == revenuedomain.MilestoneStatusProjected {
		g.milestoneDays.Set(float64(r.Milestone.Days))
	} else {
		g.milestoneDays.Set(-1)
	}
}
