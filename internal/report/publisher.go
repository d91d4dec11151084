package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/smallbiznis/profitable/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Pusher sends the gathered registry to an external collector.
type Pusher interface {
	Push(ctx context.Context, gatherer prometheus.Gatherer) error
}

// PushgatewayPusher sends metrics to a Prometheus Pushgateway.
type PushgatewayPusher struct {
	endpoint string
	job      string
	grouping map[string]string
}

func NewPushgatewayPusher(endpoint, job string, grouping map[string]string) *PushgatewayPusher {
	return &PushgatewayPusher{
		endpoint: strings.TrimSpace(endpoint),
		job:      strings.TrimSpace(job),
		grouping: grouping,
	}
}

func (p *PushgatewayPusher) Push(ctx context.Context, gatherer prometheus.Gatherer) error {
	if p == nil || gatherer == nil {
		return nil
	}
	if p.endpoint == "" {
		return errors.New("pushgateway endpoint is required")
	}
	if p.job == "" {
		return errors.New("pushgateway job is required")
	}

	pusher := push.New(p.endpoint, p.job).Gatherer(gatherer)
	for key, value := range p.grouping {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		pusher = pusher.Grouping(key, value)
	}
	return pusher.PushContext(ctx)
}

// Publisher periodically rebuilds the report so gauges stay fresh, and pushes
// them when a Pushgateway is configured.
type Publisher struct {
	builder  *Builder
	pusher   Pusher
	gatherer prometheus.Gatherer
	period   time.Duration
	interval time.Duration
	log      *zap.Logger
}

func NewPublisher(builder *Builder, pusher Pusher, gatherer prometheus.Gatherer, cfg config.PublishConfig, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		builder:  builder,
		pusher:   pusher,
		gatherer: gatherer,
		period:   cfg.Period,
		interval: cfg.Interval,
		log:      log.Named("report.publisher"),
	}
}

// PublishOnce rebuilds the report and pushes it. Errors are returned for the caller to log.
func (p *Publisher) PublishOnce(ctx context.Context) error {
	if _, err := p.builder.Build(ctx, p.period); err != nil {
		return err
	}
	if p.pusher == nil {
		return nil
	}
	return p.pusher.Push(ctx, p.gatherer)
}

// Run publishes immediately and then on every interval until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	if err := p.PublishOnce(ctx); err != nil {
		p.log.Error("initial report publish failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := p.PublishOnce(ctx); err != nil {
				p.log.Error("periodic report publish failed", zap.Error(err))
			}
		case <-ctx.Done():
			p.log.Info("stopping report publisher")
			return
		}
	}
}

func registerPublisher(lc fx.Lifecycle, cfg config.Config, builder *Builder, registry *prometheus.Registry, log *zap.Logger) {
	if !cfg.Publish.Enabled || cfg.Publish.Interval <= 0 || cfg.Publish.Period <= 0 {
		return
	}

	var pusher Pusher
	if cfg.Publish.PushgatewayURL != "" {
		pusher = NewPushgatewayPusher(cfg.Publish.PushgatewayURL, cfg.AppName, map[string]string{
			"environment": cfg.Environment,
		})
	}
	publisher := NewPublisher(builder, pusher, registry, cfg.Publish, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting report publisher", zap.Duration("interval", cfg.Publish.Interval))
			go func() {
				defer close(done)
				publisher.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
