package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
	ExportInterval   time.Duration
}

// Subscription processing outcomes.
const (
	OutcomeOK               = "ok"
	OutcomeNoTerms          = "no_terms"
	OutcomeUnknownProcessor = "unknown_processor"
	OutcomeUnknownInterval  = "unknown_interval"
	OutcomeFailed           = "failed"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	subscriptionsProcessed metric.Int64Counter
	calculations           metric.Int64Counter
	calculationDuration    metric.Float64Histogram
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "profitable"
	}
	meter := provider.Meter(name)

	subscriptionsProcessed, err := meter.Int64Counter("profitable_subscriptions_processed_total",
		metric.WithDescription("Subscriptions normalized to MRR, by processor and outcome."))
	if err != nil {
		return nil, err
	}
	calculations, err := meter.Int64Counter("profitable_metric_calculations_total",
		metric.WithDescription("Metric computations, by metric and status."))
	if err != nil {
		return nil, err
	}
	calculationDuration, err := meter.Float64Histogram("profitable_metric_calculation_duration_seconds",
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		subscriptionsProcessed: subscriptionsProcessed,
		calculations:           calculations,
		calculationDuration:    calculationDuration,
	}, nil
}

// RecordSubscriptionProcessed counts one subscription passing through normalization.
func (m *Metrics) RecordSubscriptionProcessed(ctx context.Context, processor, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("processor", strings.TrimSpace(processor)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.subscriptionsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCalculation counts a metric computation and its latency.
func (m *Metrics) RecordCalculation(ctx context.Context, metricName string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := FilterAttributes(
		attribute.String("metric", strings.TrimSpace(metricName)),
		attribute.String("status", status),
	)
	m.calculations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calculationDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"processor": {},
	"outcome":   {},
	"metric":    {},
	"status":    {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
