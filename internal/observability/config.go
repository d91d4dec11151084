package observability

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/profitable/internal/config"
)

// Config carries logging, tracing and OTLP metric settings for the metrics engine.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
	// Per-subscription skip warnings can flood the log on a large
	// billing store, so repeated messages are sampled per second.
	LogSampleFirst      int
	LogSampleThereafter int

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
	OtelExportInterval   time.Duration
}

func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName: strings.TrimSpace(cfg.AppName),
		Environment: strings.TrimSpace(envOr("DEPLOYMENT_ENV", cfg.Environment)),
		Version:     strings.TrimSpace(envOr("SERVICE_VERSION", cfg.AppVersion)),

		LogLevel:            strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(envOr("LOG_FORMAT", "json")),
		LogSampleFirst:      envInt("LOG_SAMPLE_FIRST", 100),
		LogSampleThereafter: envInt("LOG_SAMPLE_THEREAFTER", 100),

		OtelEnabled:          envBool("OTEL_ENABLED", cfg.IsProduction()),
		OtelExporterEndpoint: strings.TrimSpace(envOr("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)),
		OtelExporterProtocol: strings.ToLower(envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio:    envFloat("OTEL_SAMPLING_RATIO", 0.1),
		OtelExportInterval:   time.Duration(envInt("OTEL_METRIC_EXPORT_INTERVAL_SECONDS", 30)) * time.Second,
	}
	if out.ServiceName == "" {
		out.ServiceName = "profitable"
	}
	if traces := envOr("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", ""); traces != "" {
		out.OtelExporterProtocol = strings.ToLower(traces)
	}
	return out
}

// Debug is true for debug log level or any non-production environment name.
func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func envOr(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func envBool(key string, def bool) bool {
	parsed, err := strconv.ParseBool(envOr(key, ""))
	if err != nil {
		switch strings.ToLower(envOr(key, "")) {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		}
		return def
	}
	return parsed
}

func envInt(key string, def int) int {
	parsed, err := strconv.Atoi(envOr(key, ""))
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envFloat(key string, def float64) float64 {
	parsed, err := strconv.ParseFloat(envOr(key, ""), 64)
	if err != nil {
		return def
	}
	return parsed
}
