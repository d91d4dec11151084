package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MetricsConfig tunes how revenue metrics are computed and served.
type MetricsConfig struct {
	// Milestones are MRR thresholds in whole currency units, ascending.
	Milestones          []float64 `mapstructure:"milestones"`
	DefaultPeriodDays   int       `mapstructure:"default_period_days"`
	ValuationMultiplier string    `mapstructure:"valuation_multiplier"`
	CacheTTLSeconds     int       `mapstructure:"cache_ttl_seconds"`
}

func (c MetricsConfig) DefaultPeriod() time.Duration {
	return time.Duration(c.DefaultPeriodDays) * 24 * time.Hour
}

func (c MetricsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Milestones: []float64{
			5, 10, 20, 30, 50, 75, 100, 200, 300, 400, 500,
			1_000, 2_000, 3_000, 5_000, 10_000, 20_000, 30_000, 50_000, 83_333,
			100_000, 250_000, 500_000, 1_000_000, 5_000_000, 10_000_000,
			25_000_000, 50_000_000, 75_000_000, 100_000_000,
		},
		DefaultPeriodDays:   30,
		ValuationMultiplier: "3x",
		CacheTTLSeconds:     300,
	}
}

type MetricsConfigHolder struct {
	current atomic.Value // holds MetricsConfig
}

// NewMetricsConfigHolder reads metrics.yml from the standard locations and
// keeps it reloaded on change.
func NewMetricsConfigHolder(log *zap.Logger) (*MetricsConfigHolder, error) {
	return newMetricsConfigHolder(log, "/var/lib/profitable/config", "/etc/profitable", ".")
}

func newMetricsConfigHolder(log *zap.Logger, paths ...string) (*MetricsConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.metrics")

	v := viper.New()
	v.SetConfigName("metrics")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix("PROFITABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMetricsConfig()
	v.SetDefault("metrics.milestones", defaults.Milestones)
	v.SetDefault("metrics.default_period_days", defaults.DefaultPeriodDays)
	v.SetDefault("metrics.valuation_multiplier", defaults.ValuationMultiplier)
	v.SetDefault("metrics.cache_ttl_seconds", defaults.CacheTTLSeconds)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := decodeMetricsConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validateMetricsConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MetricsConfigHolder{}
	holder.current.Store(cfg)

	if !fileFound {
		log.Info("metrics config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeMetricsConfig(v)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateMetricsConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// decodeMetricsConfig unmarshals the whole tree so defaults fill keys the file omits.
func decodeMetricsConfig(v *viper.Viper) (MetricsConfig, error) {
	var root struct {
		Metrics MetricsConfig `mapstructure:"metrics"`
	}
	if err := v.Unmarshal(&root); err != nil {
		return MetricsConfig{}, err
	}
	return root.Metrics, nil
}

func (h *MetricsConfigHolder) Get() MetricsConfig {
	return h.current.Load().(MetricsConfig)
}

// Milestones satisfies the engine's milestone source.
func (h *MetricsConfigHolder) Milestones() []float64 {
	return h.Get().Milestones
}

func validateMetricsConfig(cfg MetricsConfig) error {
	if len(cfg.Milestones) == 0 {
		return errors.New("metrics.milestones cannot be empty")
	}
	for i, m := range cfg.Milestones {
		if m <= 0 {
			return fmt.Errorf("metrics.milestones[%d] must be positive", i)
		}
		if i > 0 && m <= cfg.Milestones[i-1] {
			return fmt.Errorf("metrics.milestones must be ascending at index %d", i)
		}
	}
	if cfg.DefaultPeriodDays <= 0 {
		return errors.New("metrics.default_period_days must be positive")
	}
	if cfg.CacheTTLSeconds < 0 {
		return errors.New("metrics.cache_ttl_seconds cannot be negative")
	}
	return nil
}
