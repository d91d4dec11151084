package service

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/smallbiznis/profitable/internal/revenue/proration"
)

const (
	DefaultMultiplier = 3.0
	MinMultiplier     = 0.1
	MaxMultiplier     = 100.0
)

// ParseMultiplier reads a valuation multiple such as 3, 2.5, "3" or "3x".
// Input that is not a number falls back to DefaultMultiplier; the result is
// clamped to [MinMultiplier, MaxMultiplier].
func ParseMultiplier(value any) float64 {
	m, ok := multiplierValue(value)
	if !ok || math.IsNaN(m) || math.IsInf(m, 0) {
		m = DefaultMultiplier
	}
	return math.Min(math.Max(m, MinMultiplier), MaxMultiplier)
}

func multiplierValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		return parseMultiplierString(string(v))
	case string:
		return parseMultiplierString(v)
	default:
		return 0, false
	}
}

func parseMultiplierString(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "x"), "X")
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func (s *Service) EstimatedValuation(ctx context.Context, multiplier any) (int64, error) {
	var valuation int64
	err := s.observe(ctx, "estimated_valuation", func(ctx context.Context) error {
		mrr, err := s.rawMRR(ctx, s.provider.ActiveSubscriptions(ctx))
		if err != nil {
			return err
		}
		arr := proration.RoundMoney(mrr * 12)
		valuation = proration.RoundMoney(float64(arr) * ParseMultiplier(multiplier))
		return nil
	})
	if err != nil {
		return 0, calculationFailed("estimated_valuation", err)
	}
	return valuation, nil
}
