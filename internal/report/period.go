package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	revenuedomain "github.com/smallbiznis/profitable/internal/revenue/domain"
)

const day = 24 * time.Hour

// ParsePeriod accepts "<n>d", "<n>h", or any time.ParseDuration value. An
// empty value returns def.
func ParsePeriod(value string, def time.Duration) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return def, nil
	}

	var period time.Duration
	if n, ok := strings.CutSuffix(trimmed, "d"); ok {
		days, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", revenuedomain.ErrInvalidPeriod, value)
		}
		period = time.Duration(days * float64(day))
	} else {
		parsed, err := time.ParseDuration(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", revenuedomain.ErrInvalidPeriod, value)
		}
		period = parsed
	}

	if period <= 0 {
		return 0, fmt.Errorf("%w: %q", revenuedomain.ErrInvalidPeriod, value)
	}
	return period, nil
}
