// Package format renders metric values for display.
package format

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

type Kind string

const (
	KindCurrency   Kind = "currency"
	KindPercentage Kind = "percentage"
	KindInteger    Kind = "integer"
	KindPlain      Kind = "plain"
)

// DefaultPrecision is used when a caller passes a negative precision.
const DefaultPrecision = 2

// Format renders value according to kind. Currency values are in minor units.
func Format(value float64, kind Kind, precision int) string {
	if precision < 0 {
		precision = DefaultPrecision
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		value = 0
	}

	switch kind {
	case KindCurrency:
		major := round(value/100, precision)
		if major < 0 {
			return "-$" + humanize.Commaf(-major)
		}
		return "$" + humanize.Commaf(major)
	case KindPercentage:
		return strconv.FormatFloat(value, 'f', precision, 64) + "%"
	case KindInteger:
		return humanize.Comma(int64(math.Round(value)))
	default:
		return humanize.Ftoa(value)
	}
}

func round(value float64, precision int) float64 {
	scale := math.Pow10(precision)
	rounded := math.Round(value*scale) / scale
	if rounded == 0 {
		return 0
	}
	return rounded
}

// NumericResult pairs a metric value with how it should be displayed.
type NumericResult struct {
	Value float64 `json:"value"`
	Kind  Kind    `json:"kind"`
}

func Currency(cents int64) NumericResult {
	return NumericResult{Value: float64(cents), Kind: KindCurrency}
}

func Percentage(v float64) NumericResult {
	return NumericResult{Value: v, Kind: KindPercentage}
}

func Integer(n int64) NumericResult {
	return NumericResult{Value: float64(n), Kind: KindInteger}
}

func (r NumericResult) Readable(precision int) string {
	return Format(r.Value, r.Kind, precision)
}

func (r NumericResult) String() string {
	return r.Readable(DefaultPrecision)
}
