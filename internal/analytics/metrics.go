// Package analytics holds the pure aggregation engine: metric formulas,
// leaderboards, calendar series, global rollups and export rows. Every
// function recomputes from the records it is given and keeps no state
// between calls.
package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// smallSampleSize is the largest record count that uses the p90 viral rule.
	smallSampleSize = 20
	tukeyFactor     = 1.5
)

var hundred = decimal.NewFromInt(100)

// TotalInteractions sums the engagement counters of a record or group.
func TotalInteractions(likes, comments, shares int64) int64 {
	return likes + comments + shares
}

// EngagementRate returns interactions per view as a percentage rounded to two
// decimals. Zero views are treated as one so zero-view groups report 0%.
func EngagementRate(interactions, views int64) float64 {
	if interactions <= 0 {
		return 0
	}
	if views < 1 {
		views = 1
	}
	rate := decimal.NewFromInt(interactions).Mul(hundred).Div(decimal.NewFromInt(views))
	f, _ := rate.RoundBank(2).Float64()
	return f
}

// AverageViews returns views per video rounded to two decimals, or 0 when
// there are no videos.
func AverageViews(views, videos int64) float64 {
	return ratio(views, videos)
}

// Quantile returns the q-quantile of values using linear interpolation
// between the closest ranks. values is not modified.
func Quantile(values []int64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// ViralThreshold returns the view count from which a record counts as viral.
// Samples above twenty records use the upper Tukey fence; smaller samples use
// the 90th percentile because quartiles are unstable there.
func ViralThreshold(views []int64) float64 {
	if len(views) == 0 {
		return 0
	}
	sorted := make([]float64, len(views))
	for i, v := range views {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)
	if len(sorted) > smallSampleSize {
		q1 := quantileSorted(sorted, 0.25)
		q3 := quantileSorted(sorted, 0.75)
		return q3 + tukeyFactor*(q3-q1)
	}
	return quantileSorted(sorted, 0.9)
}

// IsViral reports whether views reach the threshold.
func IsViral(views int64, threshold float64) bool {
	return float64(views) >= threshold
}

// NumberFormatter renders unscaled integers with locale thousands separators.
type NumberFormatter struct {
	printer *message.Printer
}

// NewNumberFormatter builds a formatter for the BCP 47 locale; unknown
// locales fall back to Brazilian Portuguese.
func NewNumberFormatter(locale string) *NumberFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.BrazilianPortuguese
	}
	return &NumberFormatter{printer: message.NewPrinter(tag)}
}

// Thousands formats n with grouping separators, e.g. 1.234.567 for pt-BR.
func (f *NumberFormatter) Thousands(n int64) string {
	return f.printer.Sprintf("%d", n)
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.RoundBank(2).Float64()
	return f
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return round2(decimal.NewFromInt(num).Div(decimal.NewFromInt(den)))
}

func roundFloat(f float64) float64 {
	return round2(decimal.NewFromFloat(f))
}
