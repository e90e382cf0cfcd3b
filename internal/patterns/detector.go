package patterns

import (
	"sort"

	"github.com/rs/zerolog"

	"stock-analyst/config"
	"stock-analyst/internal/marketdata"
)

// Category classifies the expected resolution of a pattern.
type Category string

const (
	BullishReversal     Category = "bullish_reversal"
	BearishReversal     Category = "bearish_reversal"
	BullishContinuation Category = "bullish_continuation"
	BearishContinuation Category = "bearish_continuation"
	Continuation        Category = "continuation"
	Neutral             Category = "neutral"
)

// Bullish reports whether the category argues for higher prices.
func (c Category) Bullish() bool {
	return c == BullishReversal || c == BullishContinuation
}

// Bearish reports whether the category argues for lower prices.
func (c Category) Bearish() bool {
	return c == BearishReversal || c == BearishContinuation
}

// AnchorPoint ties a pattern to the bar and price that formed it.
type AnchorPoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
	Label string  `json:"label,omitempty"`
}

// Pattern is one detected formation. Reliability is the static prior for
// the pattern class on a 0-5 scale; Confidence is instance-specific,
// 0-100, higher when the geometry fits the template tightly. Target is
// the measured-move objective when the template defines one.
type Pattern struct {
	Name        string        `json:"name"`
	Category    Category      `json:"category"`
	Reliability float64       `json:"reliability"`
	Confidence  float64       `json:"confidence"`
	Points      []AnchorPoint `json:"points,omitempty"`
	Target      *float64      `json:"target,omitempty"`
}

// reliability holds the per-class priors, Bulkowski-style. Classes not
// listed score 3.0.
var reliability = map[string]float64{
	"Head and Shoulders":         4.5,
	"Inverse Head and Shoulders": 4.5,
	"Triple Top":                 4.3,
	"Triple Bottom":              4.5,
	"Double Top":                 4.0,
	"Double Bottom":              4.2,
	"Rounding Bottom":            4.5,
	"Ascending Triangle":         3.8,
	"Falling Wedge":              3.7,
	"Bull Flag":                  4.0,
	"Rectangle":                  4.0,
	"Cup and Handle":             4.4,
	"Hammer":                     3.5,
	"Shooting Star":              3.6,
	"Engulfing Bullish":          4.0,
	"Engulfing Bearish":          3.9,
	"Gap Up":                     3.6,
	"Gap Down":                   3.6,
}

func reliabilityFor(name string) float64 {
	if r, ok := reliability[name]; ok {
		return r
	}
	return 3.0
}

// Detector scans a bar series for chart and candlestick patterns.
type Detector struct {
	cfg    config.PatternConfig
	logger zerolog.Logger
}

func NewDetector(cfg config.PatternConfig, logger zerolog.Logger) *Detector {
	return &Detector{
		cfg:    cfg,
		logger: logger.With().Str("component", "pattern_detector").Logger(),
	}
}

// Detect runs every matcher over the series. Fewer bars than the minimum
// yields an empty result, not an error. Overlapping matches are all kept;
// the result is ordered by reliability descending with confidence and then
// name as deterministic tie-breakers.
func (d *Detector) Detect(series *marketdata.BarSeries) []Pattern {
	if series == nil || series.Len() < d.cfg.MinBars {
		return nil
	}

	highs := series.Highs()
	lows := series.Lows()
	closes := series.Closes()
	peaks, troughs := d.findPeaksTroughs(highs, lows)

	var out []Pattern
	out = append(out, d.detectHeadShoulders(highs, lows, peaks, troughs)...)
	out = append(out, d.detectDoubles(highs, lows, peaks, troughs)...)
	out = append(out, d.detectTriples(highs, lows, peaks, troughs)...)
	out = append(out, d.detectRounding(lows)...)
	out = append(out, d.detectTriangles(highs, lows, peaks, troughs)...)
	out = append(out, d.detectWedges(highs, lows, peaks, troughs)...)
	out = append(out, d.detectFlags(closes)...)
	out = append(out, d.detectRectangles(highs, lows, peaks, troughs)...)
	out = append(out, d.detectCupHandle(lows, closes)...)
	out = append(out, d.detectCandlesticks(series)...)
	out = append(out, d.detectGaps(highs, lows)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Reliability != out[j].Reliability {
			return out[i].Reliability > out[j].Reliability
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Name < out[j].Name
	})

	d.logger.Debug().Int("bars", series.Len()).Int("patterns", len(out)).Msg("pattern scan complete")
	return out
}

// findPeaksTroughs marks local extrema over a symmetric window: bar i is a
// peak when its high is the maximum of the window [i-w, i+w], a trough when
// its low is the window minimum. The first and last w bars cannot qualify.
func (d *Detector) findPeaksTroughs(highs, lows []float64) (peaks, troughs []int) {
	w := d.cfg.ExtremaWindow
	for i := w; i < len(highs)-w; i++ {
		isPeak, isTrough := true, true
		for j := i - w; j <= i+w; j++ {
			if highs[j] > highs[i] {
				isPeak = false
			}
			if lows[j] < lows[i] {
				isTrough = false
			}
			if !isPeak && !isTrough {
				break
			}
		}
		if isPeak {
			peaks = append(peaks, i)
		}
		if isTrough {
			troughs = append(troughs, i)
		}
	}
	return peaks, troughs
}

// tightnessBonus rewards geometry that beats its tolerance with room to
// spare: slack 0 (perfect fit) adds the full 10 points, slack at the
// tolerance boundary adds nothing.
func tightnessBonus(slack, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	ratio := slack / tolerance
	if ratio > 1 {
		ratio = 1
	}
	return (1 - ratio) * 10
}

func ptr(v float64) *float64 { return &v }

func minIn(vals []float64, from, to int) float64 {
	m := vals[from]
	for i := from + 1; i <= to; i++ {
		if vals[i] < m {
			m = vals[i]
		}
	}
	return m
}

func maxIn(vals []float64, from, to int) float64 {
	m := vals[from]
	for i := from + 1; i <= to; i++ {
		if vals[i] > m {
			m = vals[i]
		}
	}
	return m
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
