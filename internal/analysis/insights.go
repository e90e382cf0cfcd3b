package analysis

import (
	"math"

	"stock-analyst/internal/indicators"
	"stock-analyst/internal/marketdata"
)

// Insights are the horizon-specific observations attached alongside the
// score. Keys are stable per horizon; values are small typed structs so
// downstream consumers do not parse strings.
type Insights map[string]any

// VolatilityInsight summarizes the intraday range over the last 10 bars.
type VolatilityInsight struct {
	AvgRangePct float64 `json:"avg_range_pct"`
	High        bool    `json:"high"`
	Tradable    bool    `json:"tradable"` // range wide enough to work, not so wide it is noise
}

// VolumeSurgeInsight compares the last bar's volume with the 20-bar mean.
type VolumeSurgeInsight struct {
	Detected bool    `json:"detected"`
	Ratio    float64 `json:"ratio"`
}

// MomentumInsight is the percent move over the last five bars.
type MomentumInsight struct {
	State     string  `json:"state"` // strong_bullish, bullish, neutral, bearish, strong_bearish
	ChangePct float64 `json:"change_pct"`
}

// SwingZoneInsight places the current price inside the 50-bar range.
type SwingZoneInsight struct {
	Support     float64 `json:"support"`
	Resistance  float64 `json:"resistance"`
	PositionPct float64 `json:"position_pct"` // 0 at support, 100 at resistance
	Zone        string  `json:"zone"`         // lower, middle, upper
}

// TrendStrengthInsight measures the 20-bar average's slope over 10 bars.
type TrendStrengthInsight struct {
	Strength string  `json:"strength"` // strong, moderate, weak
	Rising   bool    `json:"rising"`
	SlopePct float64 `json:"slope_pct"`
}

// BreakoutInsight assesses whether price is coiled near the top of a
// tight 30-bar box.
type BreakoutInsight struct {
	Potential      string  `json:"potential"` // high, medium, low
	BoxRangePct    float64 `json:"box_range_pct"`
	NearResistance bool    `json:"near_resistance"`
}

// LongTrendInsight relates price to the 52-period average.
type LongTrendInsight struct {
	Rising        bool    `json:"rising"`
	AboveLongMA   bool    `json:"above_long_ma"`
	YearReturnPct float64 `json:"year_return_pct"`
}

// AccumulationInsight flags flat price with rising on-balance volume.
type AccumulationInsight struct {
	Phase     string `json:"phase"` // accumulation, markup, distribution
	OBVRising bool   `json:"obv_rising"`
}

const (
	insightVolatility   = "intraday_volatility"
	insightVolumeSurge  = "volume_surge"
	insightMomentum     = "quick_momentum"
	insightSwingZones   = "swing_zones"
	insightTrend        = "trend_strength"
	insightBreakout     = "breakout_potential"
	insightLongTrend    = "long_term_trend"
	insightAccumulation = "accumulation_phase"
)

// buildInsights produces the horizon-specific insight map. Insights that
// need more history than the series has are simply omitted.
func buildInsights(horizon Horizon, series *marketdata.BarSeries, set *indicators.IndicatorSet) Insights {
	out := Insights{}
	switch horizon {
	case HorizonShort:
		if v, ok := intradayVolatility(series); ok {
			out[insightVolatility] = v
		}
		if v, ok := volumeSurge(series); ok {
			out[insightVolumeSurge] = v
		}
		if v, ok := quickMomentum(series); ok {
			out[insightMomentum] = v
		}
	case HorizonMedium:
		if v, ok := swingZones(series); ok {
			out[insightSwingZones] = v
		}
		if v, ok := trendStrength(set); ok {
			out[insightTrend] = v
		}
		if v, ok := breakoutPotential(series); ok {
			out[insightBreakout] = v
		}
	case HorizonLong:
		if v, ok := longTermTrend(series); ok {
			out[insightLongTrend] = v
		}
		if v, ok := accumulationPhase(series, set); ok {
			out[insightAccumulation] = v
		}
	}
	return out
}

func intradayVolatility(series *marketdata.BarSeries) (VolatilityInsight, bool) {
	if series.Len() < 5 {
		return VolatilityInsight{}, false
	}
	tail := series.Tail(10)
	sum := 0.0
	for _, b := range tail.Bars() {
		sum += (b.High - b.Low) / b.Close * 100
	}
	avg := sum / float64(tail.Len())
	return VolatilityInsight{
		AvgRangePct: avg,
		High:        avg > 3,
		Tradable:    avg > 1.5 && avg < 5,
	}, true
}

func volumeSurge(series *marketdata.BarSeries) (VolumeSurgeInsight, bool) {
	if series.Len() < 20 {
		return VolumeSurgeInsight{}, false
	}
	vols := series.Volumes()
	sum := 0.0
	for _, v := range vols[len(vols)-20:] {
		sum += v
	}
	avg := sum / 20
	ratio := 1.0
	if avg > 0 {
		ratio = vols[len(vols)-1] / avg
	}
	return VolumeSurgeInsight{Detected: ratio > 2.0, Ratio: ratio}, true
}

func quickMomentum(series *marketdata.BarSeries) (MomentumInsight, bool) {
	if series.Len() < 5 {
		return MomentumInsight{}, false
	}
	closes := series.Closes()
	first := closes[len(closes)-5]
	last := closes[len(closes)-1]
	change := (last - first) / first * 100

	state := "neutral"
	switch {
	case change > 2:
		state = "strong_bullish"
	case change > 0.5:
		state = "bullish"
	case change < -2:
		state = "strong_bearish"
	case change < -0.5:
		state = "bearish"
	}
	return MomentumInsight{State: state, ChangePct: change}, true
}

func swingZones(series *marketdata.BarSeries) (SwingZoneInsight, bool) {
	if series.Len() < 50 {
		return SwingZoneInsight{}, false
	}
	tail := series.Tail(50)
	support := tail.At(0).Low
	resistance := tail.At(0).High
	for _, b := range tail.Bars() {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
	}
	current := series.Last().Close

	pos := 50.0
	if resistance > support {
		pos = (current - support) / (resistance - support) * 100
	}
	zone := "middle"
	if pos < 30 {
		zone = "lower"
	} else if pos > 70 {
		zone = "upper"
	}
	return SwingZoneInsight{
		Support:     support,
		Resistance:  resistance,
		PositionPct: pos,
		Zone:        zone,
	}, true
}

func trendStrength(set *indicators.IndicatorSet) (TrendStrengthInsight, bool) {
	sma20 := set.SMA[20]
	now, okNow := sma20.Last()
	then, okThen := sma20.Prev(10)
	if !okNow || !okThen || then == 0 {
		return TrendStrengthInsight{}, false
	}
	slope := (now - then) / then * 100

	strength := "weak"
	if math.Abs(slope) > 5 {
		strength = "strong"
	} else if math.Abs(slope) > 2 {
		strength = "moderate"
	}
	return TrendStrengthInsight{
		Strength: strength,
		Rising:   slope > 0,
		SlopePct: slope,
	}, true
}

func breakoutPotential(series *marketdata.BarSeries) (BreakoutInsight, bool) {
	if series.Len() < 30 {
		return BreakoutInsight{}, false
	}
	tail := series.Tail(30)
	high := tail.At(0).High
	low := tail.At(0).Low
	for _, b := range tail.Bars() {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	current := series.Last().Close

	boxRange := 0.0
	if low > 0 {
		boxRange = (high - low) / low * 100
	}
	nearHigh := current/high > 0.95

	potential := "low"
	if boxRange < 10 && nearHigh {
		potential = "high"
	} else if boxRange < 10 {
		potential = "medium"
	}
	return BreakoutInsight{
		Potential:      potential,
		BoxRangePct:    boxRange,
		NearResistance: nearHigh,
	}, true
}

func longTermTrend(series *marketdata.BarSeries) (LongTrendInsight, bool) {
	if series.Len() < 52 {
		return LongTrendInsight{}, false
	}
	closes := series.Closes()
	current := closes[len(closes)-1]

	sum := 0.0
	for _, c := range closes[len(closes)-52:] {
		sum += c
	}
	ma52 := sum / 52
	yearAgo := closes[len(closes)-52]

	return LongTrendInsight{
		Rising:        current > ma52,
		AboveLongMA:   current > ma52,
		YearReturnPct: (current - yearAgo) / yearAgo * 100,
	}, true
}

func accumulationPhase(series *marketdata.BarSeries, set *indicators.IndicatorSet) (AccumulationInsight, bool) {
	if series.Len() < 20 {
		return AccumulationInsight{}, false
	}
	obvNow, okNow := set.OBV.Last()
	obvThen, okThen := set.OBV.Prev(10)
	if !okNow || !okThen {
		return AccumulationInsight{}, false
	}
	obvRising := obvNow > obvThen

	closes := series.Closes()
	now := closes[len(closes)-1]
	then := closes[len(closes)-11]
	priceFlat := math.Abs((now-then)/then) < 0.05

	phase := "distribution"
	if priceFlat && obvRising {
		phase = "accumulation"
	} else if obvRising {
		phase = "markup"
	}
	return AccumulationInsight{Phase: phase, OBVRising: obvRising}, true
}
