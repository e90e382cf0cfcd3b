package analysis

import (
	"fmt"

	"stock-analyst/internal/indicators"
	"stock-analyst/internal/marketdata"
	"stock-analyst/internal/patterns"
)

// Strategy tags which entry/exit calculation produced a plan. The set is
// closed: each horizon maps to exactly one strategy.
type Strategy string

const (
	StrategyScalp    Strategy = "short_term" // ATR-based quick entries
	StrategySwing    Strategy = "swing"      // fibonacci retracement zones
	StrategyPosition Strategy = "position"   // long-term value levels
)

// PriceLevel is one actionable price with the reasoning attached.
type PriceLevel struct {
	Price  float64 `json:"price"`
	Reason string  `json:"reason"`
}

// EntryExitPlan is the per-horizon trade plan: where to buy, where to sell,
// and the protective levels around the position.
type EntryExitPlan struct {
	Strategy        Strategy           `json:"strategy"`
	BuyZone         []PriceLevel       `json:"buy_zone"`
	SellZone        []PriceLevel       `json:"sell_zone"`
	StopLoss        float64            `json:"stop_loss"`
	TakeProfit      float64            `json:"take_profit"`
	RiskRewardRatio float64            `json:"risk_reward_ratio"`
	Fibonacci       map[string]float64 `json:"fibonacci,omitempty"`
	Note            string             `json:"note"`
}

func strategyFor(horizon Horizon) Strategy {
	switch horizon {
	case HorizonShort:
		return StrategyScalp
	case HorizonMedium:
		return StrategySwing
	default:
		return StrategyPosition
	}
}

// buildEntryExit computes the plan for one horizon. Detected patterns with
// price targets contribute zones on every horizon; the structural levels
// differ per strategy.
func buildEntryExit(horizon Horizon, series *marketdata.BarSeries, set *indicators.IndicatorSet, detected []patterns.Pattern, rr float64) EntryExitPlan {
	current := series.Last().Close
	switch horizon {
	case HorizonShort:
		return shortTermPlan(series, current, detected, rr)
	case HorizonMedium:
		return mediumTermPlan(series, current, detected, rr)
	default:
		return longTermPlan(series, set, current, rr)
	}
}

// shortTermPlan keys off the trailing 10 bars: pattern targets when
// available, otherwise the immediate support and resistance, with
// ATR-scaled protective levels.
func shortTermPlan(series *marketdata.BarSeries, current float64, detected []patterns.Pattern, rr float64) EntryExitPlan {
	tail := series.Tail(10)
	support := tail.At(0).Low
	resistance := tail.At(0).High
	rangeSum := 0.0
	for _, b := range tail.Bars() {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
		rangeSum += b.High - b.Low
	}
	atr := rangeSum / float64(tail.Len())

	var buy, sell []PriceLevel
	for _, p := range topPatterns(detected, 3) {
		if p.Target == nil || !p.Category.Bullish() {
			continue
		}
		buy = append(buy, PriceLevel{
			Price:  current * 0.995,
			Reason: fmt.Sprintf("%s pattern (reliability %.1f/5)", p.Name, p.Reliability),
		})
		sell = append(sell, PriceLevel{
			Price:  *p.Target,
			Reason: fmt.Sprintf("%s measured move", p.Name),
		})
	}
	if len(buy) == 0 {
		buy = append(buy, PriceLevel{Price: support * 1.005, Reason: "near short-term support"})
	}
	if len(sell) == 0 {
		sell = append(sell, PriceLevel{Price: resistance * 0.995, Reason: "near short-term resistance"})
	}

	return EntryExitPlan{
		Strategy:        StrategyScalp,
		BuyZone:         buy,
		SellZone:        sell,
		StopLoss:        current - atr*1.5,
		TakeProfit:      current + atr*2,
		RiskRewardRatio: rr,
		Note:            "short-term trading: enter and exit quickly",
	}
}

// mediumTermPlan works the 50-bar swing range with fibonacci retracements
// anchored at its extremes.
func mediumTermPlan(series *marketdata.BarSeries, current float64, detected []patterns.Pattern, rr float64) EntryExitPlan {
	n := 50
	if series.Len() < n {
		n = series.Len()
	}
	tail := series.Tail(n)
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

	span := resistance - support
	fib := map[string]float64{
		"0.236": resistance - span*0.236,
		"0.382": resistance - span*0.382,
		"0.500": resistance - span*0.500,
		"0.618": resistance - span*0.618,
	}

	var buy, sell []PriceLevel
	for _, p := range topPatterns(detected, 3) {
		if p.Target == nil || !p.Category.Bullish() {
			continue
		}
		buy = append(buy, PriceLevel{
			Price:  current * 0.98,
			Reason: fmt.Sprintf("%s (confidence %.0f%%)", p.Name, p.Confidence),
		})
		sell = append(sell, PriceLevel{
			Price:  *p.Target,
			Reason: fmt.Sprintf("%s measured move", p.Name),
		})
	}
	buy = append(buy, PriceLevel{Price: fib["0.618"], Reason: "0.618 fibonacci retracement"})
	sell = append(sell, PriceLevel{Price: resistance, Reason: "swing-range high"})

	return EntryExitPlan{
		Strategy:        StrategySwing,
		BuyZone:         buy,
		SellZone:        sell,
		StopLoss:        support * 0.97,
		TakeProfit:      resistance * 1.05,
		RiskRewardRatio: rr,
		Fibonacci:       fib,
		Note:            "swing trading: hold through the retracement",
	}
}

// longTermPlan anchors on the 200-period average and the 52-period range.
// Missing history falls back to fractions of the current price, matching
// how a position trader would approximate the levels.
func longTermPlan(series *marketdata.BarSeries, set *indicators.IndicatorSet, current float64, rr float64) EntryExitPlan {
	sma200, ok := set.SMA[200].Last()
	if !ok {
		sma200 = current * 0.9
	}

	high52 := current * 1.2
	low52 := current * 0.8
	if series.Len() >= 52 {
		tail := series.Tail(52)
		high52 = tail.At(0).High
		low52 = tail.At(0).Low
		for _, b := range tail.Bars() {
			if b.High > high52 {
				high52 = b.High
			}
			if b.Low < low52 {
				low52 = b.Low
			}
		}
	}

	return EntryExitPlan{
		Strategy: StrategyPosition,
		BuyZone: []PriceLevel{
			{Price: sma200, Reason: "200-period moving average"},
			{Price: low52 * 1.05, Reason: "near 52-period low"},
		},
		SellZone: []PriceLevel{
			{Price: high52, Reason: "52-period high"},
			{Price: current * 1.3, Reason: "long-term objective (+30%)"},
		},
		StopLoss:        sma200 * 0.90,
		TakeProfit:      high52 * 1.1,
		RiskRewardRatio: rr,
		Note:            "position trade: fundamentals first, hold for months",
	}
}

func topPatterns(detected []patterns.Pattern, n int) []patterns.Pattern {
	if len(detected) < n {
		return detected
	}
	return detected[:n]
}
