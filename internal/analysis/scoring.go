package analysis

import (
	"fmt"

	"stock-analyst/config"
	"stock-analyst/internal/indicators"
	"stock-analyst/internal/patterns"
)

// scoreTechnical folds the indicator readings and detected patterns into a
// single 0-100 score around the neutral base of 50. Indicators still inside
// their warm-up window contribute nothing. Returns the score and the
// human-readable reasons behind each contribution.
func scoreTechnical(set *indicators.IndicatorSet, detected []patterns.Pattern, price float64, cfg config.ScoringConfig) (float64, []string) {
	score := 50.0
	var reasons []string

	if rsi, ok := set.RSI.Last(); ok {
		switch {
		case rsi < 30:
			score += cfg.RSIOversold
			reasons = append(reasons, fmt.Sprintf("oversold (RSI %.1f)", rsi))
		case rsi < 40:
			score += cfg.RSINearOversold
			reasons = append(reasons, fmt.Sprintf("approaching oversold (RSI %.1f)", rsi))
		case rsi > 70:
			score += cfg.RSIOverbought
			reasons = append(reasons, fmt.Sprintf("overbought (RSI %.1f)", rsi))
		case rsi >= 60:
			score += cfg.RSINearOverbght
			reasons = append(reasons, fmt.Sprintf("approaching overbought (RSI %.1f)", rsi))
		}
	}

	macd, okM := set.MACD.Last()
	signal, okS := set.MACDSignal.Last()
	if okM && okS {
		prevMACD, okPM := set.MACD.Prev(1)
		prevSignal, okPS := set.MACDSignal.Prev(1)
		switch {
		case okPM && okPS && prevMACD <= prevSignal && macd > signal:
			score += cfg.MACDCross
			reasons = append(reasons, "MACD bullish crossover")
		case okPM && okPS && prevMACD >= prevSignal && macd < signal:
			score -= cfg.MACDCross
			reasons = append(reasons, "MACD bearish crossover")
		case macd > signal:
			score += cfg.MACDSide
			reasons = append(reasons, "MACD above signal line")
		default:
			score -= cfg.MACDSide
			reasons = append(reasons, "MACD below signal line")
		}
	}

	lower, okL := set.BBLower.Last()
	upper, okU := set.BBUpper.Last()
	if okL && okU {
		if price <= lower {
			score += cfg.BollingerLower
			reasons = append(reasons, "price at lower Bollinger band")
		} else if price >= upper {
			score += cfg.BollingerUpper
			reasons = append(reasons, "price at upper Bollinger band")
		}
	}

	if sma20, ok := set.SMA[20].Last(); ok {
		if price > sma20 {
			score += cfg.SMA20Side
			reasons = append(reasons, "price above 20-bar average")
		} else {
			score -= cfg.SMA20Side
			reasons = append(reasons, "price below 20-bar average")
		}
	}

	sma20, ok20 := set.SMA[20].Last()
	sma50, ok50 := set.SMA[50].Last()
	sma200, ok200 := set.SMA[200].Last()
	if ok20 && ok50 && ok200 {
		if price > sma20 && sma20 > sma50 && sma50 > sma200 {
			score += cfg.FullAlignment
			reasons = append(reasons, "full bullish moving-average alignment")
		} else if price < sma20 && sma20 < sma50 && sma50 < sma200 {
			score -= cfg.FullAlignment
			reasons = append(reasons, "full bearish moving-average alignment")
		}
	}

	for _, p := range detected {
		if p.Category.Bullish() {
			score += cfg.PatternWeight
			reasons = append(reasons, fmt.Sprintf("%s pattern", p.Name))
		} else if p.Category.Bearish() {
			score -= cfg.PatternWeight
			reasons = append(reasons, fmt.Sprintf("%s pattern", p.Name))
		}
	}

	return clampScore(score), reasons
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// signalFor maps a score to its discrete signal. The strong bands are
// checked before the plain ones so they remain reachable.
func signalFor(score float64, cfg config.ScoringConfig) Signal {
	switch {
	case score >= cfg.StrongBuyScore:
		return StrongBuy
	case score >= cfg.BuyScore:
		return Buy
	case score <= cfg.StrongSellScore:
		return StrongSell
	case score <= cfg.SellScore:
		return Sell
	default:
		return Hold
	}
}
