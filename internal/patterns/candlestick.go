package patterns

import "stock-analyst/internal/marketdata"

// detectCandlesticks checks the final one or two bars for single- and
// two-bar candle formations.
func (d *Detector) detectCandlesticks(series *marketdata.BarSeries) []Pattern {
	if series.Len() < 3 {
		return nil
	}
	var out []Pattern
	last := series.Last()
	prev := series.At(series.Len() - 2)
	lastIdx := series.Len() - 1

	body := last.Body()

	// Hammer: long lower shadow, negligible upper shadow.
	if last.LowerWick() > body*2 && last.UpperWick() < body*0.3 {
		out = append(out, Pattern{
			Name:        "Hammer",
			Category:    BullishReversal,
			Reliability: reliabilityFor("Hammer"),
			Confidence:  65,
			Points:      []AnchorPoint{{Index: lastIdx, Price: last.Close}},
			Target:      ptr(last.Close * 1.03),
		})
	}

	// Shooting star: the mirror image, after an up-bar.
	if last.UpperWick() > body*2 && last.LowerWick() < body*0.3 && prev.Bullish() {
		out = append(out, Pattern{
			Name:        "Shooting Star",
			Category:    BearishReversal,
			Reliability: reliabilityFor("Shooting Star"),
			Confidence:  65,
			Points:      []AnchorPoint{{Index: lastIdx, Price: last.Close}},
			Target:      ptr(last.Close * 0.97),
		})
	}

	// Bullish engulfing: an up-bar whose body swallows the prior down-bar.
	if prev.Bearish() && last.Bullish() && last.Close > prev.Open && last.Open < prev.Close {
		out = append(out, Pattern{
			Name:        "Engulfing Bullish",
			Category:    BullishReversal,
			Reliability: reliabilityFor("Engulfing Bullish"),
			Confidence:  78,
			Points: []AnchorPoint{
				{Index: lastIdx - 1, Price: prev.Close},
				{Index: lastIdx, Price: last.Close},
			},
			Target: ptr(last.Close * 1.05),
		})
	}

	// Bearish engulfing: the mirror image.
	if prev.Bullish() && last.Bearish() && last.Close < prev.Open && last.Open > prev.Close {
		out = append(out, Pattern{
			Name:        "Engulfing Bearish",
			Category:    BearishReversal,
			Reliability: reliabilityFor("Engulfing Bearish"),
			Confidence:  76,
			Points: []AnchorPoint{
				{Index: lastIdx - 1, Price: prev.Close},
				{Index: lastIdx, Price: last.Close},
			},
			Target: ptr(last.Close * 0.95),
		})
	}

	return out
}
