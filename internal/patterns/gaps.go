package patterns

// detectGaps scans the most recent bars, newest first, for an unfilled
// price gap: today's low clearing yesterday's high by the gap threshold
// (or the inverse). Only the most recent gap of each direction is reported.
func (d *Detector) detectGaps(highs, lows []float64) []Pattern {
	var out []Pattern
	n := len(highs)
	lookback := d.cfg.GapLookback
	if lookback > n-1 {
		lookback = n - 1
	}

	for i := 1; i <= lookback; i++ {
		prevHigh := highs[n-i-1]
		currLow := lows[n-i]
		if currLow > prevHigh*(1+d.cfg.GapThreshold) {
			out = append(out, Pattern{
				Name:        "Gap Up",
				Category:    BullishContinuation,
				Reliability: reliabilityFor("Gap Up"),
				Confidence:  68,
				Points: []AnchorPoint{
					{Index: n - i - 1, Price: prevHigh},
					{Index: n - i, Price: currLow},
				},
			})
			break
		}
	}

	for i := 1; i <= lookback; i++ {
		prevLow := lows[n-i-1]
		currHigh := highs[n-i]
		if currHigh < prevLow*(1-d.cfg.GapThreshold) {
			out = append(out, Pattern{
				Name:        "Gap Down",
				Category:    BearishContinuation,
				Reliability: reliabilityFor("Gap Down"),
				Confidence:  68,
				Points: []AnchorPoint{
					{Index: n - i - 1, Price: prevLow},
					{Index: n - i, Price: currHigh},
				},
			})
			break
		}
	}

	return out
}
