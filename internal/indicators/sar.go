package indicators

import "math"

type sarConfig struct {
	Start float64
	Step  float64
	Max   float64
}

type sarState struct {
	rising bool
	sar    float64
	ep     float64 // extreme point of the current trend
	af     float64 // acceleration factor
}

// parabolicSAR runs Wilder's stop-and-reverse scan left to right. The trend
// seeds rising when the second close is at or above the first. On a flip the
// SAR jumps to the prior extreme point, the acceleration factor resets to
// its start value, and the extreme point restarts from the flip bar.
// Returned trend is +1 rising, -1 falling, 0 for the warm-up bars.
func parabolicSAR(highs, lows, closes []float64, cfg sarConfig) ([]float64, []int) {
	n := len(closes)
	out := nanSlice(n)
	trend := make([]int, n)
	if n < 2 {
		return out, trend
	}

	st := sarState{
		rising: closes[1] >= closes[0],
		af:     cfg.Start,
	}
	if st.rising {
		st.sar = lows[0]
		st.ep = highs[1]
	} else {
		st.sar = highs[0]
		st.ep = lows[1]
	}
	out[1] = st.sar
	trend[1] = st.trendSign()

	for i := 2; i < n; i++ {
		next := st.sar + st.af*(st.ep-st.sar)

		if st.rising {
			// SAR must not enter the range of the last two bars.
			next = math.Min(next, math.Min(lows[i-1], lows[i-2]))
			if lows[i] < next {
				st = sarState{rising: false, sar: st.ep, ep: lows[i], af: cfg.Start}
			} else {
				st.sar = next
				if highs[i] > st.ep {
					st.ep = highs[i]
					st.af = math.Min(st.af+cfg.Step, cfg.Max)
				}
			}
		} else {
			next = math.Max(next, math.Max(highs[i-1], highs[i-2]))
			if highs[i] > next {
				st = sarState{rising: true, sar: st.ep, ep: highs[i], af: cfg.Start}
			} else {
				st.sar = next
				if lows[i] < st.ep {
					st.ep = lows[i]
					st.af = math.Min(st.af+cfg.Step, cfg.Max)
				}
			}
		}

		out[i] = st.sar
		trend[i] = st.trendSign()
	}
	return out, trend
}

func (s sarState) trendSign() int {
	if s.rising {
		return 1
	}
	return -1
}
