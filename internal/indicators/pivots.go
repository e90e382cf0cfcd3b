package indicators

import "math"

// pivotPoints computes classic and Fibonacci pivot levels from the previous
// bar's high/low/close. Levels at index i are trade levels for bar i, so
// every series is shifted one bar and index 0 is undefined.
func pivotPoints(highs, lows, closes []float64) (classic, fib PivotLevels) {
	n := len(closes)
	cp := nanSlice(n)
	cr1 := nanSlice(n)
	cr2 := nanSlice(n)
	cs1 := nanSlice(n)
	cs2 := nanSlice(n)
	fp := nanSlice(n)
	fr1 := nanSlice(n)
	fr2 := nanSlice(n)
	fs1 := nanSlice(n)
	fs2 := nanSlice(n)

	for i := 1; i < n; i++ {
		h, l, c := highs[i-1], lows[i-1], closes[i-1]
		p := (h + l + c) / 3
		rng := h - l

		cp[i] = p
		cr1[i] = 2*p - l
		cs1[i] = 2*p - h
		cr2[i] = p + rng
		cs2[i] = p - rng

		fp[i] = p
		fr1[i] = p + 0.382*rng
		fs1[i] = p - 0.382*rng
		fr2[i] = p + 0.618*rng
		fs2[i] = p - 0.618*rng
	}

	classic = PivotLevels{
		Pivot: newSeries(cp),
		R1:    newSeries(cr1),
		R2:    newSeries(cr2),
		S1:    newSeries(cs1),
		S2:    newSeries(cs2),
	}
	fib = PivotLevels{
		Pivot: newSeries(fp),
		R1:    newSeries(fr1),
		R2:    newSeries(fr2),
		S1:    newSeries(fs1),
		S2:    newSeries(fs2),
	}
	return classic, fib
}

// NearestLevel returns the level closest to price among the defined pivot
// levels at index i, and whether any level was defined.
func (p PivotLevels) NearestLevel(i int, price float64) (float64, bool) {
	best := math.NaN()
	bestDist := math.Inf(1)
	for _, s := range []Series{p.S2, p.S1, p.Pivot, p.R1, p.R2} {
		v, ok := s.At(i)
		if !ok {
			continue
		}
		if d := math.Abs(v - price); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, !math.IsNaN(best)
}
