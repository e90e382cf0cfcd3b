package patterns

// detectTriangles matches an ascending triangle on the last two extremes of
// each kind: flat highs with rising lows.
func (d *Detector) detectTriangles(highs, lows []float64, peaks, troughs []int) []Pattern {
	if len(peaks) < 2 || len(troughs) < 2 {
		return nil
	}
	p1, p2 := peaks[len(peaks)-2], peaks[len(peaks)-1]
	t1, t2 := troughs[len(troughs)-2], troughs[len(troughs)-1]

	slack := abs(highs[p1]-highs[p2]) / highs[p1]
	if slack >= d.cfg.PriceTolerance || lows[t2] <= lows[t1] {
		return nil
	}
	return []Pattern{{
		Name:        "Ascending Triangle",
		Category:    BullishContinuation,
		Reliability: reliabilityFor("Ascending Triangle"),
		Confidence:  clampConfidence(75 + tightnessBonus(slack, d.cfg.PriceTolerance)),
		Points: []AnchorPoint{
			{Index: p1, Price: highs[p1]},
			{Index: t1, Price: lows[t1]},
			{Index: p2, Price: highs[p2]},
			{Index: t2, Price: lows[t2]},
		},
		Target: ptr(highs[p1] * 1.1),
	}}
}

// detectWedges matches a falling wedge: both highs and lows declining while
// the channel narrows.
func (d *Detector) detectWedges(highs, lows []float64, peaks, troughs []int) []Pattern {
	if len(peaks) < 2 || len(troughs) < 2 {
		return nil
	}
	p1, p2 := peaks[len(peaks)-2], peaks[len(peaks)-1]
	t1, t2 := troughs[len(troughs)-2], troughs[len(troughs)-1]

	if highs[p2] >= highs[p1] || lows[t2] >= lows[t1] {
		return nil
	}
	if highs[p1]-lows[t1] <= highs[p2]-lows[t2] {
		return nil
	}
	return []Pattern{{
		Name:        "Falling Wedge",
		Category:    BullishReversal,
		Reliability: reliabilityFor("Falling Wedge"),
		Confidence:  72,
		Points: []AnchorPoint{
			{Index: p1, Price: highs[p1]},
			{Index: t1, Price: lows[t1]},
			{Index: p2, Price: highs[p2]},
			{Index: t2, Price: lows[t2]},
		},
		Target: ptr(highs[p1]),
	}}
}

// detectFlags matches a bull flag over the trailing 20 bars: a move of more
// than 5% in the first half followed by consolidation tighter than 2% in
// the second.
func (d *Detector) detectFlags(closes []float64) []Pattern {
	if len(closes) < 20 {
		return nil
	}
	recent := closes[len(closes)-20:]
	pole := recent[:10]
	flag := recent[10:]

	poleMove := (pole[9] - pole[0]) / pole[0]
	flagMove := abs(flag[9]-flag[0]) / flag[0]
	if abs(poleMove) <= 0.05 || flagMove >= 0.02 {
		return nil
	}
	if poleMove <= 0 {
		return nil
	}
	return []Pattern{{
		Name:        "Bull Flag",
		Category:    BullishContinuation,
		Reliability: reliabilityFor("Bull Flag"),
		Confidence:  80,
		Target:      ptr(recent[19] * 1.05),
	}}
}

// detectRectangles matches a trading range: the last two highs level with
// each other and the last two lows level with each other, at a tighter
// tolerance than the reversal templates use.
func (d *Detector) detectRectangles(highs, lows []float64, peaks, troughs []int) []Pattern {
	if len(peaks) < 2 || len(troughs) < 2 {
		return nil
	}
	p1, p2 := peaks[len(peaks)-2], peaks[len(peaks)-1]
	t1, t2 := troughs[len(troughs)-2], troughs[len(troughs)-1]

	tol := d.cfg.PriceTolerance * 0.75
	hiSlack := abs(highs[p1]-highs[p2]) / highs[p1]
	loSlack := abs(lows[t1]-lows[t2]) / lows[t1]
	if hiSlack >= tol || loSlack >= tol {
		return nil
	}
	slack := hiSlack
	if loSlack > slack {
		slack = loSlack
	}
	return []Pattern{{
		Name:        "Rectangle",
		Category:    Continuation,
		Reliability: reliabilityFor("Rectangle"),
		Confidence:  clampConfidence(70 + tightnessBonus(slack, tol)),
		Points: []AnchorPoint{
			{Index: p1, Price: highs[p1]},
			{Index: t1, Price: lows[t1]},
			{Index: p2, Price: highs[p2]},
			{Index: t2, Price: lows[t2]},
		},
	}}
}

// detectCupHandle matches a cup and handle: a trough roughly centered in
// the trailing 40 bars with the last 10 bars drifting flat-to-down.
func (d *Detector) detectCupHandle(lows, closes []float64) []Pattern {
	if len(closes) < 50 {
		return nil
	}
	cup := lows[len(lows)-40:]
	lowPos := 0
	for i := range cup {
		if cup[i] < cup[lowPos] {
			lowPos = i
		}
	}
	if lowPos <= 15 || lowPos >= 30 {
		return nil
	}
	handle := closes[len(closes)-10:]
	if handle[9] >= handle[0]*1.02 {
		return nil
	}
	return []Pattern{{
		Name:        "Cup and Handle",
		Category:    BullishContinuation,
		Reliability: reliabilityFor("Cup and Handle"),
		Confidence:  82,
		Target:      ptr(closes[len(closes)-1] * 1.15),
	}}
}
