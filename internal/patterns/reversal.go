package patterns

// detectHeadShoulders matches head-and-shoulders tops and their inverse.
// The head must exceed both shoulders by the prominence factor and the
// shoulders must sit within the balance tolerance of each other.
func (d *Detector) detectHeadShoulders(highs, lows []float64, peaks, troughs []int) []Pattern {
	var out []Pattern
	prominence := 1 + d.cfg.HeadProminence

	for i := 0; i+2 < len(peaks); i++ {
		p1, p2, p3 := peaks[i], peaks[i+1], peaks[i+2]
		h1, h2, h3 := highs[p1], highs[p2], highs[p3]
		if h2 <= h1*prominence || h2 <= h3*prominence {
			continue
		}
		slack := abs(h1-h3) / h1
		if slack >= d.cfg.ShoulderBalance {
			continue
		}
		neckline := minIn(lows, p1, p3)
		out = append(out, Pattern{
			Name:        "Head and Shoulders",
			Category:    BearishReversal,
			Reliability: reliabilityFor("Head and Shoulders"),
			Confidence:  clampConfidence(85 + tightnessBonus(slack, d.cfg.ShoulderBalance)),
			Points: []AnchorPoint{
				{Index: p1, Price: h1, Label: "Left Shoulder"},
				{Index: p2, Price: h2, Label: "Head"},
				{Index: p3, Price: h3, Label: "Right Shoulder"},
			},
			Target: ptr(h2 - (h2-neckline)*1.5),
		})
	}

	for i := 0; i+2 < len(troughs); i++ {
		t1, t2, t3 := troughs[i], troughs[i+1], troughs[i+2]
		l1, l2, l3 := lows[t1], lows[t2], lows[t3]
		if l2 >= l1*(1-d.cfg.HeadProminence) || l2 >= l3*(1-d.cfg.HeadProminence) {
			continue
		}
		slack := abs(l1-l3) / l1
		if slack >= d.cfg.ShoulderBalance {
			continue
		}
		neckline := maxIn(highs, t1, t3)
		out = append(out, Pattern{
			Name:        "Inverse Head and Shoulders",
			Category:    BullishReversal,
			Reliability: reliabilityFor("Inverse Head and Shoulders"),
			Confidence:  clampConfidence(87 + tightnessBonus(slack, d.cfg.ShoulderBalance)),
			Points: []AnchorPoint{
				{Index: t1, Price: l1, Label: "Left Shoulder"},
				{Index: t2, Price: l2, Label: "Head"},
				{Index: t3, Price: l3, Label: "Right Shoulder"},
			},
			Target: ptr(l2 + (neckline-l2)*1.5),
		})
	}
	return out
}

// detectDoubles matches double tops and bottoms: two extremes at the same
// level (within the price tolerance) separated by more than five bars. The
// target is the full depth of the valley (or height of the ridge) between
// them.
func (d *Detector) detectDoubles(highs, lows []float64, peaks, troughs []int) []Pattern {
	var out []Pattern

	for i := 0; i+1 < len(peaks); i++ {
		p1, p2 := peaks[i], peaks[i+1]
		h1, h2 := highs[p1], highs[p2]
		slack := abs(h1-h2) / h1
		if slack >= d.cfg.PriceTolerance || p2-p1 <= 5 {
			continue
		}
		valley := minIn(lows, p1, p2)
		out = append(out, Pattern{
			Name:        "Double Top",
			Category:    BearishReversal,
			Reliability: reliabilityFor("Double Top"),
			Confidence:  clampConfidence(78 + tightnessBonus(slack, d.cfg.PriceTolerance)),
			Points: []AnchorPoint{
				{Index: p1, Price: h1},
				{Index: p2, Price: h2},
			},
			Target: ptr(h1 - (h1 - valley)),
		})
	}

	for i := 0; i+1 < len(troughs); i++ {
		t1, t2 := troughs[i], troughs[i+1]
		l1, l2 := lows[t1], lows[t2]
		slack := abs(l1-l2) / l1
		if slack >= d.cfg.PriceTolerance || t2-t1 <= 5 {
			continue
		}
		ridge := maxIn(highs, t1, t2)
		out = append(out, Pattern{
			Name:        "Double Bottom",
			Category:    BullishReversal,
			Reliability: reliabilityFor("Double Bottom"),
			Confidence:  clampConfidence(82 + tightnessBonus(slack, d.cfg.PriceTolerance)),
			Points: []AnchorPoint{
				{Index: t1, Price: l1},
				{Index: t2, Price: l2},
			},
			Target: ptr(l1 + (ridge - l1)),
		})
	}
	return out
}

// detectTriples matches triple tops and bottoms on the three most recent
// extremes, each adjacent pair within the price tolerance.
func (d *Detector) detectTriples(highs, lows []float64, peaks, troughs []int) []Pattern {
	var out []Pattern

	if len(peaks) >= 3 {
		p1, p2, p3 := peaks[len(peaks)-3], peaks[len(peaks)-2], peaks[len(peaks)-1]
		h1, h2, h3 := highs[p1], highs[p2], highs[p3]
		s1 := abs(h1-h2) / h1
		s2 := abs(h2-h3) / h2
		if s1 < d.cfg.PriceTolerance && s2 < d.cfg.PriceTolerance {
			slack := s1
			if s2 > slack {
				slack = s2
			}
			valley := minIn(lows, p1, p3)
			out = append(out, Pattern{
				Name:        "Triple Top",
				Category:    BearishReversal,
				Reliability: reliabilityFor("Triple Top"),
				Confidence:  clampConfidence(88 + tightnessBonus(slack, d.cfg.PriceTolerance)),
				Points: []AnchorPoint{
					{Index: p1, Price: h1},
					{Index: p2, Price: h2},
					{Index: p3, Price: h3},
				},
				Target: ptr(h1 - (h1-valley)*1.2),
			})
		}
	}

	if len(troughs) >= 3 {
		t1, t2, t3 := troughs[len(troughs)-3], troughs[len(troughs)-2], troughs[len(troughs)-1]
		l1, l2, l3 := lows[t1], lows[t2], lows[t3]
		s1 := abs(l1-l2) / l1
		s2 := abs(l2-l3) / l2
		if s1 < d.cfg.PriceTolerance && s2 < d.cfg.PriceTolerance {
			slack := s1
			if s2 > slack {
				slack = s2
			}
			ridge := maxIn(highs, t1, t3)
			out = append(out, Pattern{
				Name:        "Triple Bottom",
				Category:    BullishReversal,
				Reliability: reliabilityFor("Triple Bottom"),
				Confidence:  clampConfidence(90 + tightnessBonus(slack, d.cfg.PriceTolerance)),
				Points: []AnchorPoint{
					{Index: t1, Price: l1},
					{Index: t2, Price: l2},
					{Index: t3, Price: l3},
				},
				Target: ptr(l1 + (ridge-l1)*1.2),
			})
		}
	}
	return out
}

// detectRounding matches a rounding bottom over the trailing window: lows
// fall monotonically into a central trough and rise monotonically out of
// it.
func (d *Detector) detectRounding(lows []float64) []Pattern {
	window := 30
	if half := len(lows) / 2; half < window {
		window = half
	}
	if window < 12 {
		return nil
	}

	start := len(lows) - window
	recent := lows[start:]
	lowPos := 0
	for i := range recent {
		if recent[i] < recent[lowPos] {
			lowPos = i
		}
	}
	if lowPos <= 5 || lowPos >= len(recent)-5 {
		return nil
	}

	for i := 1; i <= lowPos; i++ {
		if recent[i] > recent[i-1] {
			return nil
		}
	}
	for i := lowPos + 1; i < len(recent); i++ {
		if recent[i] < recent[i-1] {
			return nil
		}
	}

	return []Pattern{{
		Name:        "Rounding Bottom",
		Category:    BullishReversal,
		Reliability: reliabilityFor("Rounding Bottom"),
		Confidence:  85,
		Points: []AnchorPoint{
			{Index: start, Price: recent[0]},
			{Index: start + lowPos, Price: recent[lowPos], Label: "Trough"},
			{Index: len(lows) - 1, Price: recent[len(recent)-1]},
		},
		Target: ptr(recent[lowPos] * 1.15),
	}}
}

func clampConfidence(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
