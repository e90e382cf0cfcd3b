package analysis

import (
	"stock-analyst/config"
)

// ConsensusResult aggregates the three horizon verdicts into one call.
// Confidence follows the majority rule: two agreeing horizons give 80,
// each additional agreeing horizon adds 10; no majority is a neutral 50.
type ConsensusResult struct {
	AverageScore float64            `json:"average_score"`
	Signal       Signal             `json:"signal"`
	Confidence   float64            `json:"confidence"`
	PerHorizon   map[Horizon]Signal `json:"per_horizon"`
}

// buildConsensus combines the per-horizon results. The average is weighted
// by the per-horizon weights from configuration; equal weights reduce it to
// the arithmetic mean. Horizons that failed contribute their neutral score
// but never a directional vote.
func buildConsensus(results []TimeframeResult, horizons []config.HorizonConfig) ConsensusResult {
	out := ConsensusResult{
		Signal:     Hold,
		Confidence: 50,
		PerHorizon: make(map[Horizon]Signal, len(results)),
	}
	if len(results) == 0 {
		return out
	}

	weightFor := func(h Horizon) float64 {
		for _, hc := range horizons {
			if Horizon(hc.Horizon) == h {
				return hc.Weight
			}
		}
		return 1.0
	}

	weightedSum := 0.0
	totalWeight := 0.0
	bullish, bearish := 0, 0
	for _, r := range results {
		w := weightFor(r.Horizon)
		weightedSum += r.Score * w
		totalWeight += w
		out.PerHorizon[r.Horizon] = r.Signal

		if r.Err != nil {
			continue
		}
		if r.Signal.Bullish() {
			bullish++
		} else if r.Signal.Bearish() {
			bearish++
		}
	}
	if totalWeight > 0 {
		out.AverageScore = weightedSum / totalWeight
	}

	switch {
	case bullish >= 2:
		out.Signal = Buy
		out.Confidence = 80 + float64(bullish-2)*10
	case bearish >= 2:
		out.Signal = Sell
		out.Confidence = 80 + float64(bearish-2)*10
	}
	return out
}
