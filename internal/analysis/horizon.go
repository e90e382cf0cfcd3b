package analysis

// Horizon names one of the three analysis views. Each runs on its own bar
// interval and lookback and produces an independent signal.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Signal is the discrete recommendation derived from a score.
type Signal string

const (
	StrongBuy  Signal = "strong_buy"
	Buy        Signal = "buy"
	Hold       Signal = "hold"
	Sell       Signal = "sell"
	StrongSell Signal = "strong_sell"
)

// Bullish reports whether the signal argues for entering long.
func (s Signal) Bullish() bool { return s == Buy || s == StrongBuy }

// Bearish reports whether the signal argues for exiting or shorting.
func (s Signal) Bearish() bool { return s == Sell || s == StrongSell }

// Stage tracks how far a timeframe analysis progressed. An analysis that
// fails partway still reports the stage it reached, so callers can tell a
// data problem from a scoring problem.
type Stage int

const (
	StageIdle Stage = iota
	StageDataFetched
	StageIndicatorsComputed
	StagePatternsDetected
	StageScored
	StageEntryPlanComputed
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageDataFetched:
		return "data_fetched"
	case StageIndicatorsComputed:
		return "indicators_computed"
	case StagePatternsDetected:
		return "patterns_detected"
	case StageScored:
		return "scored"
	case StageEntryPlanComputed:
		return "entry_plan_computed"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
