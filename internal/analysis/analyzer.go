package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"stock-analyst/config"
	"stock-analyst/internal/indicators"
	"stock-analyst/internal/marketdata"
	"stock-analyst/internal/patterns"
)

// TimeframeResult is one horizon's complete verdict. When the analysis
// could not finish, Err holds the cause, Stage shows how far it got, and
// the score is pinned neutral.
type TimeframeResult struct {
	Horizon       Horizon            `json:"horizon"`
	Interval      string             `json:"interval"`
	HoldingPeriod string             `json:"holding_period"`
	Score         float64            `json:"score"`
	Signal        Signal             `json:"signal"`
	CurrentPrice  float64            `json:"current_price"`
	Reasons       []string           `json:"reasons,omitempty"`
	Patterns      []patterns.Pattern `json:"patterns,omitempty"`
	Insights      Insights           `json:"insights,omitempty"`
	EntryExit     *EntryExitPlan     `json:"entry_exit,omitempty"`
	Stage         Stage              `json:"-"`
	Err           error              `json:"-"`
}

// maxReportedPatterns bounds how many patterns one horizon carries into
// its result; detection itself keeps everything.
const maxReportedPatterns = 5

// TimeframeAnalyzer runs the full pipeline for a single horizon: fetch,
// indicators, patterns, score, entry plan.
type TimeframeAnalyzer struct {
	provider marketdata.Provider
	detector *patterns.Detector
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewTimeframeAnalyzer(provider marketdata.Provider, detector *patterns.Detector, cfg *config.Config, logger zerolog.Logger) *TimeframeAnalyzer {
	return &TimeframeAnalyzer{
		provider: provider,
		detector: detector,
		cfg:      cfg,
		logger:   logger.With().Str("component", "timeframe_analyzer").Logger(),
	}
}

// Analyze runs one horizon to completion. It never returns an error:
// failures degrade to a neutral result carrying the cause, so one broken
// horizon cannot sink the other two.
func (a *TimeframeAnalyzer) Analyze(ctx context.Context, symbol string, hc config.HorizonConfig) TimeframeResult {
	horizon := Horizon(hc.Horizon)
	result := TimeframeResult{
		Horizon:       horizon,
		Interval:      hc.Interval,
		HoldingPeriod: hc.HoldingPeriod,
		Score:         50,
		Signal:        Hold,
		Stage:         StageIdle,
	}

	interval, err := marketdata.ParseInterval(hc.Interval)
	if err != nil {
		result.Err = err
		return result
	}

	series, err := a.provider.GetBars(ctx, symbol, interval, hc.Lookback)
	if err != nil {
		result.Err = fmt.Errorf("fetch %s %s: %w", symbol, hc.Interval, err)
		a.logger.Warn().Err(err).Str("symbol", symbol).Str("horizon", hc.Horizon).Msg("bar fetch failed")
		return result
	}
	result.Stage = StageDataFetched
	result.CurrentPrice = series.Last().Close

	if series.Len() < a.cfg.Scoring.MinBars {
		result.Err = fmt.Errorf("%s %s: %w: have %d bars, need %d",
			symbol, hc.Interval, marketdata.ErrInsufficientData, series.Len(), a.cfg.Scoring.MinBars)
		return result
	}

	set := indicators.Compute(series, a.cfg.Indicators)
	result.Stage = StageIndicatorsComputed

	detected := a.detector.Detect(series)
	if len(detected) > maxReportedPatterns {
		detected = detected[:maxReportedPatterns]
	}
	result.Patterns = detected
	result.Stage = StagePatternsDetected

	result.Score, result.Reasons = scoreTechnical(set, detected, result.CurrentPrice, a.cfg.Scoring)
	result.Signal = signalFor(result.Score, a.cfg.Scoring)
	result.Stage = StageScored

	plan := buildEntryExit(horizon, series, set, detected, hc.RiskRewardRatio)
	result.EntryExit = &plan
	result.Stage = StageEntryPlanComputed

	result.Insights = buildInsights(horizon, series, set)
	result.Stage = StageDone

	a.logger.Debug().
		Str("symbol", symbol).
		Str("horizon", hc.Horizon).
		Float64("score", result.Score).
		Str("signal", string(result.Signal)).
		Int("patterns", len(detected)).
		Msg("horizon analysis complete")
	return result
}
