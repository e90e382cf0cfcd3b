package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stock-analyst/config"
	"stock-analyst/internal/marketdata"
	"stock-analyst/internal/patterns"
)

// FundamentalScorer supplies the 0-100 fundamental health score for a
// symbol. Implementations live outside this package; a nil scorer disables
// blending entirely.
type FundamentalScorer interface {
	Score(ctx context.Context, symbol string) (float64, error)
}

// Report is one complete multi-horizon analysis of a symbol.
type Report struct {
	ID               uuid.UUID         `json:"id"`
	Symbol           string            `json:"symbol"`
	GeneratedAt      time.Time         `json:"generated_at"`
	Horizons         []TimeframeResult `json:"horizons"`
	Consensus        ConsensusResult   `json:"consensus"`
	FundamentalScore *float64          `json:"fundamental_score,omitempty"`
}

// Engine fans one symbol out over every configured horizon in parallel and
// folds the results into a consensus.
type Engine struct {
	analyzer     *TimeframeAnalyzer
	fundamentals FundamentalScorer
	cfg          *config.Config
	logger       zerolog.Logger
}

// NewEngine wires the analysis pipeline. fundamentals may be nil.
func NewEngine(provider marketdata.Provider, fundamentals FundamentalScorer, cfg *config.Config, logger zerolog.Logger) *Engine {
	detector := patterns.NewDetector(cfg.Patterns, logger)
	return &Engine{
		analyzer:     NewTimeframeAnalyzer(provider, detector, cfg, logger),
		fundamentals: fundamentals,
		cfg:          cfg,
		logger:       logger.With().Str("component", "engine").Logger(),
	}
}

// Analyze runs every configured horizon concurrently and aggregates them.
// Individual horizon failures are carried inside their results; Analyze
// itself only fails when the context is cancelled before work completes.
func (e *Engine) Analyze(ctx context.Context, symbol string) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()

	report := &Report{
		ID:          uuid.New(),
		Symbol:      symbol,
		GeneratedAt: started,
		Horizons:    make([]TimeframeResult, len(e.cfg.Horizons)),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, hc := range e.cfg.Horizons {
		wg.Add(1)
		go func(i int, hc config.HorizonConfig) {
			defer wg.Done()
			result := e.analyzer.Analyze(ctx, symbol, hc)
			mu.Lock()
			report.Horizons[i] = result
			mu.Unlock()
		}(i, hc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.blendFundamentals(ctx, symbol, report)
	report.Consensus = buildConsensus(report.Horizons, e.cfg.Horizons)

	e.logger.Info().
		Str("symbol", symbol).
		Str("report_id", report.ID.String()).
		Float64("avg_score", report.Consensus.AverageScore).
		Str("signal", string(report.Consensus.Signal)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")
	return report, nil
}

// blendFundamentals folds the symbol's fundamental score into each horizon
// that completed, re-deriving the signal from the blended score. Fetch
// failures log and leave the technical scores untouched.
func (e *Engine) blendFundamentals(ctx context.Context, symbol string, report *Report) {
	fc := e.cfg.Fundamentals
	if !fc.Enabled || e.fundamentals == nil {
		return
	}
	score, err := e.fundamentals.Score(ctx, symbol)
	if err != nil {
		e.logger.Warn().Err(err).Str("symbol", symbol).Msg("fundamental score unavailable")
		return
	}
	report.FundamentalScore = &score

	for i := range report.Horizons {
		r := &report.Horizons[i]
		if r.Err != nil {
			continue
		}
		r.Score = clampScore(r.Score*fc.TechnicalWeight + score*fc.FundamentalWeight)
		r.Signal = signalFor(r.Score, e.cfg.Scoring)
	}
}
