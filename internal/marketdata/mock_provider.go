package marketdata

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// MockProvider generates deterministic synthetic bar history for development
// and tests. The walk is seeded from the symbol so repeated fetches for the
// same symbol/interval/limit return identical data.
type MockProvider struct {
	basePrices map[string]float64
	anchor     time.Time
}

// NewMockProvider creates a provider with a fixed time anchor so generated
// series are reproducible across calls.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		basePrices: map[string]float64{
			"AAPL":  230.00,
			"MSFT":  420.00,
			"GOOGL": 175.00,
			"NVDA":  120.00,
			"TSLA":  250.00,
		},
		anchor: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

// GetBars returns a synthetic series ending at the provider's time anchor.
func (p *MockProvider) GetBars(_ context.Context, symbol string, interval Interval, limit int) (*BarSeries, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	base, ok := p.basePrices[symbol]
	if !ok {
		base = 100.0
	}

	step := intervalDuration(interval)
	rng := rand.New(rand.NewSource(seedFor(symbol, interval)))

	bars := make([]Bar, 0, limit)
	price := base
	start := p.anchor.Add(-time.Duration(limit) * step)

	for i := 0; i < limit; i++ {
		// Gentle drift plus noise keeps the walk positive and realistic.
		drift := 0.0005 * math.Sin(float64(i)/20)
		change := drift + (rng.Float64()-0.5)*0.02
		open := price
		close := open * (1 + change)
		high := math.Max(open, close) * (1 + rng.Float64()*0.005)
		low := math.Min(open, close) * (1 - rng.Float64()*0.005)
		volume := 1_000_000 * (0.5 + rng.Float64())

		bars = append(bars, Bar{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    volume,
		})
		price = close
	}

	return NewBarSeries(interval, bars)
}

func seedFor(symbol string, interval Interval) int64 {
	var h int64 = 1469598103934665603
	for _, c := range symbol + string(interval) {
		h ^= int64(c)
		h *= 1099511628211
	}
	return h
}

func intervalDuration(interval Interval) time.Duration {
	switch interval {
	case Interval1m:
		return time.Minute
	case Interval5m:
		return 5 * time.Minute
	case Interval15m:
		return 15 * time.Minute
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case Interval1d:
		return 24 * time.Hour
	case Interval1wk:
		return 7 * 24 * time.Hour
	default:
		return time.Hour
	}
}
