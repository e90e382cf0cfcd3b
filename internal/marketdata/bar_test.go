package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"
)

func ts(i int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
}

// TestNewBarRejectsInvalid tests Bar invariant enforcement
func TestNewBarRejectsInvalid(t *testing.T) {
	// Valid bar
	if _, err := NewBar(ts(0), 100, 102, 98, 101, 5000); err != nil {
		t.Errorf("valid bar should construct, got %v", err)
	}

	// High below close
	if _, err := NewBar(ts(0), 100, 100.5, 98, 101, 5000); !errors.Is(err, ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar when high < close, got %v", err)
	}

	// Low above open
	if _, err := NewBar(ts(0), 100, 102, 100.5, 101, 5000); !errors.Is(err, ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar when low > open, got %v", err)
	}

	// Non-positive price
	if _, err := NewBar(ts(0), 0, 102, 98, 101, 5000); !errors.Is(err, ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar for zero open, got %v", err)
	}

	// Negative volume
	if _, err := NewBar(ts(0), 100, 102, 98, 101, -1); !errors.Is(err, ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar for negative volume, got %v", err)
	}
}

// TestNewBarSeriesOrdering tests strictly increasing timestamp enforcement
func TestNewBarSeriesOrdering(t *testing.T) {
	good := []Bar{
		{Timestamp: ts(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Timestamp: ts(1), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
	}
	if _, err := NewBarSeries(Interval1h, good); err != nil {
		t.Fatalf("valid series should construct, got %v", err)
	}

	// Duplicate timestamp
	dup := []Bar{good[0], good[0]}
	if _, err := NewBarSeries(Interval1h, dup); !errors.Is(err, ErrInvalidBar) {
		t.Errorf("expected ErrInvalidBar for duplicate timestamps, got %v", err)
	}

	// Empty
	if _, err := NewBarSeries(Interval1h, nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for empty series, got %v", err)
	}
}

// TestNewBarSeriesLenient tests that bad bars are dropped, not fatal
func TestNewBarSeriesLenient(t *testing.T) {
	bars := []Bar{
		{Timestamp: ts(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Timestamp: ts(1), Open: -5, High: 101, Low: 99, Close: 100, Volume: 1}, // invalid
		{Timestamp: ts(2), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
	}

	s, err := NewBarSeriesLenient(Interval1h, bars)
	if err != nil {
		t.Fatalf("lenient construction failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 surviving bars, got %d", s.Len())
	}
}

// TestTail tests the tail view
func TestTail(t *testing.T) {
	bars := make([]Bar, 10)
	for i := range bars {
		bars[i] = Bar{Timestamp: ts(i), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1}
	}
	s, _ := NewBarSeries(Interval1h, bars)

	tail := s.Tail(3)
	if tail.Len() != 3 {
		t.Errorf("expected tail of 3, got %d", tail.Len())
	}
	if !tail.At(0).Timestamp.Equal(ts(7)) {
		t.Errorf("tail should start at bar 7")
	}
	if s.Tail(100).Len() != 10 {
		t.Errorf("oversized tail should return whole series")
	}
}

// TestMockProviderDeterminism tests that repeated fetches are identical
func TestMockProviderDeterminism(t *testing.T) {
	p := NewMockProvider()
	ctx := context.Background()

	a, err := p.GetBars(ctx, "AAPL", Interval1d, 50)
	if err != nil {
		t.Fatalf("mock fetch failed: %v", err)
	}
	b, _ := p.GetBars(ctx, "AAPL", Interval1d, 50)

	if a.Len() != 50 || b.Len() != 50 {
		t.Fatalf("expected 50 bars, got %d and %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i).Close != b.At(i).Close {
			t.Fatalf("mock provider not deterministic at bar %d", i)
		}
	}
}

// TestCachedProvider tests the TTL cache wrapper
func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{upstream: NewMockProvider()}
	cached := NewCachedProvider(inner)
	ctx := context.Background()

	if _, err := cached.GetBars(ctx, "MSFT", Interval1h, 30); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if _, err := cached.GetBars(ctx, "MSFT", Interval1h, 30); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.calls)
	}
}

type countingProvider struct {
	upstream Provider
	calls    int
}

func (c *countingProvider) GetBars(ctx context.Context, symbol string, interval Interval, limit int) (*BarSeries, error) {
	c.calls++
	return c.upstream.GetBars(ctx, symbol, interval, limit)
}
