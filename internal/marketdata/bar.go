// Package marketdata defines the validated OHLCV bar model consumed by the
// analysis engine and the provider interface that supplies it.
package marketdata

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidBar marks a bar that violates the OHLCV invariants. It is
	// fatal to that single bar's inclusion, never to a whole series.
	ErrInvalidBar = errors.New("invalid bar")

	// ErrInsufficientData marks a series shorter than a required warm-up
	// window. Callers degrade to a neutral result instead of failing.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoData is returned by providers when a symbol has no bars at all.
	ErrNoData = errors.New("no data for symbol")
)

// Interval is the nominal spacing between consecutive bars.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
)

// ParseInterval validates an interval string from configuration.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case Interval1m, Interval5m, Interval15m, Interval1h, Interval4h, Interval1d, Interval1wk:
		return Interval(s), nil
	}
	return "", fmt.Errorf("unknown bar interval %q", s)
}

// Bar is one OHLCV observation. Bars are immutable once constructed.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// NewBar validates the OHLCV invariants: all prices positive, volume
// non-negative, and low <= min(open,close) <= max(open,close) <= high.
func NewBar(ts time.Time, open, high, low, close, volume float64) (Bar, error) {
	b := Bar{Timestamp: ts, Open: open, High: high, Low: low, Close: close, Volume: volume}
	if err := b.validate(); err != nil {
		return Bar{}, err
	}
	return b, nil
}

func (b Bar) validate() error {
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("%w: non-positive price at %s", ErrInvalidBar, b.Timestamp.Format(time.RFC3339))
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: negative volume at %s", ErrInvalidBar, b.Timestamp.Format(time.RFC3339))
	}
	lo, hi := b.Open, b.Close
	if lo > hi {
		lo, hi = hi, lo
	}
	if b.Low > lo || b.High < hi {
		return fmt.Errorf("%w: high/low do not envelop open/close at %s", ErrInvalidBar, b.Timestamp.Format(time.RFC3339))
	}
	return nil
}

// Bullish reports whether the bar closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// Body returns the absolute open-close distance.
func (b Bar) Body() float64 {
	body := b.Close - b.Open
	if body < 0 {
		return -body
	}
	return body
}

// UpperWick returns the distance from the body top to the high.
func (b Bar) UpperWick() float64 {
	top := b.Open
	if b.Close > top {
		top = b.Close
	}
	return b.High - top
}

// LowerWick returns the distance from the low to the body bottom.
func (b Bar) LowerWick() float64 {
	bottom := b.Open
	if b.Close < bottom {
		bottom = b.Close
	}
	return bottom - b.Low
}

// BarSeries is an ordered sequence of bars with strictly increasing
// timestamps and a fixed nominal interval. It is never mutated after
// construction.
type BarSeries struct {
	interval Interval
	bars     []Bar
}

// NewBarSeries validates every bar and the timestamp ordering. Any invalid
// bar fails the whole construction; use NewBarSeriesLenient to drop bad bars
// instead.
func NewBarSeries(interval Interval, bars []Bar) (*BarSeries, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInsufficientData)
	}
	for i, b := range bars {
		if err := b.validate(); err != nil {
			return nil, err
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at index %d", ErrInvalidBar, i)
		}
	}
	owned := make([]Bar, len(bars))
	copy(owned, bars)
	return &BarSeries{interval: interval, bars: owned}, nil
}

// NewBarSeriesLenient drops bars that violate the invariants (or go
// backwards in time) and builds a series from the survivors. Returns
// ErrInsufficientData when nothing survives.
func NewBarSeriesLenient(interval Interval, bars []Bar) (*BarSeries, error) {
	kept := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.validate() != nil {
			continue
		}
		if len(kept) > 0 && !kept[len(kept)-1].Timestamp.Before(b.Timestamp) {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no valid bars", ErrInsufficientData)
	}
	return &BarSeries{interval: interval, bars: kept}, nil
}

// Interval returns the nominal bar spacing.
func (s *BarSeries) Interval() Interval { return s.interval }

// Len returns the number of bars.
func (s *BarSeries) Len() int { return len(s.bars) }

// At returns the bar at index i.
func (s *BarSeries) At(i int) Bar { return s.bars[i] }

// Last returns the most recent bar.
func (s *BarSeries) Last() Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of the underlying bars.
func (s *BarSeries) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Tail returns a view of the last n bars (the whole series when shorter).
// The returned series shares no mutable state with callers.
func (s *BarSeries) Tail(n int) *BarSeries {
	if n >= len(s.bars) {
		return s
	}
	return &BarSeries{interval: s.interval, bars: s.bars[len(s.bars)-n:]}
}

// Closes returns the close prices in order.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high prices in order.
func (s *BarSeries) Highs() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low prices in order.
func (s *BarSeries) Lows() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volumes in order.
func (s *BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Volume
	}
	return out
}
