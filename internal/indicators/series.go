// Package indicators computes technical indicator series from bar history.
// Every series is aligned 1:1 with the input bars; positions inside an
// indicator's warm-up window hold NaN and are reported as "no value" by the
// accessors, never as a numeric default.
package indicators

import "math"

// Series is a named numeric sequence aligned by index with a BarSeries.
type Series struct {
	values []float64
}

// newSeries wraps raw values. NaN marks warm-up positions.
func newSeries(values []float64) Series { return Series{values: values} }

// Len returns the series length (equal to the bar count).
func (s Series) Len() int { return len(s.values) }

// Valid reports whether index i holds a computed value.
func (s Series) Valid(i int) bool {
	return i >= 0 && i < len(s.values) && !math.IsNaN(s.values[i])
}

// At returns the value at index i; ok is false inside the warm-up window or
// out of range. Callers treat ok == false as "indicator abstains".
func (s Series) At(i int) (float64, bool) {
	if !s.Valid(i) {
		return 0, false
	}
	return s.values[i], true
}

// Last returns the most recent value.
func (s Series) Last() (float64, bool) {
	return s.At(len(s.values) - 1)
}

// Prev returns the value n positions before the end.
func (s Series) Prev(n int) (float64, bool) {
	return s.At(len(s.values) - 1 - n)
}

// Values returns a copy of the raw values, NaN warm-up included.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// sma computes a simple moving average; defined from index period-1.
func sma(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// ema computes an exponential moving average seeded with the SMA of the
// first full window; defined from the first index where period inputs are
// available. Leading NaNs in the input are skipped, so EMAs can be chained
// (EMA of MACD, TSI double smoothing).
func ema(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 {
		return out
	}

	first := 0
	for first < len(vals) && math.IsNaN(vals[first]) {
		first++
	}
	if len(vals)-first < period {
		return out
	}

	seed := 0.0
	for i := first; i < first+period; i++ {
		seed += vals[i]
	}
	seed /= float64(period)

	k := 2.0 / float64(period+1)
	out[first+period-1] = seed
	prev := seed
	for i := first + period; i < len(vals); i++ {
		prev = vals[i]*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// rollingMax computes the max over a trailing window; defined from period-1.
func rollingMax(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	for i := period - 1; i < len(vals); i++ {
		m := vals[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if vals[j] > m {
				m = vals[j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingMin computes the min over a trailing window; defined from period-1.
func rollingMin(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	for i := period - 1; i < len(vals); i++ {
		m := vals[i-period+1]
		for j := i - period + 2; j <= i; j++ {
			if vals[j] < m {
				m = vals[j]
			}
		}
		out[i] = m
	}
	return out
}

// rollingSum computes sums over a trailing window, propagating NaN inputs
// forward so a window containing any NaN stays undefined.
func rollingSum(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	for i := period - 1; i < len(vals); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			sum += vals[j]
		}
		if ok {
			out[i] = sum
		}
	}
	return out
}

// stddev computes the population standard deviation over a trailing window.
func stddev(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	means := sma(vals, period)
	for i := period - 1; i < len(vals); i++ {
		mean := means[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := vals[j] - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out
}

// diff computes vals[i] - vals[i-1]; index 0 is NaN.
func diff(vals []float64) []float64 {
	out := nanSlice(len(vals))
	for i := 1; i < len(vals); i++ {
		out[i] = vals[i] - vals[i-1]
	}
	return out
}
