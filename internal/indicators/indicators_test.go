package indicators

import (
	"math"
	"testing"
	"time"

	"stock-analyst/config"
	"stock-analyst/internal/marketdata"
)

func barsFromOHLC(t testing.TB, opens, highs, lows, closes, volumes []float64) *marketdata.BarSeries {
	t.Helper()
	ts := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]marketdata.Bar, len(closes))
	for i := range closes {
		b, err := marketdata.NewBar(ts.Add(time.Duration(i)*24*time.Hour), opens[i], highs[i], lows[i], closes[i], volumes[i])
		if err != nil {
			t.Fatalf("bar %d: %v", i, err)
		}
		bars[i] = b
	}
	s, err := marketdata.NewBarSeries(marketdata.Interval1d, bars)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	return s
}

// barsFromCloses synthesizes bars around a close series with a fixed 1.0
// high/low envelope and unit volume.
func barsFromCloses(t testing.TB, closes []float64) *marketdata.BarSeries {
	t.Helper()
	n := len(closes)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		opens[i] = closes[i]
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
		volumes[i] = 1000
	}
	return barsFromOHLC(t, opens, highs, lows, closes, volumes)
}

func flatBars(t *testing.T, price float64, n int) *marketdata.BarSeries {
	t.Helper()
	closes := make([]float64, n)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		closes[i] = price
		opens[i] = price
		highs[i] = price
		lows[i] = price
		volumes[i] = 1000
	}
	return barsFromOHLC(t, opens, highs, lows, closes, volumes)
}

func ramp(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestRSIFlatSeriesPinsAt50(t *testing.T) {
	set := Compute(flatBars(t, 100, 60), config.Default().Indicators)
	v, ok := set.RSI.Last()
	if !ok {
		t.Fatal("rsi undefined after warm-up")
	}
	if v != 50 {
		t.Fatalf("flat rsi = %v, want 50", v)
	}
}

func TestRSIMonotonicSeriesPinsAtExtremes(t *testing.T) {
	cfg := config.Default().Indicators

	up := Compute(barsFromCloses(t, ramp(100, 1, 60)), cfg)
	if v, _ := up.RSI.Last(); v != 100 {
		t.Fatalf("all-gains rsi = %v, want 100", v)
	}

	down := Compute(barsFromCloses(t, ramp(200, -1, 60)), cfg)
	if v, _ := down.RSI.Last(); v != 0 {
		t.Fatalf("all-losses rsi = %v, want 0", v)
	}
}

func TestRSIStaysBounded(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7)
	}
	set := Compute(barsFromCloses(t, closes), config.Default().Indicators)
	for i := 0; i < set.RSI.Len(); i++ {
		v, ok := set.RSI.At(i)
		if !ok {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v outside [0,100]", i, v)
		}
	}
}

func TestRSIWarmup(t *testing.T) {
	cfg := config.Default().Indicators
	set := Compute(barsFromCloses(t, ramp(100, 1, 60)), cfg)
	if set.RSI.Valid(cfg.RSIPeriod - 1) {
		t.Fatalf("rsi defined at index %d, want warm-up NaN", cfg.RSIPeriod-1)
	}
	if !set.RSI.Valid(cfg.RSIPeriod) {
		t.Fatalf("rsi undefined at index %d", cfg.RSIPeriod)
	}
}

func TestMACDSignOnTrendingSeries(t *testing.T) {
	cfg := config.Default().Indicators

	up := Compute(barsFromCloses(t, ramp(100, 2, 80)), cfg)
	if v, ok := up.MACD.Last(); !ok || v <= 0 {
		t.Fatalf("uptrend macd = %v (ok=%v), want > 0", v, ok)
	}

	down := Compute(barsFromCloses(t, ramp(300, -2, 80)), cfg)
	if v, ok := down.MACD.Last(); !ok || v >= 0 {
		t.Fatalf("downtrend macd = %v (ok=%v), want < 0", v, ok)
	}
}

func TestMACDHistogramIsMACDMinusSignal(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + 8*math.Sin(float64(i)/5)
	}
	set := Compute(barsFromCloses(t, closes), config.Default().Indicators)
	for i := 0; i < set.MACDHist.Len(); i++ {
		h, ok := set.MACDHist.At(i)
		if !ok {
			continue
		}
		m, _ := set.MACD.At(i)
		s, _ := set.MACDSignal.At(i)
		if math.Abs(h-(m-s)) > 1e-9 {
			t.Fatalf("hist[%d] = %v, macd-signal = %v", i, h, m-s)
		}
	}
}

func TestBollingerCollapsesOnFlatSeries(t *testing.T) {
	set := Compute(flatBars(t, 100, 40), config.Default().Indicators)
	u, _ := set.BBUpper.Last()
	m, _ := set.BBMiddle.Last()
	l, _ := set.BBLower.Last()
	if u != 100 || m != 100 || l != 100 {
		t.Fatalf("flat bollinger = (%v, %v, %v), want all 100", u, m, l)
	}
	if w, _ := set.BBWidth.Last(); w != 0 {
		t.Fatalf("flat band width = %v, want 0", w)
	}
}

func TestBollingerOrdering(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 50 + 5*math.Sin(float64(i)/4)
	}
	set := Compute(barsFromCloses(t, closes), config.Default().Indicators)
	for i := 0; i < set.BBUpper.Len(); i++ {
		u, ok := set.BBUpper.At(i)
		if !ok {
			continue
		}
		m, _ := set.BBMiddle.At(i)
		l, _ := set.BBLower.At(i)
		if !(l <= m && m <= u) {
			t.Fatalf("bands out of order at %d: %v %v %v", i, l, m, u)
		}
	}
}

func TestATRFlatBarsEqualRange(t *testing.T) {
	// Constant 2.0 high-low range, no gaps: ATR is exactly 2 everywhere
	// it is defined.
	set := Compute(barsFromCloses(t, ramp(100, 0, 40)), config.Default().Indicators)
	v, ok := set.ATR.Last()
	if !ok {
		t.Fatal("atr undefined")
	}
	if math.Abs(v-2) > 1e-9 {
		t.Fatalf("atr = %v, want 2", v)
	}
}

func TestATRWarmup(t *testing.T) {
	cfg := config.Default().Indicators
	set := Compute(barsFromCloses(t, ramp(100, 1, 40)), cfg)
	if set.ATR.Valid(cfg.ATRPeriod - 2) {
		t.Fatalf("atr defined at %d before warm-up", cfg.ATRPeriod-2)
	}
	if !set.ATR.Valid(cfg.ATRPeriod - 1) {
		t.Fatalf("atr undefined at %d", cfg.ATRPeriod-1)
	}
}

func TestStochasticFlatWindowMidpoint(t *testing.T) {
	set := Compute(flatBars(t, 100, 40), config.Default().Indicators)
	if v, _ := set.StochK.Last(); v != 50 {
		t.Fatalf("flat stochastic %%K = %v, want 50", v)
	}
	if v, _ := set.WilliamsR.Last(); v != -50 {
		t.Fatalf("flat williams %%R = %v, want -50", v)
	}
}

func TestStochasticAtExtremes(t *testing.T) {
	cfg := config.Default().Indicators
	up := Compute(barsFromCloses(t, ramp(100, 2, 40)), cfg)
	v, _ := up.StochK.Last()
	// Close sits 1.0 below the window high (the envelope), so %K is high
	// but not 100.
	if v < 90 {
		t.Fatalf("uptrend %%K = %v, want >= 90", v)
	}

	down := Compute(barsFromCloses(t, ramp(200, -2, 40)), cfg)
	v, _ = down.StochK.Last()
	if v > 10 {
		t.Fatalf("downtrend %%K = %v, want <= 10", v)
	}
}

func TestMFIDegenerateWindows(t *testing.T) {
	cfg := config.Default().Indicators
	if v, _ := Compute(flatBars(t, 100, 40), cfg).MFI.Last(); v != 50 {
		t.Fatalf("flat mfi = %v, want 50", v)
	}
	if v, _ := Compute(barsFromCloses(t, ramp(100, 1, 40)), cfg).MFI.Last(); v != 100 {
		t.Fatalf("all-up mfi = %v, want 100", v)
	}
	if v, _ := Compute(barsFromCloses(t, ramp(200, -1, 40)), cfg).MFI.Last(); v != 0 {
		t.Fatalf("all-down mfi = %v, want 0", v)
	}
}

func TestOBVAccumulates(t *testing.T) {
	closes := []float64{100, 101, 102, 101, 101, 103}
	set := Compute(barsFromCloses(t, closes), config.Default().Indicators)
	want := []float64{0, 1000, 2000, 1000, 1000, 2000}
	for i, w := range want {
		v, ok := set.OBV.At(i)
		if !ok || v != w {
			t.Fatalf("obv[%d] = %v (ok=%v), want %v", i, v, ok, w)
		}
	}
}

func TestAroonOnMonotonicTrend(t *testing.T) {
	cfg := config.Default().Indicators
	set := Compute(barsFromCloses(t, ramp(100, 1, 60)), cfg)
	// In a strict uptrend the window high is always the newest bar and the
	// window low the oldest.
	wantUp := float64(cfg.AroonPeriod-1) / float64(cfg.AroonPeriod) * 100
	if v, _ := set.AroonUp.Last(); math.Abs(v-wantUp) > 1e-9 {
		t.Fatalf("aroon up = %v, want %v", v, wantUp)
	}
	if v, _ := set.AroonDown.Last(); v != 0 {
		t.Fatalf("aroon down = %v, want 0", v)
	}
	up, _ := set.AroonUp.Last()
	down, _ := set.AroonDown.Last()
	if osc, _ := set.AroonOsc.Last(); math.Abs(osc-(up-down)) > 1e-9 {
		t.Fatalf("aroon osc = %v, want %v", osc, up-down)
	}
}

func TestPivotsShiftOneBar(t *testing.T) {
	closes := ramp(100, 1, 10)
	series := barsFromCloses(t, closes)
	set := Compute(series, config.Default().Indicators)

	if set.PivotClassic.Pivot.Valid(0) {
		t.Fatal("pivot defined at index 0")
	}
	for i := 1; i < 10; i++ {
		prev := series.At(i - 1)
		wantP := (prev.High + prev.Low + prev.Close) / 3
		p, ok := set.PivotClassic.Pivot.At(i)
		if !ok || math.Abs(p-wantP) > 1e-9 {
			t.Fatalf("pivot[%d] = %v, want %v from bar %d", i, p, wantP, i-1)
		}
		r1, _ := set.PivotClassic.R1.At(i)
		if math.Abs(r1-(2*wantP-prev.Low)) > 1e-9 {
			t.Fatalf("r1[%d] = %v, want %v", i, r1, 2*wantP-prev.Low)
		}
		fr1, _ := set.PivotFib.R1.At(i)
		if math.Abs(fr1-(wantP+0.382*(prev.High-prev.Low))) > 1e-9 {
			t.Fatalf("fib r1[%d] = %v", i, fr1)
		}
	}
}

func TestNearestPivotLevel(t *testing.T) {
	series := barsFromCloses(t, ramp(100, 1, 10))
	set := Compute(series, config.Default().Indicators)

	if _, ok := set.PivotClassic.NearestLevel(0, 100); ok {
		t.Fatal("nearest level defined at index 0")
	}
	p, _ := set.PivotClassic.Pivot.At(5)
	got, ok := set.PivotClassic.NearestLevel(5, p+0.01)
	if !ok || math.Abs(got-p) > 1e-9 {
		t.Fatalf("nearest level = %v (ok=%v), want pivot %v", got, ok, p)
	}
}

func TestSMAEMAWarmupAndValues(t *testing.T) {
	cfg := config.Default().Indicators
	set := Compute(barsFromCloses(t, ramp(1, 1, 250)), cfg)

	sma20 := set.SMA[20]
	if sma20.Valid(18) {
		t.Fatal("sma20 defined at index 18")
	}
	// Mean of 1..20 is 10.5.
	if v, ok := sma20.At(19); !ok || math.Abs(v-10.5) > 1e-9 {
		t.Fatalf("sma20[19] = %v, want 10.5", v)
	}

	for _, p := range cfg.SMAPeriods {
		if _, ok := set.SMA[p]; !ok {
			t.Fatalf("missing sma period %d", p)
		}
	}
	for _, p := range cfg.EMAPeriods {
		if _, ok := set.EMA[p]; !ok {
			t.Fatalf("missing ema period %d", p)
		}
	}
}

func TestVWAPFlatSeriesEqualsTypicalPrice(t *testing.T) {
	set := Compute(flatBars(t, 100, 30), config.Default().Indicators)
	if v, _ := set.VWAP.Last(); math.Abs(v-100) > 1e-9 {
		t.Fatalf("flat vwap = %v, want 100", v)
	}
}

func TestCMFStaysBounded(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100 + 4*math.Sin(float64(i)/3)
	}
	set := Compute(barsFromCloses(t, closes), config.Default().Indicators)
	for i := 0; i < set.CMF.Len(); i++ {
		v, ok := set.CMF.At(i)
		if !ok {
			continue
		}
		if v < -1 || v > 1 {
			t.Fatalf("cmf[%d] = %v outside [-1,1]", i, v)
		}
	}
}

func TestIchimokuSpanShift(t *testing.T) {
	series := barsFromCloses(t, ramp(100, 1, 120))
	set := Compute(series, config.Default().Indicators)

	if set.IchimokuSenkouA.Valid(25) {
		t.Fatal("senkou A defined before the 26-bar shift")
	}
	tenkan, _ := set.IchimokuTenkan.At(60)
	kijun, _ := set.IchimokuKijun.At(60)
	senkouA, ok := set.IchimokuSenkouA.At(86)
	if !ok || math.Abs(senkouA-(tenkan+kijun)/2) > 1e-9 {
		t.Fatalf("senkou A[86] = %v, want midpoint of tenkan/kijun at 60", senkouA)
	}
}

func TestShortSeriesYieldsWarmupNaNsNotPanic(t *testing.T) {
	set := Compute(barsFromCloses(t, ramp(100, 1, 5)), config.Default().Indicators)
	if set.RSI.Valid(4) {
		t.Fatal("rsi defined on 5 bars")
	}
	if _, ok := set.SMA[200].Last(); ok {
		t.Fatal("sma200 defined on 5 bars")
	}
	if set.ADX.Valid(4) {
		t.Fatal("adx defined on 5 bars")
	}
}

func BenchmarkCompute(b *testing.B) {
	closes := make([]float64, 500)
	for i := range closes {
		closes[i] = 100 + 5*math.Sin(float64(i)/7)
	}
	series := barsFromCloses(b, closes)
	cfg := config.Default().Indicators

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compute(series, cfg)
	}
}
