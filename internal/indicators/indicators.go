package indicators

import (
	"math"

	"stock-analyst/config"
	"stock-analyst/internal/marketdata"
)

// IndicatorSet holds every computed series for one bar series. All members
// are aligned 1:1 with the input bars. A caller reading an indicator uses
// the Series accessors and abstains when ok is false.
type IndicatorSet struct {
	SMA map[int]Series
	EMA map[int]Series

	RSI         Series
	RSIByPeriod map[int]Series

	MACD       Series
	MACDSignal Series
	MACDHist   Series

	BBUpper  Series
	BBMiddle Series
	BBLower  Series
	BBWidth  Series

	KCUpper  Series
	KCMiddle Series
	KCLower  Series

	DCUpper  Series
	DCMiddle Series
	DCLower  Series

	ATR     Series
	ADX     Series
	PlusDI  Series
	MinusDI Series

	StochK Series
	StochD Series

	CCI       Series
	WilliamsR Series
	MFI       Series

	OBV  Series
	VWAP Series
	CMF  Series

	ROC      Series
	Momentum Series

	AroonUp   Series
	AroonDown Series
	AroonOsc  Series

	TSI         Series
	UltimateOsc Series

	SAR      Series
	SARTrend []int // +1 rising, -1 falling, aligned with SAR

	PivotClassic PivotLevels
	PivotFib     PivotLevels

	IchimokuTenkan  Series
	IchimokuKijun   Series
	IchimokuSenkouA Series
	IchimokuSenkouB Series
}

// PivotLevels holds one family of pivot series (classic or Fibonacci).
type PivotLevels struct {
	Pivot Series
	R1    Series
	R2    Series
	S1    Series
	S2    Series
}

// Compute derives the full indicator set from a bar series. It is a pure
// function of its input: the series is never mutated and no state survives
// the call. Indicators whose warm-up exceeds the series length come back
// all-NaN rather than failing the whole computation.
func Compute(series *marketdata.BarSeries, cfg config.IndicatorConfig) *IndicatorSet {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	volumes := series.Volumes()
	n := len(closes)

	set := &IndicatorSet{
		SMA:         make(map[int]Series, len(cfg.SMAPeriods)),
		EMA:         make(map[int]Series, len(cfg.EMAPeriods)),
		RSIByPeriod: make(map[int]Series, len(cfg.RSIExtraPeriods)+1),
	}

	for _, p := range cfg.SMAPeriods {
		set.SMA[p] = newSeries(sma(closes, p))
	}
	for _, p := range cfg.EMAPeriods {
		set.EMA[p] = newSeries(ema(closes, p))
	}

	set.RSI = newSeries(rsi(closes, cfg.RSIPeriod))
	set.RSIByPeriod[cfg.RSIPeriod] = set.RSI
	for _, p := range cfg.RSIExtraPeriods {
		set.RSIByPeriod[p] = newSeries(rsi(closes, p))
	}

	macd, signal, hist := macdLines(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	set.MACD = newSeries(macd)
	set.MACDSignal = newSeries(signal)
	set.MACDHist = newSeries(hist)

	set.computeBands(closes, highs, lows, cfg)

	atr := atrSeries(highs, lows, closes, cfg.ATRPeriod)
	set.ATR = newSeries(atr)
	adx, plusDI, minusDI := adxLines(highs, lows, atr, cfg.ADXPeriod)
	set.ADX = newSeries(adx)
	set.PlusDI = newSeries(plusDI)
	set.MinusDI = newSeries(minusDI)

	k, d := stochastic(highs, lows, closes, cfg.StochK, cfg.StochD)
	set.StochK = newSeries(k)
	set.StochD = newSeries(d)

	set.CCI = newSeries(cci(highs, lows, closes, cfg.CCIPeriod))
	set.WilliamsR = newSeries(williamsR(highs, lows, closes, cfg.WilliamsPeriod))
	set.MFI = newSeries(mfi(highs, lows, closes, volumes, cfg.MFIPeriod))

	set.OBV = newSeries(obv(closes, volumes))
	set.VWAP = newSeries(vwap(highs, lows, closes, volumes))
	set.CMF = newSeries(cmf(highs, lows, closes, volumes, cfg.CMFPeriod))

	set.ROC = newSeries(roc(closes, cfg.ROCPeriod))
	set.Momentum = newSeries(momentum(closes, cfg.MomentumPeriod))

	up, down := aroon(highs, lows, cfg.AroonPeriod)
	set.AroonUp = newSeries(up)
	set.AroonDown = newSeries(down)
	osc := nanSlice(n)
	for i := range osc {
		if !math.IsNaN(up[i]) && !math.IsNaN(down[i]) {
			osc[i] = up[i] - down[i]
		}
	}
	set.AroonOsc = newSeries(osc)

	set.TSI = newSeries(tsi(closes))
	set.UltimateOsc = newSeries(ultimateOscillator(highs, lows, closes))

	sarVals, sarTrend := parabolicSAR(highs, lows, closes, sarConfig{
		Start: cfg.SARStart,
		Step:  cfg.SARStep,
		Max:   cfg.SARMax,
	})
	set.SAR = newSeries(sarVals)
	set.SARTrend = sarTrend

	set.PivotClassic, set.PivotFib = pivotPoints(highs, lows, closes)

	set.computeIchimoku(highs, lows)

	return set
}

func (set *IndicatorSet) computeBands(closes, highs, lows []float64, cfg config.IndicatorConfig) {
	p := cfg.BandPeriod
	mult := cfg.BandMultiplier
	n := len(closes)

	mid := sma(closes, p)
	dev := stddev(closes, p)
	upper := nanSlice(n)
	lower := nanSlice(n)
	width := nanSlice(n)
	for i := range closes {
		if math.IsNaN(mid[i]) || math.IsNaN(dev[i]) {
			continue
		}
		upper[i] = mid[i] + dev[i]*mult
		lower[i] = mid[i] - dev[i]*mult
		if mid[i] != 0 {
			width[i] = (upper[i] - lower[i]) / mid[i] * 100
		}
	}
	set.BBUpper = newSeries(upper)
	set.BBMiddle = newSeries(mid)
	set.BBLower = newSeries(lower)
	set.BBWidth = newSeries(width)

	kcMid := ema(closes, p)
	kcATR := atrSeries(highs, lows, closes, p)
	kcUpper := nanSlice(n)
	kcLower := nanSlice(n)
	for i := range closes {
		if math.IsNaN(kcMid[i]) || math.IsNaN(kcATR[i]) {
			continue
		}
		kcUpper[i] = kcMid[i] + kcATR[i]*mult
		kcLower[i] = kcMid[i] - kcATR[i]*mult
	}
	set.KCUpper = newSeries(kcUpper)
	set.KCMiddle = newSeries(kcMid)
	set.KCLower = newSeries(kcLower)

	dcUpper := rollingMax(highs, p)
	dcLower := rollingMin(lows, p)
	dcMid := nanSlice(n)
	for i := range dcMid {
		if !math.IsNaN(dcUpper[i]) && !math.IsNaN(dcLower[i]) {
			dcMid[i] = (dcUpper[i] + dcLower[i]) / 2
		}
	}
	set.DCUpper = newSeries(dcUpper)
	set.DCMiddle = newSeries(dcMid)
	set.DCLower = newSeries(dcLower)
}

func (set *IndicatorSet) computeIchimoku(highs, lows []float64) {
	n := len(highs)
	mid := func(period int) []float64 {
		hi := rollingMax(highs, period)
		lo := rollingMin(lows, period)
		out := nanSlice(n)
		for i := range out {
			if !math.IsNaN(hi[i]) && !math.IsNaN(lo[i]) {
				out[i] = (hi[i] + lo[i]) / 2
			}
		}
		return out
	}

	tenkan := mid(9)
	kijun := mid(26)
	set.IchimokuTenkan = newSeries(tenkan)
	set.IchimokuKijun = newSeries(kijun)

	// Senkou spans are plotted 26 bars ahead: the value at index i was
	// computed from data at i-26.
	senkouA := nanSlice(n)
	for i := 26; i < n; i++ {
		if !math.IsNaN(tenkan[i-26]) && !math.IsNaN(kijun[i-26]) {
			senkouA[i] = (tenkan[i-26] + kijun[i-26]) / 2
		}
	}
	span52 := mid(52)
	senkouB := nanSlice(n)
	for i := 26; i < n; i++ {
		if !math.IsNaN(span52[i-26]) {
			senkouB[i] = span52[i-26]
		}
	}
	set.IchimokuSenkouA = newSeries(senkouA)
	set.IchimokuSenkouB = newSeries(senkouB)
}

// rsi implements Wilder's smoothing: the averages are seeded with a simple
// mean over the first period changes, then updated with alpha = 1/period.
// Degenerate windows are pinned explicitly: no losses -> 100, no gains -> 0,
// flat price -> 50. Never NaN once the warm-up is satisfied.
func rsi(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	alpha := 1.0 / float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = avgGain*(1-alpha) + gain*alpha
		avgLoss = avgLoss*(1-alpha) + loss*alpha
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	case avgGain == 0:
		return 0
	default:
		rs := avgGain / avgLoss
		return 100 - 100/(1+rs)
	}
}

// macdLines computes MACD = EMA(fast) - EMA(slow), its EMA signal line, and
// the histogram.
func macdLines(closes []float64, fast, slow, signalPeriod int) (macd, signal, hist []float64) {
	n := len(closes)
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)

	macd = nanSlice(n)
	for i := range closes {
		if !math.IsNaN(fastEMA[i]) && !math.IsNaN(slowEMA[i]) {
			macd[i] = fastEMA[i] - slowEMA[i]
		}
	}

	signal = ema(macd, signalPeriod)
	hist = nanSlice(n)
	for i := range closes {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}
	return macd, signal, hist
}

// atrSeries is the plain rolling mean of the true range. Wilder's smoothed
// variant exists in the wild; this engine standardizes on the arithmetic
// mean so ATR(p) is defined from index p-1.
func atrSeries(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := highs[i] - lows[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return sma(tr, period)
}

// adxLines computes +DI, -DI and ADX with directional movement normalized
// by ATR: DX = 100*|+DI - -DI| / (+DI + -DI), ADX = rolling mean of DX.
func adxLines(highs, lows, atr []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(highs)
	plusDM := nanSlice(n)
	minusDM := nanSlice(n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		plusDM[i] = 0
		minusDM[i] = 0
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	plusMean := sma(plusDM[1:], period)
	minusMean := sma(minusDM[1:], period)

	plusDI = nanSlice(n)
	minusDI = nanSlice(n)
	dx := nanSlice(n)
	for i := 1; i < n; i++ {
		pm := plusMean[i-1]
		mm := minusMean[i-1]
		if math.IsNaN(pm) || math.IsNaN(mm) || math.IsNaN(atr[i]) || atr[i] == 0 {
			continue
		}
		plusDI[i] = 100 * pm / atr[i]
		minusDI[i] = 100 * mm / atr[i]
		sum := plusDI[i] + minusDI[i]
		if sum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		} else {
			dx[i] = 0
		}
	}

	adx = nanSlice(n)
	first := 0
	for first < n && math.IsNaN(dx[first]) {
		first++
	}
	if n-first >= period {
		smoothed := sma(dx[first:], period)
		for i := range smoothed {
			adx[first+i] = smoothed[i]
		}
	}
	return adx, plusDI, minusDI
}

// stochastic computes %K over the rolling high/low range and %D as the SMA
// of %K. A flat window (high == low) yields the midpoint 50.
func stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	n := len(closes)
	hh := rollingMax(highs, kPeriod)
	ll := rollingMin(lows, kPeriod)
	k = nanSlice(n)
	for i := range closes {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) {
			continue
		}
		if hh[i] == ll[i] {
			k[i] = 50
			continue
		}
		k[i] = (closes[i] - ll[i]) / (hh[i] - ll[i]) * 100
	}
	d = smaSkippingNaN(k, dPeriod)
	return k, d
}

// smaSkippingNaN averages over a window starting where the input becomes
// defined, for chaining smoothing over warm-up prefixed series.
func smaSkippingNaN(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	first := 0
	for first < len(vals) && math.IsNaN(vals[first]) {
		first++
	}
	if len(vals)-first < period {
		return out
	}
	smoothed := sma(vals[first:], period)
	for i := range smoothed {
		out[first+i] = smoothed[i]
	}
	return out
}

// cci computes the Commodity Channel Index over the typical price with the
// conventional 0.015 scaling constant.
func cci(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	tp := make([]float64, n)
	for i := range tp {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}
	smaTP := sma(tp, period)

	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		mad := 0.0
		for j := i - period + 1; j <= i; j++ {
			mad += math.Abs(tp[j] - smaTP[i])
		}
		mad /= float64(period)
		if mad == 0 {
			out[i] = 0
			continue
		}
		out[i] = (tp[i] - smaTP[i]) / (0.015 * mad)
	}
	return out
}

// williamsR computes Williams %R in [-100, 0]. A flat window yields -50.
func williamsR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	hh := rollingMax(highs, period)
	ll := rollingMin(lows, period)
	out := nanSlice(n)
	for i := range closes {
		if math.IsNaN(hh[i]) || math.IsNaN(ll[i]) {
			continue
		}
		if hh[i] == ll[i] {
			out[i] = -50
			continue
		}
		out[i] = -100 * (hh[i] - closes[i]) / (hh[i] - ll[i])
	}
	return out
}

// mfi computes the Money Flow Index with the same degenerate-window policy
// as RSI: no negative flow -> 100, no positive flow -> 0, neither -> 50.
func mfi(highs, lows, closes, volumes []float64, period int) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if n < period+1 {
		return out
	}

	tp := make([]float64, n)
	for i := range tp {
		tp[i] = (highs[i] + lows[i] + closes[i]) / 3
	}

	posFlow := make([]float64, n)
	negFlow := make([]float64, n)
	for i := 1; i < n; i++ {
		flow := tp[i] * volumes[i]
		if tp[i] > tp[i-1] {
			posFlow[i] = flow
		} else if tp[i] < tp[i-1] {
			negFlow[i] = flow
		}
	}

	for i := period; i < n; i++ {
		pos, neg := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			pos += posFlow[j]
			neg += negFlow[j]
		}
		switch {
		case pos == 0 && neg == 0:
			out[i] = 50
		case neg == 0:
			out[i] = 100
		case pos == 0:
			out[i] = 0
		default:
			out[i] = 100 - 100/(1+pos/neg)
		}
	}
	return out
}

// obv computes the cumulative on-balance volume; defined from index 0.
func obv(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// vwap computes the cumulative volume-weighted average of the typical price.
func vwap(highs, lows, closes, volumes []float64) []float64 {
	out := nanSlice(len(closes))
	cumPV := 0.0
	cumVol := 0.0
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		cumPV += tp * volumes[i]
		cumVol += volumes[i]
		if cumVol > 0 {
			out[i] = cumPV / cumVol
		}
	}
	return out
}

// cmf computes the Chaikin Money Flow over the rolling window.
func cmf(highs, lows, closes, volumes []float64, period int) []float64 {
	n := len(closes)
	mfv := make([]float64, n)
	for i := range closes {
		rng := highs[i] - lows[i]
		if rng == 0 {
			continue
		}
		mult := ((closes[i] - lows[i]) - (highs[i] - closes[i])) / rng
		mfv[i] = mult * volumes[i]
	}

	sumMFV := rollingSum(mfv, period)
	sumVol := rollingSum(volumes, period)
	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(sumMFV[i]) || math.IsNaN(sumVol[i]) || sumVol[i] == 0 {
			continue
		}
		out[i] = sumMFV[i] / sumVol[i]
	}
	return out
}

// roc computes the percentage rate of change against the close period bars
// back.
func roc(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	for i := period; i < len(closes); i++ {
		if closes[i-period] != 0 {
			out[i] = (closes[i] - closes[i-period]) / closes[i-period] * 100
		}
	}
	return out
}

// momentum computes the absolute close change against period bars back.
func momentum(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	for i := period; i < len(closes); i++ {
		out[i] = closes[i] - closes[i-period]
	}
	return out
}

// aroon positions the window's extreme within the window: a high at the most
// recent bar scores near 100, at the oldest bar near 0.
func aroon(highs, lows []float64, period int) (up, down []float64) {
	n := len(highs)
	up = nanSlice(n)
	down = nanSlice(n)
	for i := period - 1; i < n; i++ {
		hiIdx, loIdx := 0, 0
		for j := 1; j < period; j++ {
			if highs[i-period+1+j] > highs[i-period+1+hiIdx] {
				hiIdx = j
			}
			if lows[i-period+1+j] < lows[i-period+1+loIdx] {
				loIdx = j
			}
		}
		up[i] = float64(hiIdx) / float64(period) * 100
		down[i] = float64(loIdx) / float64(period) * 100
	}
	return up, down
}

// tsi computes the True Strength Index: double EMA smoothing (25 then 13)
// of the close-to-close momentum, normalized by the same smoothing of the
// absolute momentum.
func tsi(closes []float64) []float64 {
	n := len(closes)
	mom := diff(closes)
	absMom := nanSlice(n)
	for i := range mom {
		if !math.IsNaN(mom[i]) {
			absMom[i] = math.Abs(mom[i])
		}
	}

	num := ema(ema(mom, 25), 13)
	den := ema(ema(absMom, 25), 13)

	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(num[i]) || math.IsNaN(den[i]) || den[i] == 0 {
			continue
		}
		out[i] = 100 * num[i] / den[i]
	}
	return out
}

// ultimateOscillator blends buying pressure over 7/14/28 bar windows with
// 4/2/1 weights.
func ultimateOscillator(highs, lows, closes []float64) []float64 {
	n := len(closes)
	bp := nanSlice(n)
	tr := nanSlice(n)
	for i := 1; i < n; i++ {
		trueLow := math.Min(lows[i], closes[i-1])
		trueHigh := math.Max(highs[i], closes[i-1])
		bp[i] = closes[i] - trueLow
		tr[i] = trueHigh - trueLow
	}

	ratio := func(period int) []float64 {
		sumBP := rollingSum(bp, period)
		sumTR := rollingSum(tr, period)
		out := nanSlice(n)
		for i := range out {
			if math.IsNaN(sumBP[i]) || math.IsNaN(sumTR[i]) || sumTR[i] == 0 {
				continue
			}
			out[i] = sumBP[i] / sumTR[i]
		}
		return out
	}

	avg7 := ratio(7)
	avg14 := ratio(14)
	avg28 := ratio(28)

	out := nanSlice(n)
	for i := range out {
		if math.IsNaN(avg7[i]) || math.IsNaN(avg14[i]) || math.IsNaN(avg28[i]) {
			continue
		}
		out[i] = 100 * (4*avg7[i] + 2*avg14[i] + avg28[i]) / 7
	}
	return out
}
