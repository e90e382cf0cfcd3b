package analysis

import (
	"math"
	"testing"

	"stock-analyst/config"
	"stock-analyst/internal/indicators"
	"stock-analyst/internal/patterns"
)

func TestShortTermPlanATRLevels(t *testing.T) {
	series := flatSeries(t, 100, 60)
	set := indicators.Compute(series, config.Default().Indicators)

	plan := buildEntryExit(HorizonShort, series, set, nil, 1.33)
	if plan.Strategy != StrategyScalp {
		t.Fatalf("strategy = %q", plan.Strategy)
	}
	// Every bar spans exactly 2.0, so the 10-bar average range is 2.
	if math.Abs(plan.StopLoss-(100-2*1.5)) > 1e-9 {
		t.Fatalf("stop loss = %v, want 97", plan.StopLoss)
	}
	if math.Abs(plan.TakeProfit-(100+2*2)) > 1e-9 {
		t.Fatalf("take profit = %v, want 104", plan.TakeProfit)
	}
	if plan.RiskRewardRatio != 1.33 {
		t.Fatalf("risk/reward = %v", plan.RiskRewardRatio)
	}
	if len(plan.BuyZone) != 1 || math.Abs(plan.BuyZone[0].Price-99*1.005) > 1e-9 {
		t.Fatalf("fallback buy zone = %+v", plan.BuyZone)
	}
	if len(plan.SellZone) != 1 || math.Abs(plan.SellZone[0].Price-101*0.995) > 1e-9 {
		t.Fatalf("fallback sell zone = %+v", plan.SellZone)
	}
}

func TestShortTermPlanFoldsPatternTargets(t *testing.T) {
	series := flatSeries(t, 100, 60)
	set := indicators.Compute(series, config.Default().Indicators)

	target := 110.0
	detected := []patterns.Pattern{{
		Name:        "Double Bottom",
		Category:    patterns.BullishReversal,
		Reliability: 4.2,
		Target:      &target,
	}}
	plan := buildEntryExit(HorizonShort, series, set, detected, 1.33)

	if len(plan.BuyZone) != 1 || math.Abs(plan.BuyZone[0].Price-100*0.995) > 1e-9 {
		t.Fatalf("pattern buy zone = %+v", plan.BuyZone)
	}
	if len(plan.SellZone) != 1 || plan.SellZone[0].Price != 110 {
		t.Fatalf("pattern sell zone = %+v", plan.SellZone)
	}
}

func TestMediumTermPlanFibonacci(t *testing.T) {
	series := flatSeries(t, 100, 60)
	set := indicators.Compute(series, config.Default().Indicators)

	plan := buildEntryExit(HorizonMedium, series, set, nil, 2.0)
	if plan.Strategy != StrategySwing {
		t.Fatalf("strategy = %q", plan.Strategy)
	}
	// Range is [99, 101]; the golden retracement sits at 101 - 2*0.618.
	wantFib := 101 - 2*0.618
	if math.Abs(plan.Fibonacci["0.618"]-wantFib) > 1e-9 {
		t.Fatalf("fib 0.618 = %v, want %v", plan.Fibonacci["0.618"], wantFib)
	}
	foundFibBuy := false
	for _, lvl := range plan.BuyZone {
		if math.Abs(lvl.Price-wantFib) < 1e-9 {
			foundFibBuy = true
		}
	}
	if !foundFibBuy {
		t.Fatalf("fib retracement missing from buy zone %+v", plan.BuyZone)
	}
	if math.Abs(plan.StopLoss-99*0.97) > 1e-9 {
		t.Fatalf("stop loss = %v", plan.StopLoss)
	}
	if math.Abs(plan.TakeProfit-101*1.05) > 1e-9 {
		t.Fatalf("take profit = %v", plan.TakeProfit)
	}
}

func TestLongTermPlanFallbacksWithoutHistory(t *testing.T) {
	// 60 bars: no 200-period average, but a full 52-bar range.
	series := flatSeries(t, 100, 60)
	set := indicators.Compute(series, config.Default().Indicators)

	plan := buildEntryExit(HorizonLong, series, set, nil, 3.0)
	if plan.Strategy != StrategyPosition {
		t.Fatalf("strategy = %q", plan.Strategy)
	}
	if len(plan.BuyZone) != 2 || math.Abs(plan.BuyZone[0].Price-90) > 1e-9 {
		t.Fatalf("buy zones = %+v, want sma200 fallback 90 first", plan.BuyZone)
	}
	if math.Abs(plan.BuyZone[1].Price-99*1.05) > 1e-9 {
		t.Fatalf("52-period low buy = %v", plan.BuyZone[1].Price)
	}
	if len(plan.SellZone) != 2 || plan.SellZone[0].Price != 101 {
		t.Fatalf("sell zones = %+v", plan.SellZone)
	}
	if math.Abs(plan.SellZone[1].Price-130) > 1e-9 {
		t.Fatalf("long-term objective = %v", plan.SellZone[1].Price)
	}
	if math.Abs(plan.StopLoss-81) > 1e-9 {
		t.Fatalf("stop loss = %v, want 81", plan.StopLoss)
	}
	if math.Abs(plan.TakeProfit-101*1.1) > 1e-9 {
		t.Fatalf("take profit = %v", plan.TakeProfit)
	}
}

func TestLongTermPlanUsesRealSMA200(t *testing.T) {
	series := flatSeries(t, 100, 250)
	set := indicators.Compute(series, config.Default().Indicators)

	plan := buildEntryExit(HorizonLong, series, set, nil, 3.0)
	if math.Abs(plan.BuyZone[0].Price-100) > 1e-9 {
		t.Fatalf("sma200 buy = %v, want 100", plan.BuyZone[0].Price)
	}
	if math.Abs(plan.StopLoss-90) > 1e-9 {
		t.Fatalf("stop loss = %v, want 90", plan.StopLoss)
	}
}
