package analytics

import (
	"math"
	"testing"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/logger"
)

func flatBars(n int, close, volume float64) models.BarSeries {
	bars := make(models.BarSeries, n)
	start := day(2024, 1, 2)
	for i := range bars {
		bars[i] = models.Bar{
			Symbol: "600000.SH",
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: volume,
		}
	}
	return bars
}

func emptyMacroEngine() *ScoringEngine {
	return NewScoringEngine(NewMacroAligner(snapshot(), logger.Nop()), logger.Nop())
}

func TestScoreDropsWarmupRows(t *testing.T) {
	bars := flatBars(60, 100, 1000)
	scores := emptyMacroEngine().Score(bars)
	if len(scores) == 0 {
		t.Fatalf("expected scored days")
	}
	if len(scores) >= len(bars) {
		t.Fatalf("warmup rows must be dropped, got %d of %d", len(scores), len(bars))
	}
	if !scores[0].Date.After(bars[0].Date) {
		t.Fatalf("first scored day should come after warmup")
	}
}

func TestScoreFlatSeriesHolds(t *testing.T) {
	bars := flatBars(60, 100, 1000)
	scores := emptyMacroEngine().Score(bars)

	for _, s := range scores {
		if s.Action != models.ActionHold {
			t.Fatalf("flat series should never signal, got %s on %v", s.Action, s.Date)
		}
		// Empty macro source contributes exactly the 0.10 fallback and
		// nothing else fires.
		if math.Abs(s.Buy.Composite-MacroFallback) > 1e-9 {
			t.Fatalf("buy composite = %v, want %v", s.Buy.Composite, MacroFallback)
		}
		if s.Regime != models.RegimeRange {
			t.Fatalf("flat series should classify as range, got %s", s.Regime)
		}
		if s.Vol != models.VolLow {
			t.Fatalf("flat series should classify as low vol, got %s", s.Vol)
		}
	}
}

func TestScoreTrendingSeriesRegime(t *testing.T) {
	bars := make(models.BarSeries, 60)
	start := day(2024, 1, 2)
	for i := range bars {
		base := 100 + float64(i)
		bars[i] = models.Bar{
			Symbol: "600000.SH",
			Date:   start.AddDate(0, 0, i),
			Open:   base,
			High:   base + 1,
			Low:    base - 1,
			Close:  base,
			Volume: 1000,
		}
	}
	scores := emptyMacroEngine().Score(bars)
	if len(scores) == 0 {
		t.Fatalf("expected scored days")
	}
	last := scores[len(scores)-1]
	if last.Regime != models.RegimeTrend {
		t.Fatalf("steady uptrend should classify as trend, got %s", last.Regime)
	}
	if last.BuyThreshold != buyThresholds[models.RegimeTrend][last.Vol] {
		t.Fatalf("threshold lookup mismatch: %v", last.BuyThreshold)
	}
	// Momentum must fire: MA5 above MA20 and MACD above its signal.
	if last.Buy.Momentum != wMomentum {
		t.Fatalf("uptrend momentum should fire, got %v", last.Buy.Momentum)
	}
}

func TestBuyComponentsConditions(t *testing.T) {
	e := emptyMacroEngine()
	bar := models.Bar{Symbol: "600000.SH", Date: day(2024, 6, 14), Close: 100, Volume: 1000}

	// All conditions on: momentum, below lower band, oversold, volume surge.
	c := e.buyComponents(bar, 101, 100, 1.0, 0.5, 25, 105, 102, 0.30)
	if c.Momentum != wMomentum || c.Band != wBand || c.Oversold != wOversold || c.Volume != wVolume {
		t.Fatalf("expected all sub-scores at full weight: %+v", c)
	}
	want := wMomentum + wBand + wOversold + wVolume + MacroFallback
	if math.Abs(c.Composite-want) > 1e-9 {
		t.Fatalf("composite = %v, want %v", c.Composite, want)
	}

	// Boundary strictness: RSI exactly 30 and ratio exactly +20% do not fire.
	c = e.buyComponents(bar, 99, 100, 0.5, 1.0, 30, 105, 90, 0.20)
	if c.Momentum != 0 {
		t.Fatalf("momentum needs both crossings, got %v", c.Momentum)
	}
	if c.Oversold != 0 {
		t.Fatalf("rsi == 30 must not count as oversold")
	}
	if c.Volume != 0 {
		t.Fatalf("ratio == +20%% must not count as confirmation")
	}

	// Between lower band and mid scores zero; above mid scores half.
	c = e.buyComponents(bar, 99, 100, 0.5, 1.0, 50, 105, 90, 0)
	if c.Band != 0 {
		t.Fatalf("close between bands should score 0, got %v", c.Band)
	}
	c = e.buyComponents(bar, 99, 100, 0.5, 1.0, 50, 95, 90, 0)
	if math.Abs(c.Band-wBand*0.5) > 1e-9 {
		t.Fatalf("close above mid should score half weight, got %v", c.Band)
	}
}

func TestSellComponentsMappings(t *testing.T) {
	e := emptyMacroEngine()
	bars := flatBars(10, 100, 1000)
	returns := bars.Returns()

	// The overbought slope spans RSI 60 to 100, so 70 maps a quarter in
	// and only a pinned RSI earns the full weight.
	c := e.sellComponents(bars, 9, 100, 100, 0, 70, 0, 1000, returns)
	if math.Abs(c.Overbought-wOverbought*0.25) > 1e-9 {
		t.Fatalf("overbought = %v, want %v", c.Overbought, wOverbought*0.25)
	}
	c = e.sellComponents(bars, 9, 100, 100, 0, 100, 0, 1000, returns)
	if math.Abs(c.Overbought-wOverbought) > 1e-9 {
		t.Fatalf("overbought = %v, want full weight %v", c.Overbought, wOverbought)
	}

	// Volume ratio -30% sits halfway down the outflow band.
	c = e.sellComponents(bars, 9, 100, 100, 0, 50, -0.30, 1000, returns)
	if math.Abs(c.CapitalOutflow-wOutflow*0.5) > 1e-9 {
		t.Fatalf("outflow = %v, want %v", c.CapitalOutflow, wOutflow*0.5)
	}
}

func TestBlackSwanForcedMax(t *testing.T) {
	e := emptyMacroEngine()

	// A -6% day on double the 3-day mean volume forces the maximum.
	bars := flatBars(10, 100, 1000)
	bars[9].Close = 94
	bars[9].Volume = 2000
	returns := bars.Returns()
	if got := e.blackSwanSub(bars, 9, 1000, returns); got != 1 {
		t.Fatalf("crash day should force max, got %v", got)
	}

	// A -2.4% drop stays under the crash cutoff even on heavy volume and
	// maps continuously instead.
	bars = flatBars(10, 100, 1000)
	bars[9].Close = 97.6
	bars[9].Volume = 5000
	returns = bars.Returns()
	if got := e.blackSwanSub(bars, 9, 1000, returns); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("sub-cutoff drop should map to 0.8, got %v", got)
	}

	// Two down days with a -2% cumulative loss also force the maximum.
	bars = flatBars(10, 100, 1000)
	bars[8].Close = 99
	bars[9].Close = 98
	returns = bars.Returns()
	if got := e.blackSwanSub(bars, 9, 1000, returns); got != 1 {
		t.Fatalf("loss cluster should force max, got %v", got)
	}

	// A mild -1.5% single day maps continuously against the 3% reference.
	bars = flatBars(10, 100, 1000)
	bars[9].Close = 98.5
	returns = bars.Returns()
	got := e.blackSwanSub(bars, 9, 1000, returns)
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("mild drop should map to 0.5, got %v", got)
	}
}

// A crash followed by a steady recovery leaves RSI pinned low from the
// crash's smoothed losses while the 5-day average climbs back over the
// 20-day one, so momentum and oversold fire together.
func TestScoreEmitsBuySignal(t *testing.T) {
	bars := flatBars(60, 200, 1000)
	crash := []float64{170, 140, 110, 80, 50}
	for i, c := range crash {
		bars[36+i].Close = c
	}
	for i := 41; i < 60; i++ {
		bars[i].Close = 50.5 + 0.5*float64(i-41)
	}
	for i := range bars {
		bars[i].High = bars[i].Close + 1
		bars[i].Low = bars[i].Close - 1
	}

	scores := emptyMacroEngine().Score(bars)
	if len(scores) == 0 {
		t.Fatalf("expected scored days")
	}
	last := scores[len(scores)-1]

	if last.Buy.Momentum != wMomentum {
		t.Fatalf("recovery momentum should fire, got %v", last.Buy.Momentum)
	}
	if last.Buy.Oversold != wOversold {
		t.Fatalf("post-crash RSI should read oversold, got %v", last.Buy.Oversold)
	}
	if math.Abs(last.Buy.Band-wBand*0.5) > 1e-9 {
		t.Fatalf("close above mid should score half band weight, got %v", last.Buy.Band)
	}
	if last.Buy.Volume != 0 {
		t.Fatalf("flat volume must not confirm, got %v", last.Buy.Volume)
	}
	if math.Abs(last.Buy.Macro-MacroFallback) > 1e-9 {
		t.Fatalf("empty macro source should contribute the fallback, got %v", last.Buy.Macro)
	}

	want := wMomentum + wBand*0.5 + wOversold + MacroFallback
	if math.Abs(last.Buy.Composite-want) > 1e-9 {
		t.Fatalf("buy composite = %v, want %v", last.Buy.Composite, want)
	}

	// The crash return still sits inside the 20-day window, so the day
	// reads as a high-vol trend and its threshold is the loosest one.
	if last.Regime != models.RegimeTrend || last.Vol != models.VolHigh {
		t.Fatalf("expected trend/high-vol day, got %s/%s", last.Regime, last.Vol)
	}
	if last.BuyThreshold != buyThresholds[models.RegimeTrend][models.VolHigh] {
		t.Fatalf("threshold lookup mismatch: %v", last.BuyThreshold)
	}
	if last.Action != models.ActionBuy {
		t.Fatalf("composite %v over threshold %v must emit a buy, got %s",
			last.Buy.Composite, last.BuyThreshold, last.Action)
	}
}

// A grinding decline on shrinking volume crosses the sell threshold
// through trend decay, capital outflow and the loss-cluster rule.
func TestScoreEmitsSellSignal(t *testing.T) {
	bars := flatBars(60, 8000, 1e6)
	for i := 1; i < 60; i++ {
		bars[i].Close = bars[i-1].Close
		if i%2 == 1 {
			bars[i].Close = bars[i-1].Close * 0.94
		}
		bars[i].High = bars[i].Close + 1
		bars[i].Low = bars[i].Close - 1
		if i >= 40 {
			bars[i].Volume = bars[i-1].Volume / 2
		}
	}

	scores := emptyMacroEngine().Score(bars)
	if len(scores) == 0 {
		t.Fatalf("expected scored days")
	}
	last := scores[len(scores)-1]

	if last.Action != models.ActionSell {
		t.Fatalf("decline should emit a sell, got %s (sell %v vs threshold %v)",
			last.Action, last.Sell.Composite, last.SellThreshold)
	}
	if last.Sell.Composite < last.SellThreshold {
		t.Fatalf("sell composite %v should cross threshold %v",
			last.Sell.Composite, last.SellThreshold)
	}
	// Buy must lose here despite the oversold RSI and macro fallback.
	if last.Buy.Composite >= last.BuyThreshold {
		t.Fatalf("buy composite %v unexpectedly crossed %v",
			last.Buy.Composite, last.BuyThreshold)
	}
	if last.Sell.CapitalOutflow != wOutflow {
		t.Fatalf("shrinking volume should max outflow, got %v", last.Sell.CapitalOutflow)
	}
	if last.Sell.BlackSwan != wBlackSwan {
		t.Fatalf("loss cluster should max the black swan sub-score, got %v", last.Sell.BlackSwan)
	}
}
