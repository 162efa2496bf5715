package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAWarmupAndValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := SMA(values, 3)
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Fatalf("expected NaN during warmup, got %v", got[:2])
	}
	for i, want := range []float64{2, 3, 4} {
		if !almostEqual(got[i+2], want) {
			t.Fatalf("sma[%d] = %v, want %v", i+2, got[i+2], want)
		}
	}
}

func TestEMAConverges(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 10
	}
	got := EMA(values, 12)
	if !almostEqual(got[99], 10) {
		t.Fatalf("ema of constant series should be the constant, got %v", got[99])
	}
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = float64(i + 1)
	}
	rsi := RSI(up, 14)
	if !almostEqual(rsi[29], 100) {
		t.Fatalf("monotonic rise should pin rsi at 100, got %v", rsi[29])
	}

	down := make([]float64, 30)
	for i := range down {
		down[i] = float64(60 - i)
	}
	rsi = RSI(down, 14)
	if !almostEqual(rsi[29], 0) {
		t.Fatalf("monotonic fall should pin rsi at 0, got %v", rsi[29])
	}
	if !math.IsNaN(rsi[13]) {
		t.Fatalf("rsi should be NaN before warmup")
	}
}

func TestBollingerBandsBracketMid(t *testing.T) {
	values := []float64{10, 11, 12, 11, 10, 11, 12, 11, 10, 11, 12, 11, 10, 11, 12, 11, 10, 11, 12, 11}
	mid, upper, lower := Bollinger(values, 20, 2)
	i := len(values) - 1
	if math.IsNaN(mid[i]) {
		t.Fatalf("expected bands at index %d", i)
	}
	if !(lower[i] < mid[i] && mid[i] < upper[i]) {
		t.Fatalf("bands out of order: %v %v %v", lower[i], mid[i], upper[i])
	}
}

func TestRollingStdConstantSeries(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 7
	}
	std := RollingStd(values, 20)
	if !almostEqual(std[24], 0) {
		t.Fatalf("constant series should have zero std, got %v", std[24])
	}
}

func TestVolumeRatioSpike(t *testing.T) {
	volumes := []float64{100, 100, 100, 100, 200}
	got := VolumeRatio(volumes, 3)
	// Today doubles its trailing 3-day mean.
	if !almostEqual(got[4], 1.0) {
		t.Fatalf("expected +100%% ratio, got %v", got[4])
	}
	// Flat history reads as zero change.
	if !almostEqual(got[3], 0) {
		t.Fatalf("expected flat ratio, got %v", got[3])
	}
	for i := 0; i < 3; i++ {
		if !math.IsNaN(got[i]) {
			t.Fatalf("expected NaN during warmup at %d, got %v", i, got[i])
		}
	}
}

func TestVolumeRatioSpikeExcludedFromBase(t *testing.T) {
	// The base is the mean of the three days before today, so yesterday's
	// spike inflates the base and pulls today's reading negative.
	volumes := []float64{100, 100, 100, 400, 100}
	got := VolumeRatio(volumes, 3)
	base := (100.0 + 100.0 + 400.0) / 3.0
	if !almostEqual(got[4], 100/base-1) {
		t.Fatalf("expected %v, got %v", 100/base-1, got[4])
	}
}

func TestADXTrendingVsFlat(t *testing.T) {
	n := 60
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}
	adx := ADX(highs, lows, closes, 14)
	if adx[n-1] < 25 {
		t.Fatalf("steady uptrend should read as strong trend, adx=%v", adx[n-1])
	}

	for i := 0; i < n; i++ {
		highs[i] = 101
		lows[i] = 99
		closes[i] = 100
	}
	adx = ADX(highs, lows, closes, 14)
	if adx[n-1] != 0 {
		t.Fatalf("flat range should have zero directional movement, adx=%v", adx[n-1])
	}
}
