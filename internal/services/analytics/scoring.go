package analytics

import (
	"StockPulse/internal/domain/models"
	"StockPulse/internal/service/indicator"
	"StockPulse/pkg/logger"
)

// Fixed sub-score weights. Buy-side weights plus the macro budget sum
// to 1.0, as do the sell-side weights, so composites stay in [0, 1].
const (
	wMomentum = 0.30
	wBand     = 0.20
	wOversold = 0.15
	wVolume   = 0.20

	wTrendDecay = 0.40
	wOverbought = 0.30
	wOutflow    = 0.20
	wBlackSwan  = 0.10
)

const (
	adxTrendCutoff = 25.0
	highVolCutoff  = 0.03
	volRatioWindow = 3
	volWindow      = 20
)

// buyThresholds and sellThresholds are the regime/volatility conditioned
// decision cutoffs. Trending markets need less confirmation to act.
var buyThresholds = map[models.Regime]map[models.VolBand]float64{
	models.RegimeTrend: {models.VolHigh: 0.55, models.VolLow: 0.60},
	models.RegimeRange: {models.VolHigh: 0.70, models.VolLow: 0.65},
}

var sellThresholds = map[models.Regime]map[models.VolBand]float64{
	models.RegimeTrend: {models.VolHigh: 0.45, models.VolLow: 0.50},
	models.RegimeRange: {models.VolHigh: 0.55, models.VolLow: 0.50},
}

// ScoringEngine turns a bar series into per-day composite scores and
// discrete signals.
type ScoringEngine struct {
	aligner *MacroAligner
	l       *logger.Logger
}

func NewScoringEngine(aligner *MacroAligner, l *logger.Logger) *ScoringEngine {
	return &ScoringEngine{aligner: aligner, l: l}
}

// Score computes the daily score series. Days whose indicator inputs
// are still warming up are dropped, so the output can be shorter than
// the input.
func (e *ScoringEngine) Score(bars models.BarSeries) []models.DailyScore {
	if len(bars) == 0 {
		return nil
	}
	closes := bars.Closes()
	volumes := bars.Volumes()
	returns := bars.Returns()
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
	}

	ma5 := indicator.SMA(closes, 5)
	ma20 := indicator.SMA(closes, 20)
	macd, signal, hist := indicator.MACD(closes)
	rsi := indicator.RSI(closes, 14)
	mid, _, lower := indicator.Bollinger(closes, 20, 2)
	volRatio := indicator.VolumeRatio(volumes, volRatioWindow)
	vol3 := indicator.SMA(volumes, volRatioWindow)
	adx := indicator.ADX(highs, lows, closes, 14)
	retStd := indicator.RollingStd(returns, volWindow)

	out := make([]models.DailyScore, 0, len(bars))
	for i := range bars {
		if !indicator.Ready(ma5[i], ma20[i], macd[i], signal[i], hist[i],
			rsi[i], mid[i], lower[i], volRatio[i], vol3[i], adx[i], retStd[i]) {
			continue
		}

		regime := models.RegimeRange
		if adx[i] > adxTrendCutoff {
			regime = models.RegimeTrend
		}
		volBand := models.VolLow
		if retStd[i] > highVolCutoff {
			volBand = models.VolHigh
		}

		buy := e.buyComponents(bars[i], ma5[i], ma20[i], macd[i], signal[i],
			rsi[i], mid[i], lower[i], volRatio[i])
		sell := e.sellComponents(bars, i, ma5[i], ma20[i], hist[i], rsi[i],
			volRatio[i], vol3[i], returns)

		buyThr := buyThresholds[regime][volBand]
		sellThr := sellThresholds[regime][volBand]

		// Buy is checked first, so a day can never flag both.
		action := models.ActionHold
		switch {
		case buy.Composite >= buyThr:
			action = models.ActionBuy
		case sell.Composite >= sellThr:
			action = models.ActionSell
		}

		out = append(out, models.DailyScore{
			Symbol:        bars[i].Symbol,
			Date:          bars[i].Date,
			Buy:           buy,
			Sell:          sell,
			Regime:        regime,
			Vol:           volBand,
			BuyThreshold:  buyThr,
			SellThreshold: sellThr,
			Action:        action,
		})
	}
	return out
}

func (e *ScoringEngine) buyComponents(bar models.Bar, ma5, ma20, macd, signal, rsi, mid, lower, volRatio float64) models.BuyComponents {
	var c models.BuyComponents

	if ma5 > ma20 && macd > signal {
		c.Momentum = wMomentum
	}
	switch {
	case bar.Close < lower:
		c.Band = wBand
	case bar.Close > mid:
		c.Band = wBand * 0.5
	}
	if rsi < 30 {
		c.Oversold = wOversold
	}
	if volRatio > 0.20 {
		c.Volume = wVolume
	}
	// Already weighted: the aligner's output lives in [0, 0.15].
	c.Macro = e.aligner.Score(bar.Date)

	c.Composite = clamp(c.Momentum+c.Band+c.Oversold+c.Volume+c.Macro, 0, 1)
	return c
}

func (e *ScoringEngine) sellComponents(bars models.BarSeries, i int, ma5, ma20, hist, rsi, volRatio, vol3 float64, returns []float64) models.SellComponents {
	var c models.SellComponents
	close := bars[i].Close

	// Trend decay blends the negative MA spread with the negative MACD
	// histogram, each normalized against the close.
	spread := clamp((ma20-ma5)/close/0.02, 0, 1)
	histNeg := clamp(-hist/close/0.01, 0, 1)
	c.TrendDecay = wTrendDecay * (0.5*spread + 0.5*histNeg)

	// Saturates at RSI 100, so the slope spans the full overbought band.
	c.Overbought = wOverbought * clamp((rsi-60)/40, 0, 1)

	c.CapitalOutflow = wOutflow * clamp((-0.10-volRatio)/0.40, 0, 1)

	c.BlackSwan = wBlackSwan * e.blackSwanSub(bars, i, vol3, returns)

	c.Composite = clamp(c.TrendDecay+c.Overbought+c.CapitalOutflow+c.BlackSwan, 0, 1)
	return c
}

// blackSwanSub forces the maximum on crash rules: a drop beyond 2.5% on
// volume above 1.2x its 3-day mean, or a 3-day window with at least two
// down days and a cumulative loss beyond 1.5%. Otherwise the day's drop
// maps continuously against a 3% reference.
func (e *ScoringEngine) blackSwanSub(bars models.BarSeries, i int, vol3 float64, returns []float64) float64 {
	ret := returns[i]

	if ret < -0.025 && vol3 > 0 && bars[i].Volume > 1.2*vol3 {
		return 1
	}
	if i >= 2 {
		downDays := 0
		cum := 1.0
		for j := i - 2; j <= i; j++ {
			if returns[j] < 0 {
				downDays++
			}
			cum *= 1 + returns[j]
		}
		if downDays >= 2 && cum-1 <= -0.015 {
			return 1
		}
	}
	return clamp(-ret/0.03, 0, 1)
}
