package usecase

import (
	"errors"
	"math"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/logger"
)

const (
	drawdownKill  = -0.10
	lossWindow    = 3
	lossKillCount = 2
	tradingDays   = 252
)

// BacktestEngine simulates acting on a signal series with a one-bar
// execution lag and a drawdown/consecutive-loss kill switch.
type BacktestEngine struct {
	l *logger.Logger
}

func NewBacktestEngine(l *logger.Logger) *BacktestEngine {
	return &BacktestEngine{l: l}
}

// Run replays the scored days of a bar series. The score series is a
// contiguous suffix of the bars (warmup days are dropped by the scoring
// engine); days before the first scored date are ignored.
func (e *BacktestEngine) Run(bars models.BarSeries, scores []models.DailyScore) (*models.BacktestReport, error) {
	if len(scores) < 2 {
		return nil, errors.New("not enough scored days to backtest")
	}
	offset := -1
	for i, b := range bars {
		if b.Date.Equal(scores[0].Date) {
			offset = i
			break
		}
	}
	if offset < 0 || len(bars)-offset != len(scores) {
		return nil, errors.New("score series does not align with bars")
	}
	window := bars[offset:]

	days := make([]models.BacktestDay, len(scores))
	pnls := make([]float64, len(scores))

	equity := 1.0
	peak := 1.0
	drawdown := 0.0
	prevPos := models.PositionFlat
	trades := 0
	overriddenDays := 0

	for t := range scores {
		// One-bar lag: today's exposure is yesterday's signal.
		pos := models.PositionFlat
		if t > 0 {
			pos = signalPosition(scores[t-1].Action)
		}

		// Kill switches look only at state through t-1; a day's own
		// return can never influence its own position.
		overridden := false
		if pos != models.PositionFlat {
			if drawdown < drawdownKill {
				pos = models.PositionFlat
				overridden = true
			} else if recentLosses(pnls, t) >= lossKillCount {
				pos = models.PositionFlat
				overridden = true
			}
		}
		if overridden {
			overriddenDays++
		}

		rawRet := 0.0
		if t > 0 && window[t-1].Close != 0 {
			rawRet = window[t].Close/window[t-1].Close - 1
		}
		pnl := float64(pos) * rawRet
		pnls[t] = pnl

		equity *= 1 + pnl
		if equity > peak {
			peak = equity
		}
		drawdown = equity/peak - 1

		if pos != models.PositionFlat && pos != prevPos {
			trades++
		}
		prevPos = pos

		days[t] = models.BacktestDay{
			Date:       window[t].Date,
			Position:   pos,
			RawReturn:  rawRet,
			PnL:        pnl,
			Equity:     equity,
			Drawdown:   drawdown,
			Overridden: overridden,
		}
	}

	last := scores[len(scores)-1]
	report := &models.BacktestReport{
		Symbol:         last.Symbol,
		Start:          scores[0].Date,
		End:            last.Date,
		TotalReturn:    equity - 1,
		MaxDrawdown:    maxDrawdown(days),
		Sharpe:         sharpe(pnls),
		AnnualVol:      stddev(pnls) * math.Sqrt(tradingDays),
		WinRate:        winRate(days),
		Trades:         trades,
		OverriddenDays: overriddenDays,
		Days:           days,
		LastAction:     last.Action,
		LastClose:      window[len(window)-1].Close,
		LastBuyScore:   last.Buy.Composite,
		LastSellScore:  last.Sell.Composite,
	}
	return report, nil
}

func signalPosition(a models.Action) models.Position {
	switch a {
	case models.ActionBuy:
		return models.PositionLong
	case models.ActionSell:
		return models.PositionShort
	default:
		return models.PositionFlat
	}
}

// recentLosses counts loss days among the already-adjusted returns in
// the window [t-3, t-1]. A flattened day counts with its own, now zero,
// return, so a forced flattening can cascade.
func recentLosses(pnls []float64, t int) int {
	losses := 0
	for j := t - lossWindow; j < t; j++ {
		if j < 0 {
			continue
		}
		if pnls[j] < 0 {
			losses++
		}
	}
	return losses
}

func maxDrawdown(days []models.BacktestDay) float64 {
	worst := 0.0
	for _, d := range days {
		if d.Drawdown < worst {
			worst = d.Drawdown
		}
	}
	return worst
}

func winRate(days []models.BacktestDay) float64 {
	active, wins := 0, 0
	for _, d := range days {
		if d.Position == models.PositionFlat {
			continue
		}
		active++
		if d.PnL > 0 {
			wins++
		}
	}
	if active == 0 {
		return 0
	}
	return float64(wins) / float64(active)
}

func sharpe(pnls []float64) float64 {
	sd := stddev(pnls)
	if sd == 0 {
		return 0
	}
	return mean(pnls) / sd * math.Sqrt(tradingDays)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func stddev(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	m := mean(v)
	var sq float64
	for _, x := range v {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(v)-1))
}
