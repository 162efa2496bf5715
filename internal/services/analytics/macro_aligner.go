package analytics

import (
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const (
	// MacroBudget is the macro factor's share of the composite buy score.
	MacroBudget = 0.15
	// MacroFallback is returned whenever the CPI window is empty or the
	// composition fails; it signals "data not trustworthy enough to compose".
	MacroFallback = 0.10

	neutralSub = 0.5
)

// MacroAligner maps a daily query date onto the most recent applicable
// values of four irregularly published macro series and reduces them to
// one bounded score. The snapshot is fetched once per run and shared
// read-only across workers.
type MacroAligner struct {
	snap models.MacroSnapshot
	l    *logger.Logger
}

func NewMacroAligner(snap models.MacroSnapshot, l *logger.Logger) *MacroAligner {
	return &MacroAligner{snap: snap, l: l}
}

// Score returns the composite macro score for date, always in [0, 0.15].
func (a *MacroAligner) Score(date time.Time) float64 {
	cpi, ok := a.cpiSub(date)
	if !ok {
		return MacroFallback
	}
	fx := a.fxSub(date)
	pmi := a.pmiSub(date)
	gdp := a.gdpSub(date)

	composite := (0.30*cpi + 0.30*fx + 0.20*pmi + 0.20*gdp) * MacroBudget
	return clamp(composite, 0, MacroBudget)
}

// cpiSub maps headline CPI from [2.5, 4.5] to [0, 1] using the most
// recent row within the 3 months up to and including date. No row in
// that window, including the empty-series case, trips the whole-score
// fallback: without trustworthy inflation data the composite is not
// worth assembling.
func (a *MacroAligner) cpiSub(date time.Time) (float64, bool) {
	series := a.snap.Get(models.MacroCPI)
	cutoff := date.AddDate(0, -3, 0)
	var latest *models.MacroPoint
	for i := range series.Points {
		p := series.Points[i]
		if p.Date.After(date) || p.Date.Before(cutoff) {
			continue
		}
		latest = &series.Points[i]
	}
	if latest == nil {
		a.l.Warn("no cpi row within lookback, falling back", logger.String("date", util.FormatDay(date)))
		return 0, false
	}
	return clamp((latest.Value-2.5)/2.0, 0, 1), true
}

// fxSub scores the USD/CNY rate by proximity to 7.0 within a half-point
// band, from the most recent quote at or before date.
func (a *MacroAligner) fxSub(date time.Time) float64 {
	series := a.snap.Get(models.MacroFX)
	if series.Empty() {
		return neutralSub
	}
	var latest *models.MacroPoint
	for i := range series.Points {
		if series.Points[i].Date.After(date) {
			break
		}
		latest = &series.Points[i]
	}
	if latest == nil {
		return neutralSub
	}
	dev := latest.Value - 7.0
	if dev < 0 {
		dev = -dev
	}
	return clamp(1-dev/0.5, 0, 1)
}

// pmiSub maps the manufacturing index from [45, 60] to [0, 1] for the
// exact target month. No clamp here; out-of-band values legitimately
// score outside [0, 1] until the final composite clamp.
func (a *MacroAligner) pmiSub(date time.Time) float64 {
	series := a.snap.Get(models.MacroPMI)
	if series.Empty() {
		return neutralSub
	}
	month := util.MonthKey(date)
	for _, p := range series.Points {
		if util.MonthKey(p.Date) == month {
			return (p.Value - 45) / 15
		}
	}
	return 0
}

// gdpSub maps quarter-over-quarter GDP growth from [4%, 6%] to [0, 1]
// for the quarter containing date.
func (a *MacroAligner) gdpSub(date time.Time) float64 {
	series := a.snap.Get(models.MacroGDP)
	if len(series.Points) < 2 {
		return neutralSub
	}
	quarter := util.QuarterStart(date)
	for i := 1; i < len(series.Points); i++ {
		if !series.Points[i].Date.Equal(quarter) {
			continue
		}
		prev := series.Points[i-1].Value
		if prev == 0 {
			return neutralSub
		}
		growth := (series.Points[i].Value/prev - 1) * 100
		return clamp((growth-4)/2, 0, 1)
	}
	return neutralSub
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
