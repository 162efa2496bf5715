package usecase

import (
	"math"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/logger"
)

func scoredBars(closes []float64, actions []models.Action) (models.BarSeries, []models.DailyScore) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make(models.BarSeries, len(closes))
	scores := make([]models.DailyScore, len(closes))
	for i, c := range closes {
		d := start.AddDate(0, 0, i)
		bars[i] = models.Bar{Symbol: "600000.SH", Date: d, Close: c}
		scores[i] = models.DailyScore{Symbol: "600000.SH", Date: d, Action: actions[i]}
	}
	return bars, scores
}

func allActions(n int, a models.Action) []models.Action {
	out := make([]models.Action, n)
	for i := range out {
		out[i] = a
	}
	return out
}

func TestRunAppliesOneBarLag(t *testing.T) {
	closes := []float64{100, 110, 110, 110}
	actions := []models.Action{models.ActionBuy, models.ActionHold, models.ActionHold, models.ActionHold}
	bars, scores := scoredBars(closes, actions)

	report, err := NewBacktestEngine(logger.Nop()).Run(bars, scores)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// The buy decided on day 0 is held over day 1's +10% move.
	if report.Days[0].Position != models.PositionFlat {
		t.Fatalf("day 0 has no prior signal, got %v", report.Days[0].Position)
	}
	if report.Days[1].Position != models.PositionLong {
		t.Fatalf("day 1 should be long, got %v", report.Days[1].Position)
	}
	if math.Abs(report.Days[1].PnL-0.10) > 1e-9 {
		t.Fatalf("day 1 pnl = %v, want 0.10", report.Days[1].PnL)
	}
	if math.Abs(report.TotalReturn-0.10) > 1e-9 {
		t.Fatalf("total return = %v, want 0.10", report.TotalReturn)
	}
}

func TestRunShortPositionProfitsFromDecline(t *testing.T) {
	closes := []float64{100, 90, 90}
	actions := []models.Action{models.ActionSell, models.ActionHold, models.ActionHold}
	bars, scores := scoredBars(closes, actions)

	report, err := NewBacktestEngine(logger.Nop()).Run(bars, scores)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Days[1].Position != models.PositionShort {
		t.Fatalf("day 1 should be short, got %v", report.Days[1].Position)
	}
	if math.Abs(report.Days[1].PnL-0.10) > 1e-9 {
		t.Fatalf("short pnl = %v, want 0.10", report.Days[1].PnL)
	}
}

func TestRunDrawdownKillSwitch(t *testing.T) {
	// Long throughout: -8%, +1%, -8% leaves equity ~14.5% under its peak.
	closes := []float64{100, 92, 92.92, 85.4864, 94.0350, 103.4385}
	bars, scores := scoredBars(closes, allActions(len(closes), models.ActionBuy))

	report, err := NewBacktestEngine(logger.Nop()).Run(bars, scores)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	day4 := report.Days[4]
	if day4.Position != models.PositionFlat || !day4.Overridden {
		t.Fatalf("day 4 should be force-flattened by drawdown, got %+v", day4)
	}
	// With the position flat, equity can never recover, so the kill
	// switch stays latched.
	day5 := report.Days[5]
	if day5.Position != models.PositionFlat || !day5.Overridden {
		t.Fatalf("day 5 should stay flattened, got %+v", day5)
	}
	if day4.PnL != 0 || day5.PnL != 0 {
		t.Fatalf("flattened days must not earn pnl")
	}
	if report.OverriddenDays != 2 {
		t.Fatalf("expected 2 overridden days, got %d", report.OverriddenDays)
	}
}

func TestRunLossWindowKillSwitchCascades(t *testing.T) {
	// Steady -1% declines while long: two loss days trip the window, and
	// the flattened day's zero return then counts inside the next window.
	closes := make([]float64, 8)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		closes[i] = closes[i-1] * 0.99
	}
	bars, scores := scoredBars(closes, allActions(len(closes), models.ActionBuy))

	report, err := NewBacktestEngine(logger.Nop()).Run(bars, scores)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Days 1 and 2 lose; day 3 sees two losses in its window.
	if !report.Days[3].Overridden || report.Days[3].Position != models.PositionFlat {
		t.Fatalf("day 3 should be flattened, got %+v", report.Days[3])
	}
	// Day 4's window holds {-1%, -1%, 0}: still two losses.
	if !report.Days[4].Overridden || report.Days[4].Position != models.PositionFlat {
		t.Fatalf("day 4 should cascade, got %+v", report.Days[4])
	}
	// Day 5's window holds {-1%, 0, 0}: one loss, trading resumes.
	if report.Days[5].Position != models.PositionLong {
		t.Fatalf("day 5 should resume trading, got %+v", report.Days[5])
	}
}

func TestRunReportStatistics(t *testing.T) {
	// +1% every day while long from day 1.
	n := 10
	closes := make([]float64, n)
	closes[0] = 100
	for i := 1; i < n; i++ {
		closes[i] = closes[i-1] * 1.01
	}
	bars, scores := scoredBars(closes, allActions(n, models.ActionBuy))

	report, err := NewBacktestEngine(logger.Nop()).Run(bars, scores)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := math.Pow(1.01, float64(n-1)) - 1
	if math.Abs(report.TotalReturn-want) > 1e-9 {
		t.Fatalf("total return = %v, want %v", report.TotalReturn, want)
	}
	if report.MaxDrawdown != 0 {
		t.Fatalf("monotonic gains should have zero drawdown, got %v", report.MaxDrawdown)
	}
	if report.WinRate != 1 {
		t.Fatalf("every active day wins, got %v", report.WinRate)
	}
	if report.Sharpe <= 0 {
		t.Fatalf("sharpe should be positive, got %v", report.Sharpe)
	}
	if report.Trades != 1 {
		t.Fatalf("one entry expected, got %d", report.Trades)
	}
	if report.LastAction != models.ActionBuy {
		t.Fatalf("last action = %v", report.LastAction)
	}
}

func TestRunRejectsMisalignedScores(t *testing.T) {
	bars, scores := scoredBars([]float64{100, 101, 102}, allActions(3, models.ActionHold))
	scores[0].Date = scores[0].Date.AddDate(0, 0, -30)
	if _, err := NewBacktestEngine(logger.Nop()).Run(bars, scores); err == nil {
		t.Fatalf("expected alignment error")
	}
}

func TestRunNeedsTwoScoredDays(t *testing.T) {
	bars, scores := scoredBars([]float64{100}, allActions(1, models.ActionHold))
	if _, err := NewBacktestEngine(logger.Nop()).Run(bars, scores); err == nil {
		t.Fatalf("expected error for single-day series")
	}
}
