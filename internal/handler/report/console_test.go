package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
)

func buyReport(symbol string) models.SymbolReport {
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	return models.SymbolReport{
		Symbol: symbol,
		Report: &models.BacktestReport{
			Symbol:       symbol,
			Start:        day.AddDate(0, -3, 0),
			End:          day,
			TotalReturn:  0.12,
			Sharpe:       1.4,
			LastAction:   models.ActionBuy,
			LastClose:    59.5,
			LastBuyScore: 0.65,
		},
		Last: &models.DailyScore{
			Symbol: symbol,
			Date:   day,
			Buy: models.BuyComponents{
				Momentum:  0.30,
				Band:      0.10,
				Oversold:  0.15,
				Macro:     0.10,
				Composite: 0.65,
			},
			Action: models.ActionBuy,
		},
	}
}

func TestWriteSummaryListsBuyBasis(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil)

	r.WriteSummary(&models.ScanReport{
		GeneratedAt: time.Now(),
		Elapsed:     1500 * time.Millisecond,
		Symbols:     1,
		Succeeded:   []models.SymbolReport{buyReport("600000.SH")},
	})

	out := buf.String()
	if !strings.Contains(out, "BUY  600000.SH") {
		t.Fatalf("missing buy line:\n%s", out)
	}
	// The recommendation line names the criteria that fired, in weight
	// order, and omits the ones that did not.
	if !strings.Contains(out, "[momentum+band+oversold+macro]") {
		t.Fatalf("missing buy basis:\n%s", out)
	}
	if strings.Contains(out, "volume") {
		t.Fatalf("silent criterion leaked into basis:\n%s", out)
	}
}

func TestWriteSummaryHandlesMissingBreakdown(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil)

	rep := buyReport("000001.SZ")
	rep.Last = nil
	r.WriteSummary(&models.ScanReport{
		GeneratedAt: time.Now(),
		Symbols:     1,
		Succeeded:   []models.SymbolReport{rep},
	})

	if !strings.Contains(buf.String(), "[n/a]") {
		t.Fatalf("expected n/a basis when breakdown is absent:\n%s", buf.String())
	}
}

func TestWriteSummaryNoSignals(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil)

	rep := buyReport("600519.SH")
	rep.Report.LastAction = models.ActionHold
	r.WriteSummary(&models.ScanReport{
		GeneratedAt: time.Now(),
		Symbols:     1,
		Succeeded:   []models.SymbolReport{rep},
	})

	if !strings.Contains(buf.String(), "no actionable signals today") {
		t.Fatalf("expected empty-day notice:\n%s", buf.String())
	}
}
