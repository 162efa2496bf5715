package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	"StockPulse/pkg/cache"
)

// ConsoleReporter renders per-symbol blocks and the final ranking to a
// writer. Symbol blocks arrive from concurrent workers; the mutex keeps
// one block from interleaving with another.
type ConsoleReporter struct {
	mu    sync.Mutex
	w     io.Writer
	names map[string]string
}

func NewConsoleReporter(w io.Writer, names map[string]string) *ConsoleReporter {
	return &ConsoleReporter{w: w, names: names}
}

// SetNames installs the code→name directory once it is available.
func (r *ConsoleReporter) SetNames(names map[string]string) {
	r.mu.Lock()
	r.names = names
	r.mu.Unlock()
}

func (r *ConsoleReporter) displayName(symbol string) string {
	code := strings.SplitN(symbol, ".", 2)[0]
	if name, ok := r.names[code]; ok && name != "" {
		return fmt.Sprintf("%s (%s)", symbol, name)
	}
	return symbol
}

// WriteSymbol prints one finished symbol as a single block.
func (r *ConsoleReporter) WriteSymbol(result models.SymbolReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.Failed() {
		fmt.Fprintf(r.w, "%s  FAILED: %s\n", r.displayName(result.Symbol), result.Err)
		return
	}
	rep := result.Report
	fmt.Fprintf(r.w, "%s  [%s .. %s]\n", r.displayName(result.Symbol),
		rep.Start.Format("2006-01-02"), rep.End.Format("2006-01-02"))
	fmt.Fprintf(r.w, "  return %+.2f%%  maxDD %.2f%%  sharpe %.2f  winRate %.0f%%  trades %d  riskStops %d\n",
		rep.TotalReturn*100, rep.MaxDrawdown*100, rep.Sharpe,
		rep.WinRate*100, rep.Trades, rep.OverriddenDays)
	fmt.Fprintf(r.w, "  latest %s  close %.2f  buy %.3f  sell %.3f\n",
		strings.ToUpper(string(rep.LastAction)), rep.LastClose,
		rep.LastBuyScore, rep.LastSellScore)
	if last := result.Last; last != nil {
		fmt.Fprintf(r.w, "  buy: mom %.2f band %.2f rsi %.2f vol %.2f macro %.3f  |  sell: decay %.2f ob %.2f flow %.2f swan %.2f\n",
			last.Buy.Momentum, last.Buy.Band, last.Buy.Oversold, last.Buy.Volume, last.Buy.Macro,
			last.Sell.TrendDecay, last.Sell.Overbought, last.Sell.CapitalOutflow, last.Sell.BlackSwan)
	}
}

// WriteSummary prints the final ranking, the latest-day recommendations
// and the failed-symbol listing.
func (r *ConsoleReporter) WriteSummary(scan *models.ScanReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "\n==== ranking (%d symbols, %d failed, %s) ====\n",
		scan.Symbols, len(scan.Failed), scan.Elapsed.Round(time.Millisecond))
	for i, s := range scan.Succeeded {
		fmt.Fprintf(r.w, "%3d. %-24s %+8.2f%%  sharpe %6.2f\n",
			i+1, r.displayName(s.Symbol), s.Report.TotalReturn*100, s.Report.Sharpe)
	}

	buys, sells := 0, 0
	fmt.Fprintf(r.w, "\n==== latest-day recommendations ====\n")
	for _, s := range scan.Succeeded {
		switch s.Report.LastAction {
		case models.ActionBuy:
			buys++
			fmt.Fprintf(r.w, "BUY  %-24s buy %.3f  [%s]\n",
				r.displayName(s.Symbol), s.Report.LastBuyScore, buyBasis(s.Last))
		case models.ActionSell:
			sells++
			fmt.Fprintf(r.w, "SELL %-24s sell %.3f  [%s]\n",
				r.displayName(s.Symbol), s.Report.LastSellScore, sellBasis(s.Last))
		}
	}
	if buys+sells == 0 {
		fmt.Fprintln(r.w, "no actionable signals today")
	}

	if len(scan.Failed) > 0 {
		fmt.Fprintf(r.w, "\n==== failed ====\n")
		for _, s := range scan.Failed {
			fmt.Fprintf(r.w, "%-24s %s\n", s.Symbol, s.Err)
		}
	}
}

// buyBasis lists the criteria behind a buy recommendation, so the
// summary says why a symbol surfaced and not just by how much.
func buyBasis(last *models.DailyScore) string {
	if last == nil {
		return "n/a"
	}
	var parts []string
	if last.Buy.Momentum > 0 {
		parts = append(parts, "momentum")
	}
	if last.Buy.Band > 0 {
		parts = append(parts, "band")
	}
	if last.Buy.Oversold > 0 {
		parts = append(parts, "oversold")
	}
	if last.Buy.Volume > 0 {
		parts = append(parts, "volume")
	}
	if last.Buy.Macro > 0 {
		parts = append(parts, "macro")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

func sellBasis(last *models.DailyScore) string {
	if last == nil {
		return "n/a"
	}
	var parts []string
	if last.Sell.TrendDecay > 0 {
		parts = append(parts, "decay")
	}
	if last.Sell.Overbought > 0 {
		parts = append(parts, "overbought")
	}
	if last.Sell.CapitalOutflow > 0 {
		parts = append(parts, "outflow")
	}
	if last.Sell.BlackSwan > 0 {
		parts = append(parts, "blackswan")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// WriteCacheStats prints the cache footer.
func (r *ConsoleReporter) WriteCacheStats(st cache.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "\ncache: %d entries, %.1f KiB\n", st.Entries, float64(st.TotalBytes)/1024)
}
