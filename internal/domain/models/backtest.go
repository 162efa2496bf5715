package models

import "time"

// Position is the directional exposure held over one bar.
type Position int

const (
	PositionFlat  Position = 0
	PositionLong  Position = 1
	PositionShort Position = -1
)

// BacktestDay is the per-bar state of a backtest run.
type BacktestDay struct {
	Date       time.Time `json:"date"`
	Position   Position  `json:"position"`
	RawReturn  float64   `json:"raw_return"`
	PnL        float64   `json:"pnl"`
	Equity     float64   `json:"equity"`
	Drawdown   float64   `json:"drawdown"`
	Overridden bool      `json:"overridden"`
}

// BacktestReport summarises one symbol's backtest.
type BacktestReport struct {
	Symbol         string        `json:"symbol"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	TotalReturn    float64       `json:"total_return"`
	AnnualVol      float64       `json:"annual_vol"`
	Sharpe         float64       `json:"sharpe"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	WinRate        float64       `json:"win_rate"`
	Trades         int           `json:"trades"`
	OverriddenDays int           `json:"overridden_days"`
	Days           []BacktestDay `json:"days,omitempty"`
	LastAction     Action        `json:"last_action"`
	LastClose      float64       `json:"last_close"`
	LastBuyScore   float64       `json:"last_buy_score"`
	LastSellScore  float64       `json:"last_sell_score"`
}

// SymbolReport is the pipeline output for one symbol, either a
// completed backtest or a recorded failure.
type SymbolReport struct {
	Symbol string          `json:"symbol"`
	Report *BacktestReport `json:"report,omitempty"`
	Last   *DailyScore     `json:"last,omitempty"`
	Err    string          `json:"error,omitempty"`
}

// Failed reports whether the symbol could not be processed.
func (r SymbolReport) Failed() bool {
	return r.Err != ""
}

// ScanReport aggregates a full pipeline run across the universe.
type ScanReport struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Elapsed     time.Duration  `json:"elapsed"`
	Symbols     int            `json:"symbols"`
	Succeeded   []SymbolReport `json:"succeeded"`
	Failed      []SymbolReport `json:"failed"`
}
