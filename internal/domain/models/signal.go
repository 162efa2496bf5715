package models

import "time"

// Action is the trading decision emitted for one symbol on one day.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Regime classifies the market structure used to pick score thresholds.
type Regime string

const (
	RegimeTrend Regime = "trend"
	RegimeRange Regime = "range"
)

// VolBand classifies realized volatility used to pick score thresholds.
type VolBand string

const (
	VolHigh VolBand = "high"
	VolLow  VolBand = "low"
)

// BuyComponents holds the weighted sub-scores of the buy composite.
type BuyComponents struct {
	Momentum  float64 `json:"momentum"`
	Band      float64 `json:"band"`
	Oversold  float64 `json:"oversold"`
	Volume    float64 `json:"volume"`
	Macro     float64 `json:"macro"`
	Composite float64 `json:"composite"`
}

// SellComponents holds the weighted sub-scores of the sell composite.
type SellComponents struct {
	TrendDecay     float64 `json:"trend_decay"`
	Overbought     float64 `json:"overbought"`
	CapitalOutflow float64 `json:"capital_outflow"`
	BlackSwan      float64 `json:"black_swan"`
	Composite      float64 `json:"composite"`
}

// DailyScore is the full scoring output for one symbol on one day.
type DailyScore struct {
	Symbol        string         `json:"symbol"`
	Date          time.Time      `json:"date"`
	Buy           BuyComponents  `json:"buy"`
	Sell          SellComponents `json:"sell"`
	Regime        Regime         `json:"regime"`
	Vol           VolBand        `json:"vol"`
	BuyThreshold  float64        `json:"buy_threshold"`
	SellThreshold float64        `json:"sell_threshold"`
	Action        Action         `json:"action"`
}

// Signal is the compact decision record published downstream.
type Signal struct {
	Symbol    string    `json:"symbol"`
	Date      time.Time `json:"date"`
	Action    Action    `json:"action"`
	BuyScore  float64   `json:"buy_score"`
	SellScore float64   `json:"sell_score"`
	Close     float64   `json:"close"`
}
