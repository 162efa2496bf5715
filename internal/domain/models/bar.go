package models

import "time"

// Bar is a single daily OHLCV record for one symbol.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
	Amount float64   `json:"amount,omitempty"`
}

// BarSeries is a chronologically ordered slice of daily bars.
type BarSeries []Bar

// Closes extracts the close column.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// Returns computes simple daily returns; element i is the return from
// bar i-1 to bar i, with the first element zero.
func (s BarSeries) Returns() []float64 {
	out := make([]float64, len(s))
	for i := 1; i < len(s); i++ {
		if s[i-1].Close != 0 {
			out[i] = s[i].Close/s[i-1].Close - 1
		}
	}
	return out
}
