package models

// SignalRequest asks for the scored signal series of one symbol.
type SignalRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Days   int    `query:"days" default:"120" validate:"gte=30,lte=2000"`
}

// BacktestRequest asks for a full backtest of one symbol.
type BacktestRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Days   int    `query:"days" default:"365" validate:"gte=30,lte=2000"`
	Full   bool   `query:"full"`
}
