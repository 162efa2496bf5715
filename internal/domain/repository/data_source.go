package repository

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
)

// MarketDataSource fetches equity market data from an upstream provider.
// Implementations perform a single attempt; retry and caching belong to
// the caller.
type MarketDataSource interface {
	// DailyBars returns daily OHLCV bars for one symbol over [start, end].
	DailyBars(ctx context.Context, symbol string, start, end time.Time) (models.BarSeries, error)
	// SymbolDirectory returns the full exchange listing.
	SymbolDirectory(ctx context.Context) ([]models.SymbolInfo, error)
	// IndexConstituents returns the member codes of a named index.
	IndexConstituents(ctx context.Context, indexID string) ([]string, error)
}

// MacroDataSource fetches macroeconomic indicator series.
type MacroDataSource interface {
	MacroSeries(ctx context.Context, kind models.MacroKind) (models.MacroSeries, error)
}

// SignalPublisher emits finished trade signals to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, sig models.Signal) error
	Close() error
}

// BarArchive persists fetched bars for offline analysis.
type BarArchive interface {
	StoreBars(ctx context.Context, bars models.BarSeries) error
	Close() error
}
