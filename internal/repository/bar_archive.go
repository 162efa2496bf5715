package repository

import (
	"context"
	"fmt"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/clickhouse"
	"StockPulse/pkg/logger"
)

var barSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_bars (
		symbol LowCardinality(String),
		date   Date,
		open   Float64,
		high   Float64,
		low    Float64,
		close  Float64,
		volume Float64,
		amount Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (symbol, date)`,
}

// ClickHouseBarArchive persists fetched daily bars for offline analysis.
type ClickHouseBarArchive struct {
	ch *clickhouse.Client
	l  *logger.Logger
}

func NewClickHouseBarArchive(ctx context.Context, ch *clickhouse.Client, l *logger.Logger) (*ClickHouseBarArchive, error) {
	if err := ch.InitSchema(ctx, barSchema); err != nil {
		return nil, fmt.Errorf("bar archive schema: %w", err)
	}
	return &ClickHouseBarArchive{ch: ch, l: l}, nil
}

var _ drepo.BarArchive = (*ClickHouseBarArchive)(nil)

// StoreBars inserts the series in one batch. ReplacingMergeTree makes
// re-runs over the same range idempotent.
func (a *ClickHouseBarArchive) StoreBars(ctx context.Context, bars models.BarSeries) error {
	if len(bars) == 0 {
		return nil
	}
	tx, err := a.ch.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("bar archive begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO daily_bars (symbol, date, open, high, low, close, volume, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("bar archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx, b.Symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, b.Amount); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("bar archive insert %s: %w", b.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("bar archive commit: %w", err)
	}
	a.l.Debug("archived bars",
		logger.String("symbol", bars[0].Symbol),
		logger.Int("rows", len(bars)))
	return nil
}

func (a *ClickHouseBarArchive) Close() error {
	return a.ch.Close()
}
