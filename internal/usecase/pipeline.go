package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/services/analytics"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
)

// ReportSink receives finished per-symbol blocks as workers complete.
// Calls are serialized by the pipeline, so one symbol's block is never
// interleaved with another's.
type ReportSink interface {
	WriteSymbol(report models.SymbolReport)
}

// Pipeline fans symbol work out over a bounded worker pool. Each
// worker runs an independent fetch, score and backtest pass; a failing
// symbol is recorded and never aborts the batch.
type Pipeline struct {
	data      *DataClient
	backtest  *BacktestEngine
	publisher drepo.SignalPublisher
	archive   drepo.BarArchive
	sink      ReportSink
	rec       *metrics.Recorder
	l         *logger.Logger
	workers   int
}

// PipelineOption configures Pipeline.
type PipelineOption func(*Pipeline)

// WithWorkers bounds the worker pool.
func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithPublisher attaches a downstream signal publisher.
func WithPublisher(pub drepo.SignalPublisher) PipelineOption {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithArchive attaches a bar archive written on every successful fetch.
func WithArchive(ar drepo.BarArchive) PipelineOption {
	return func(p *Pipeline) { p.archive = ar }
}

// WithSink attaches a per-symbol report sink.
func WithSink(sink ReportSink) PipelineOption {
	return func(p *Pipeline) { p.sink = sink }
}

func NewPipeline(data *DataClient, backtest *BacktestEngine, rec *metrics.Recorder, l *logger.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		data:     data,
		backtest: backtest,
		rec:      rec,
		l:        l,
		workers:  8,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ResolveUniverse picks the instrument set for a run: explicit symbols
// when configured, otherwise the constituents of the configured index.
func (p *Pipeline) ResolveUniverse(ctx context.Context, symbols []string, indexID string) ([]string, error) {
	if len(symbols) > 0 {
		return symbols, nil
	}
	if indexID == "" {
		return nil, fmt.Errorf("no symbols and no index configured")
	}
	return p.data.FetchIndexConstituents(ctx, indexID, true)
}

// Run processes every symbol and aggregates the results. The macro
// snapshot is fetched up front, before any worker starts, so all
// workers share one fully populated read-only snapshot.
func (p *Pipeline) Run(ctx context.Context, symbols []string, start, end time.Time) (*models.ScanReport, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty symbol universe")
	}

	started := time.Now()
	snap := p.data.FetchMacroSnapshot(ctx, true)
	aligner := analytics.NewMacroAligner(snap, p.l)
	engine := analytics.NewScoringEngine(aligner, p.l)

	p.l.Info("scan starting",
		logger.Int("symbols", len(symbols)),
		logger.Int("workers", p.workers))

	jobs := make(chan string)
	var (
		mu        sync.Mutex
		succeeded []models.SymbolReport
		failed    []models.SymbolReport
	)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				result := p.processSymbol(ctx, engine, symbol, start, end)
				mu.Lock()
				if result.Failed() {
					failed = append(failed, result)
				} else {
					succeeded = append(succeeded, result)
				}
				if p.sink != nil {
					p.sink.WriteSymbol(result)
				}
				mu.Unlock()
			}
		}()
	}

	for _, s := range symbols {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- s:
		}
	}
	close(jobs)
	wg.Wait()

	// Ranking: best realized return first.
	sort.Slice(succeeded, func(i, j int) bool {
		return succeeded[i].Report.TotalReturn > succeeded[j].Report.TotalReturn
	})
	sort.Slice(failed, func(i, j int) bool { return failed[i].Symbol < failed[j].Symbol })

	p.l.Info("scan finished",
		logger.Int("succeeded", len(succeeded)),
		logger.Int("failed", len(failed)))

	return &models.ScanReport{
		GeneratedAt: time.Now().UTC(),
		Elapsed:     time.Since(started),
		Symbols:     len(symbols),
		Succeeded:   succeeded,
		Failed:      failed,
	}, nil
}

// ScoreSymbol runs fetch and scoring for one symbol on demand, with a
// fresh macro snapshot. Serves the interactive API path.
func (p *Pipeline) ScoreSymbol(ctx context.Context, symbol string, start, end time.Time) ([]models.DailyScore, error) {
	snap := p.data.FetchMacroSnapshot(ctx, true)
	engine := analytics.NewScoringEngine(analytics.NewMacroAligner(snap, p.l), p.l)

	bars, err := p.data.FetchBars(ctx, symbol, start, end, true)
	if err != nil {
		return nil, err
	}
	return engine.Score(bars), nil
}

// AnalyzeSymbol runs the full fetch, score and backtest pass for one
// symbol on demand.
func (p *Pipeline) AnalyzeSymbol(ctx context.Context, symbol string, start, end time.Time) (*models.BacktestReport, error) {
	snap := p.data.FetchMacroSnapshot(ctx, true)
	engine := analytics.NewScoringEngine(analytics.NewMacroAligner(snap, p.l), p.l)

	bars, err := p.data.FetchBars(ctx, symbol, start, end, true)
	if err != nil {
		return nil, err
	}
	return p.backtest.Run(bars, engine.Score(bars))
}

// processSymbol is the per-instrument worker body. Any failure,
// including a panic in indicator or scoring math, is converted into a
// failed SymbolReport.
func (p *Pipeline) processSymbol(ctx context.Context, engine *analytics.ScoringEngine, symbol string, start, end time.Time) (result models.SymbolReport) {
	result = models.SymbolReport{Symbol: symbol}
	defer func() {
		if r := recover(); r != nil {
			p.rec.RecordPipelineFailure()
			p.l.Error("symbol pipeline panicked",
				logger.String("symbol", symbol),
				logger.Any("panic", r))
			result.Report = nil
			result.Last = nil
			result.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	bars, err := p.data.FetchBars(ctx, symbol, start, end, true)
	if err != nil {
		p.rec.RecordPipelineFailure()
		p.l.Warn("symbol fetch failed", logger.String("symbol", symbol), logger.Error(err))
		result.Err = err.Error()
		return result
	}

	if p.archive != nil {
		if err := p.archive.StoreBars(ctx, bars); err != nil {
			p.l.Warn("bar archive write failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	scores := engine.Score(bars)
	report, err := p.backtest.Run(bars, scores)
	if err != nil {
		p.rec.RecordPipelineFailure()
		p.l.Warn("symbol backtest failed", logger.String("symbol", symbol), logger.Error(err))
		result.Err = err.Error()
		return result
	}
	result.Last = &scores[len(scores)-1]

	p.rec.RecordSignal(string(report.LastAction))
	if p.publisher != nil {
		sig := models.Signal{
			Symbol:    symbol,
			Date:      report.End,
			Action:    report.LastAction,
			BuyScore:  report.LastBuyScore,
			SellScore: report.LastSellScore,
			Close:     report.LastClose,
		}
		if err := p.publisher.Publish(ctx, sig); err != nil {
			p.l.Warn("signal publish failed", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	result.Report = report
	return result
}
