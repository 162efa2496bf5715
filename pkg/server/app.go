package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockPulse/internal/handler/report"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// App encapsulates the application lifecycle: cache maintenance, the
// batch scan, and the optional HTTP server.
type App struct {
	cfg      *config.Config
	l        *applogger.Logger
	store    cache.Store
	data     *usecase.DataClient
	pipeline *usecase.Pipeline
	reporter *report.ConsoleReporter
	handler  xhttp.Handler
	closers  []io.Closer
}

// New creates the App with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	store cache.Store,
	data *usecase.DataClient,
	pipeline *usecase.Pipeline,
	reporter *report.ConsoleReporter,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		store:    store,
		data:     data,
		pipeline: pipeline,
		reporter: reporter,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.handler = h }

// AddCloser registers an infrastructure client closed on shutdown.
func (a *App) AddCloser(c io.Closer) { a.closers = append(a.closers, c) }

// Run executes one scan and then, when the server is enabled, serves
// the API until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A hard interrupt abandons in-flight workers.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		a.l.Info("shutdown signal received")
		cancel()
	}()

	if a.cfg.Cache.SweepOnStart {
		removed, err := a.store.InvalidateExpired(ctx)
		if err != nil {
			a.l.Warn("cache sweep failed", applogger.Error(err))
		} else {
			a.l.Info("cache swept", applogger.Int("removed", removed))
		}
	}

	if err := a.runScan(ctx); err != nil {
		if ctx.Err() != nil {
			a.l.Warn("scan interrupted", applogger.Error(err))
		} else {
			a.l.Error("scan failed", applogger.Error(err))
		}
		if !a.cfg.Server.Enabled {
			return err
		}
	}

	if !a.cfg.Server.Enabled {
		return a.shutdown(context.Background())
	}

	httpServer := xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.l),
	)
	if err := httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	<-ctx.Done()

	shutdownCtx, sc := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer sc()
	if err := httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	return a.shutdown(shutdownCtx)
}

func (a *App) runScan(ctx context.Context) error {
	// Symbol names are cosmetic in the report; a failed directory fetch
	// is not fatal.
	if names, err := a.data.FetchSymbolDirectory(ctx, true); err != nil {
		a.l.Warn("symbol directory unavailable", applogger.Error(err))
	} else {
		a.reporter.SetNames(names)
	}

	universe, err := a.pipeline.ResolveUniverse(ctx, a.cfg.Scan.Symbols, a.cfg.Scan.Index)
	if err != nil {
		return err
	}

	end := util.Day(time.Now())
	start := end.AddDate(0, 0, -a.cfg.Scan.LookbackDays)
	scan, err := a.pipeline.Run(ctx, universe, start, end)
	if err != nil {
		return err
	}
	a.reporter.WriteSummary(scan)

	if st, err := a.store.Stats(ctx); err == nil {
		a.reporter.WriteCacheStats(st)
	}
	return nil
}

// ClearCache drops every cache entry regardless of age.
func (a *App) ClearCache(ctx context.Context) error {
	return a.store.ClearAll(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	_ = ctx
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
	return nil
}
