package di

import (
	"context"
	"fmt"
	"os"
	"time"

	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	"StockPulse/internal/handler/report"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/service/upstream"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	pkgch "StockPulse/pkg/clickhouse"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCacheStore creates the configured artifact cache backend.
func ProvideCacheStore(cfg *config.Config, l *logger.Logger) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisStore(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisAuth(cfg.Cache.Redis.Password, cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
			cache.WithRedisExpiry(cfg.Cache.ExpireAfter),
			cache.WithRedisLogger(l),
		)
	case "file", "":
		return cache.NewFileStore(cfg.Cache.Dir,
			cache.WithFileExpiry(cfg.Cache.ExpireAfter),
			cache.WithFileLogger(l),
		)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideUpstreamClient creates the rate-limited upstream adapter.
func ProvideUpstreamClient(cfg *config.Config, l *logger.Logger) *upstream.Client {
	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Upstream.Timeout))
	limiter := ratelimit.New()
	return upstream.New(httpClient, cfg.Upstream.BaseURL, limiter,
		cfg.Upstream.RateLimit.Capacity, cfg.Upstream.RateLimit.RefillSec, l)
}

// ProvideDataClient creates the retrying, cache-first data client. The
// upstream adapter serves both the market and macro source roles.
func ProvideDataClient(cfg *config.Config, up *upstream.Client, store cache.Store, rec *metrics.Recorder, l *logger.Logger) *usecase.DataClient {
	return usecase.NewDataClient(up, up, store, rec, l,
		usecase.WithRetry(cfg.Upstream.Retry.MaxRetries, cfg.Upstream.Retry.BackoffMin, cfg.Upstream.Retry.BackoffMax),
	)
}

// ProvideBacktestEngine creates the backtest engine.
func ProvideBacktestEngine(l *logger.Logger) *usecase.BacktestEngine {
	return usecase.NewBacktestEngine(l)
}

// ProvideSignalPublisher creates the Kafka publisher, or nil when Kafka
// is disabled.
func ProvideSignalPublisher(cfg *config.Config, l *logger.Logger) (drepo.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic, l), nil
}

// ProvideBarArchive creates the ClickHouse archive, or nil when
// ClickHouse is disabled.
func ProvideBarArchive(cfg *config.Config, l *logger.Logger) (drepo.BarArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithAuth(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	archive, err := internalrepo.NewClickHouseBarArchive(ctx, client, l)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return archive, nil
}

// ProvideReporter creates the console report sink. The symbol directory
// is attached later, once fetched.
func ProvideReporter() *report.ConsoleReporter {
	return report.NewConsoleReporter(os.Stdout, nil)
}

// ProvidePipeline creates the worker-pool scan pipeline.
func ProvidePipeline(
	cfg *config.Config,
	data *usecase.DataClient,
	backtest *usecase.BacktestEngine,
	rec *metrics.Recorder,
	l *logger.Logger,
	publisher drepo.SignalPublisher,
	archive drepo.BarArchive,
	reporter *report.ConsoleReporter,
) *usecase.Pipeline {
	opts := []usecase.PipelineOption{
		usecase.WithWorkers(cfg.Scan.Workers),
		usecase.WithSink(reporter),
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	if archive != nil {
		opts = append(opts, usecase.WithArchive(archive))
	}
	return usecase.NewPipeline(data, backtest, rec, l, opts...)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(l *logger.Logger, pipeline *usecase.Pipeline, store cache.Store) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l, pipeline, store)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	store cache.Store,
	data *usecase.DataClient,
	pipeline *usecase.Pipeline,
	reporter *report.ConsoleReporter,
	handler *api.SignalsEchoHandler,
	publisher drepo.SignalPublisher,
	archive drepo.BarArchive,
) *server.App {
	app := server.New(cfg, l, store, data, pipeline, reporter)
	app.SetHTTPHandler(handler)
	if publisher != nil {
		app.AddCloser(publisher)
	}
	if archive != nil {
		app.AddCloser(archive)
	}
	return app
}
