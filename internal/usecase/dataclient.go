package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/util"
)

// ErrDataUnavailable is returned when a bars fetch exhausts all retries.
var ErrDataUnavailable = errors.New("data unavailable")

// DataClient wraps the upstream sources with bounded retry, jittered
// backoff and a cache-first read path. Empty upstream results count as
// failures, not successes.
type DataClient struct {
	market  drepo.MarketDataSource
	macro   drepo.MacroDataSource
	store   cache.Store
	rec     *metrics.Recorder
	l       *logger.Logger
	retries int
	minWait time.Duration
	maxWait time.Duration
	sleep   func(context.Context, time.Duration) error
}

// DataClientOption configures DataClient.
type DataClientOption func(*DataClient)

// WithRetry sets the retry count and the backoff jitter window.
func WithRetry(retries int, minWait, maxWait time.Duration) DataClientOption {
	return func(c *DataClient) {
		c.retries = retries
		c.minWait = minWait
		c.maxWait = maxWait
	}
}

// WithSleep overrides the backoff sleeper. Tests use this to avoid
// real waits.
func WithSleep(fn func(context.Context, time.Duration) error) DataClientOption {
	return func(c *DataClient) { c.sleep = fn }
}

func NewDataClient(market drepo.MarketDataSource, macro drepo.MacroDataSource, store cache.Store, rec *metrics.Recorder, l *logger.Logger, opts ...DataClientOption) *DataClient {
	c := &DataClient{
		market:  market,
		macro:   macro,
		store:   store,
		rec:     rec,
		l:       l,
		retries: 3,
		minWait: time.Second,
		maxWait: 3 * time.Second,
		sleep:   sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff draws a jittered wait from [minWait, maxWait). Jitter keeps
// concurrent workers from retrying in lockstep.
func (c *DataClient) backoff() time.Duration {
	span := c.maxWait - c.minWait
	if span <= 0 {
		return c.minWait
	}
	return c.minWait + time.Duration(rand.Int63n(int64(span)))
}

// FetchBars returns daily bars for symbol over [start, end], consulting
// the cache first. After exhausting retries it returns ErrDataUnavailable.
func (c *DataClient) FetchBars(ctx context.Context, symbol string, start, end time.Time, useCache bool) (models.BarSeries, error) {
	key := cache.BarsKey(symbol, util.FormatDay(start), util.FormatDay(end))
	if useCache {
		var cached models.BarSeries
		if err := c.store.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			c.rec.RecordCacheHit("bars")
			return cached, nil
		}
		c.rec.RecordCacheMiss("bars")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.rec.RecordFetchRetry("bars")
			if err := c.sleep(ctx, c.backoff()); err != nil {
				return nil, err
			}
		}
		began := time.Now()
		bars, err := c.market.DailyBars(ctx, symbol, start, end)
		if err == nil && len(bars) == 0 {
			err = fmt.Errorf("empty bars for %s", symbol)
		}
		if err != nil {
			lastErr = err
			c.l.Warn("bars fetch failed",
				logger.String("symbol", symbol),
				logger.Int("attempt", attempt+1),
				logger.Error(err))
			continue
		}
		c.rec.RecordFetchDuration("bars", time.Since(began).Seconds())
		if useCache {
			c.put(ctx, key, bars)
		}
		return bars, nil
	}
	c.rec.RecordUpstreamFailure("bars")
	return nil, fmt.Errorf("%w: bars %s: %v", ErrDataUnavailable, symbol, lastErr)
}

// FetchMacro returns one macro series. Macro data is best-effort
// enrichment, so exhausting retries degrades to an empty series instead
// of failing the caller.
func (c *DataClient) FetchMacro(ctx context.Context, kind models.MacroKind, useCache bool) models.MacroSeries {
	key := cache.MacroKey(string(kind))
	if useCache {
		var cached models.MacroSeries
		if err := c.store.Get(ctx, key, &cached); err == nil && !cached.Empty() {
			c.rec.RecordCacheHit("macro")
			return cached
		}
		c.rec.RecordCacheMiss("macro")
	}

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.rec.RecordFetchRetry("macro")
			if err := c.sleep(ctx, c.backoff()); err != nil {
				return models.MacroSeries{Kind: kind}
			}
		}
		series, err := c.macro.MacroSeries(ctx, kind)
		if err == nil && series.Empty() {
			err = fmt.Errorf("empty %s series", kind)
		}
		if err != nil {
			c.l.Warn("macro fetch failed",
				logger.String("kind", string(kind)),
				logger.Int("attempt", attempt+1),
				logger.Error(err))
			continue
		}
		if useCache {
			c.put(ctx, key, series)
		}
		return series
	}
	c.rec.RecordUpstreamFailure("macro")
	c.l.Warn("macro fetch exhausted retries, degrading to empty", logger.String("kind", string(kind)))
	return models.MacroSeries{Kind: kind}
}

// FetchMacroSnapshot fetches every macro series once. It runs before
// the worker fan-out so the aligner snapshot is fully populated when
// workers start reading it.
func (c *DataClient) FetchMacroSnapshot(ctx context.Context, useCache bool) models.MacroSnapshot {
	snap := models.MacroSnapshot{
		Series: make(map[models.MacroKind]models.MacroSeries, len(models.MacroKinds)),
		AsOf:   time.Now().UTC(),
	}
	for _, kind := range models.MacroKinds {
		snap.Series[kind] = c.FetchMacro(ctx, kind, useCache)
	}
	return snap
}

// FetchSymbolDirectory returns the code→name listing of the exchange.
func (c *DataClient) FetchSymbolDirectory(ctx context.Context, useCache bool) (map[string]string, error) {
	key := cache.DirectoryKey()
	if useCache {
		var cached map[string]string
		if err := c.store.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			c.rec.RecordCacheHit("directory")
			return cached, nil
		}
		c.rec.RecordCacheMiss("directory")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.rec.RecordFetchRetry("directory")
			if err := c.sleep(ctx, c.backoff()); err != nil {
				return nil, err
			}
		}
		listing, err := c.market.SymbolDirectory(ctx)
		if err == nil && len(listing) == 0 {
			err = errors.New("empty symbol directory")
		}
		if err != nil {
			lastErr = err
			c.l.Warn("directory fetch failed", logger.Int("attempt", attempt+1), logger.Error(err))
			continue
		}
		out := make(map[string]string, len(listing))
		for _, s := range listing {
			out[s.Code] = s.Name
		}
		if useCache {
			c.put(ctx, key, out)
		}
		return out, nil
	}
	c.rec.RecordUpstreamFailure("directory")
	return nil, fmt.Errorf("%w: symbol directory: %v", ErrDataUnavailable, lastErr)
}

// FetchIndexConstituents returns exchange-suffixed symbols for the
// members of an index. Deduplication happens both before and after the
// suffix derivation because the derivation can collapse distinct raw
// rows onto the same symbol.
func (c *DataClient) FetchIndexConstituents(ctx context.Context, indexID string, useCache bool) ([]string, error) {
	key := cache.ConstituentsKey(indexID)
	if useCache {
		var cached []string
		if err := c.store.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			c.rec.RecordCacheHit("constituents")
			return cached, nil
		}
		c.rec.RecordCacheMiss("constituents")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.rec.RecordFetchRetry("constituents")
			if err := c.sleep(ctx, c.backoff()); err != nil {
				return nil, err
			}
		}
		raw, err := c.market.IndexConstituents(ctx, indexID)
		if err == nil && len(raw) == 0 {
			err = fmt.Errorf("empty constituents for %s", indexID)
		}
		if err != nil {
			lastErr = err
			c.l.Warn("constituents fetch failed",
				logger.String("index", indexID),
				logger.Int("attempt", attempt+1),
				logger.Error(err))
			continue
		}
		symbols := DeriveSymbols(raw)
		if useCache {
			c.put(ctx, key, symbols)
		}
		return symbols, nil
	}
	c.rec.RecordUpstreamFailure("constituents")
	return nil, fmt.Errorf("%w: constituents %s: %v", ErrDataUnavailable, indexID, lastErr)
}

// put writes through to the cache. Cache I/O failures never block the
// logical operation; they are logged and dropped.
func (c *DataClient) put(ctx context.Context, key string, value interface{}) {
	if err := c.store.Put(ctx, key, value); err != nil {
		c.l.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
}

// DeriveSymbols maps raw security codes onto exchange-suffixed symbols:
// digits are extracted and zero-padded to six, codes starting with 0 or
// 3 trade in Shenzhen, everything else in Shanghai. Input and output
// are both deduplicated; the result is sorted.
func DeriveSymbols(raw []string) []string {
	seenRaw := make(map[string]struct{}, len(raw))
	seenOut := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, code := range raw {
		if _, ok := seenRaw[code]; ok {
			continue
		}
		seenRaw[code] = struct{}{}

		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, code)
		if digits == "" {
			continue
		}
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		for len(digits) < 6 {
			digits = "0" + digits
		}

		suffix := ".SH"
		if digits[0] == '0' || digits[0] == '3' {
			suffix = ".SZ"
		}
		symbol := digits + suffix
		if _, ok := seenOut[symbol]; ok {
			continue
		}
		seenOut[symbol] = struct{}{}
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
