package upstream

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	pkghttp "StockPulse/pkg/http"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// Client fetches market and macro data from the upstream HTTP provider.
// Every call is a single attempt; retries live in the caller.
type Client struct {
	http    *pkghttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	rlCap   float64
	rlRate  float64
	l       *logger.Logger
}

// New creates an upstream client.
func New(httpClient *pkghttp.Client, baseURL string, limiter *ratelimit.Limiter, capacity, refillPerSec float64, l *logger.Logger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
		rlCap:   capacity,
		rlRate:  refillPerSec,
		l:       l,
	}
}

var _ drepo.MarketDataSource = (*Client)(nil)
var _ drepo.MacroDataSource = (*Client)(nil)

func (c *Client) throttle(ctx context.Context, key string) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, key, c.rlCap, c.rlRate)
}

// DailyBars returns daily OHLCV bars for symbol over [start, end],
// sorted ascending by date.
func (c *Client) DailyBars(ctx context.Context, symbol string, start, end time.Time) (models.BarSeries, error) {
	if err := c.throttle(ctx, "bars"); err != nil {
		return nil, err
	}
	var resp barResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/stock/daily",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"start_date": {util.FormatDay(start)},
			"end_date":   {util.FormatDay(end)},
			"adjust":     {"qfq"},
		},
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("daily bars %s: %w", symbol, err)
	}

	bars := make(models.BarSeries, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, ok := util.ParseDay(row.Date)
		if !ok {
			c.l.Warn("skipping bar with bad date", logger.String("symbol", symbol), logger.String("date", row.Date))
			continue
		}
		bars = append(bars, models.Bar{
			Symbol: symbol,
			Date:   d,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
			Amount: row.Amount,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// SymbolDirectory returns the full exchange listing.
func (c *Client) SymbolDirectory(ctx context.Context) ([]models.SymbolInfo, error) {
	if err := c.throttle(ctx, "directory"); err != nil {
		return nil, err
	}
	var resp directoryResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/stock/directory",
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("symbol directory: %w", err)
	}
	out := make([]models.SymbolInfo, 0, len(resp.Data))
	for _, row := range resp.Data {
		out = append(out, models.SymbolInfo{Code: row.Code, Name: row.Name})
	}
	return out, nil
}

// IndexConstituents returns the raw member codes of an index.
func (c *Client) IndexConstituents(ctx context.Context, indexID string) ([]string, error) {
	if err := c.throttle(ctx, "constituents"); err != nil {
		return nil, err
	}
	var resp constituentResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/index/constituents",
		QueryParams: map[string][]string{
			"index": {indexID},
		},
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("index constituents %s: %w", indexID, err)
	}
	out := make([]string, 0, len(resp.Data))
	for _, row := range resp.Data {
		out = append(out, row.Code)
	}
	return out, nil
}

// MacroSeries fetches one macro indicator series, sorted ascending.
func (c *Client) MacroSeries(ctx context.Context, kind models.MacroKind) (models.MacroSeries, error) {
	if err := c.throttle(ctx, "macro"); err != nil {
		return models.MacroSeries{}, err
	}
	var (
		points []models.MacroPoint
		err    error
	)
	switch kind {
	case models.MacroCPI:
		points, err = c.fetchCPI(ctx)
	case models.MacroFX:
		points, err = c.fetchFX(ctx)
	case models.MacroPMI:
		points, err = c.fetchPMI(ctx)
	case models.MacroGDP:
		points, err = c.fetchGDP(ctx)
	default:
		return models.MacroSeries{}, fmt.Errorf("unknown macro kind %q", kind)
	}
	if err != nil {
		return models.MacroSeries{}, err
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return models.MacroSeries{Kind: kind, Points: points}, nil
}

func (c *Client) fetchCPI(ctx context.Context) ([]models.MacroPoint, error) {
	var resp cpiResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/macro/cpi",
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("macro cpi: %w", err)
	}
	out := make([]models.MacroPoint, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, err := time.Parse("2006-01", row.Month)
		if err != nil {
			c.l.Warn("skipping cpi row with bad month", logger.String("month", row.Month))
			continue
		}
		out = append(out, models.MacroPoint{Date: d, Value: row.YoY})
	}
	return out, nil
}

func (c *Client) fetchFX(ctx context.Context) ([]models.MacroPoint, error) {
	var resp fxResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/macro/fx",
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("macro fx: %w", err)
	}
	out := make([]models.MacroPoint, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, ok := util.ParseDay(row.Date)
		if !ok {
			c.l.Warn("skipping fx row with bad date", logger.String("date", row.Date))
			continue
		}
		out = append(out, models.MacroPoint{Date: d, Value: row.Rate})
	}
	return out, nil
}

func (c *Client) fetchPMI(ctx context.Context) ([]models.MacroPoint, error) {
	var resp pmiResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/macro/pmi",
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("macro pmi: %w", err)
	}
	out := make([]models.MacroPoint, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, err := time.Parse("2006-01", row.Month)
		if err != nil {
			c.l.Warn("skipping pmi row with bad month", logger.String("month", row.Month))
			continue
		}
		out = append(out, models.MacroPoint{Date: d, Value: row.Value})
	}
	return out, nil
}

func (c *Client) fetchGDP(ctx context.Context) ([]models.MacroPoint, error) {
	var resp gdpResponse
	opts := &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    c.baseURL + "/api/macro/gdp",
	}
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("macro gdp: %w", err)
	}
	out := make([]models.MacroPoint, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, ok := parseQuarter(row.Quarter)
		if !ok {
			c.l.Warn("skipping gdp row with bad quarter", logger.String("quarter", row.Quarter))
			continue
		}
		out = append(out, models.MacroPoint{Date: d, Value: row.Value})
	}
	return out, nil
}

// parseQuarter accepts "2026Q2" or "2026-Q2" and returns the quarter's
// first day.
func parseQuarter(s string) (time.Time, bool) {
	s = strings.ReplaceAll(s, "-", "")
	parts := strings.SplitN(strings.ToUpper(s), "Q", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil || q < 1 || q > 4 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(q*3-2), 1, 0, 0, 0, 0, time.UTC), true
}
