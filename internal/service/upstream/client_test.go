package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockPulse/internal/domain/models"
	pkghttp "StockPulse/pkg/http"
	"StockPulse/pkg/logger"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, body := range routes {
		payload := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestUpstream(srv *httptest.Server) *Client {
	return New(pkghttp.NewClient(pkghttp.WithTimeout(5*time.Second)), srv.URL, nil, 0, 0, logger.Nop())
}

func TestDailyBarsParsesAndSorts(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/stock/daily": `{"code":0,"data":[
			{"trade_date":"2024-06-12","open":10,"high":11,"low":9,"close":10.5,"volume":1000,"amount":10500},
			{"trade_date":"2024-06-11","open":9,"high":10,"low":8,"close":9.5,"volume":900,"amount":8550},
			{"trade_date":"not-a-date","open":1,"high":1,"low":1,"close":1,"volume":1,"amount":1}
		]}`,
	})
	c := newTestUpstream(srv)

	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	bars, err := c.DailyBars(context.Background(), "600000.SH", start, start.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("bad-date row must be skipped, got %d bars", len(bars))
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Fatalf("bars must sort ascending")
	}
	if bars[0].Symbol != "600000.SH" || bars[0].Close != 9.5 {
		t.Fatalf("unexpected first bar %+v", bars[0])
	}
}

func TestMacroSeriesSchemaVariants(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/macro/cpi": `{"code":0,"data":[{"month":"2024-05","cpi_yoy":3.1}]}`,
		"/api/macro/fx":  `{"code":0,"data":[{"date":"2024-06-11","central_parity":7.12}]}`,
		"/api/macro/pmi": `{"code":0,"data":[{"month":"2024-05","manufacturing_pmi":50.2}]}`,
		"/api/macro/gdp": `{"code":0,"data":[{"quarter":"2024Q1","gdp_abs":29.6},{"quarter":"2023-Q4","gdp_abs":29.0}]}`,
	})
	c := newTestUpstream(srv)
	ctx := context.Background()

	for _, kind := range models.MacroKinds {
		series, err := c.MacroSeries(ctx, kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if series.Empty() {
			t.Fatalf("%s: expected points", kind)
		}
		if series.Kind != kind {
			t.Fatalf("%s: kind mismatch %q", kind, series.Kind)
		}
	}

	// Quarters normalize to the quarter's first day, sorted ascending.
	gdp, _ := c.MacroSeries(ctx, models.MacroGDP)
	if len(gdp.Points) != 2 {
		t.Fatalf("expected 2 gdp points, got %d", len(gdp.Points))
	}
	want := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	if !gdp.Points[0].Date.Equal(want) {
		t.Fatalf("gdp[0] date = %v, want %v", gdp.Points[0].Date, want)
	}
}

func TestParseQuarter(t *testing.T) {
	got, ok := parseQuarter("2024q3")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if _, ok := parseQuarter("2024"); ok {
		t.Fatalf("expected failure without quarter part")
	}
	if _, ok := parseQuarter("2024Q5"); ok {
		t.Fatalf("expected failure for quarter 5")
	}
}

func TestIndexConstituents(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/api/index/constituents": `{"code":0,"data":[{"constituent_code":"600519"},{"constituent_code":"000001"}]}`,
	})
	c := newTestUpstream(srv)

	got, err := c.IndexConstituents(context.Background(), "000300")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0] != "600519" {
		t.Fatalf("unexpected constituents %v", got)
	}
}
