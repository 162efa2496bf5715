package api

import (
	"errors"
	"time"

	models "StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// SignalsEchoHandler exposes on-demand scoring and backtests over HTTP.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.Pipeline
	store    cache.Store
}

func NewSignalsEchoHandler(logger *xlogger.Logger, pipeline *usecase.Pipeline, store cache.Store) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, pipeline: pipeline, store: store}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.Signal)
	g.GET("/backtest", h.Backtest)
	g.GET("/cache/stats", h.CacheStats)
	g.POST("/cache/sweep", h.CacheSweep)
}

func (h *SignalsEchoHandler) Signal(c echo.Context) error {
	req := &models.SignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	end := util.Day(time.Now())
	start := end.AddDate(0, 0, -req.Days)

	scores, err := h.pipeline.ScoreSymbol(c.Request().Context(), req.Symbol, start, end)
	if err != nil {
		return h.upstreamError(c, "signal", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, scores)
}

func (h *SignalsEchoHandler) Backtest(c echo.Context) error {
	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	end := util.Day(time.Now())
	start := end.AddDate(0, 0, -req.Days)

	report, err := h.pipeline.AnalyzeSymbol(c.Request().Context(), req.Symbol, start, end)
	if err != nil {
		return h.upstreamError(c, "backtest", req.Symbol, err)
	}
	if !req.Full {
		report.Days = nil
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *SignalsEchoHandler) CacheStats(c echo.Context) error {
	stats, err := h.store.Stats(c.Request().Context())
	if err != nil {
		h.logger.Error("cache stats error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache stats failed"))
	}
	return xhttp.SuccessResponse(c, stats)
}

func (h *SignalsEchoHandler) CacheSweep(c echo.Context) error {
	removed, err := h.store.InvalidateExpired(c.Request().Context())
	if err != nil {
		h.logger.Error("cache sweep error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cache sweep failed"))
	}
	return xhttp.SuccessResponse(c, map[string]int{"removed": removed})
}

func (h *SignalsEchoHandler) upstreamError(c echo.Context, op, symbol string, err error) error {
	h.logger.Error(op+" usecase error",
		xlogger.String("symbol", symbol),
		xlogger.Error(err))
	if errors.Is(err, usecase.ErrDataUnavailable) {
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("upstream data unavailable for "+symbol))
	}
	return xhttp.AppErrorResponse(c, err)
}
