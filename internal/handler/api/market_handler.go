// Package api exposes the read side of the collector over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"MarketRadar/internal/domain/models"
	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/service/cache"
	"MarketRadar/internal/usecase"
	apphttp "MarketRadar/pkg/http"
	"MarketRadar/pkg/logger"
)

const trendsCacheTTL = 30 * time.Second

// MarketHandler serves candles, news, trend reports and analysis
// snapshots.
type MarketHandler struct {
	reader    *usecase.AnalysisReader
	collector *usecase.MarketCollector
	store     repository.SeriesStore
	trends    *cache.TTLCache[*models.TrendReport]
	log       *logger.Logger
}

func NewMarketHandler(
	reader *usecase.AnalysisReader,
	collector *usecase.MarketCollector,
	store repository.SeriesStore,
	log *logger.Logger,
) *MarketHandler {
	return &MarketHandler{
		reader:    reader,
		collector: collector,
		store:     store,
		trends:    cache.NewTTLCache[*models.TrendReport](trendsCacheTTL),
		log:       log,
	}
}

// Register mounts all routes on the router.
func (h *MarketHandler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	g := e.Group("/api")
	g.GET("/candles", h.GetCandles)
	g.GET("/news", h.GetNews)
	g.GET("/trends", h.GetTrends)
	g.GET("/analysis/latest", h.GetLatestAnalysis)
	g.POST("/analysis", h.PostAnalysis)
}

func (h *MarketHandler) GetCandles(c echo.Context) error {
	var req models.CandlesRequest
	if err := apphttp.BindAndValidate(c, &req); err != nil {
		return err
	}

	iv := repository.NormalizeInterval(req.Interval)
	candles, err := h.reader.Candles(c.Request().Context(), req.Symbol, iv, req.Limit)
	if err != nil {
		h.log.Error("get candles", logger.String("symbol", req.Symbol), logger.Error(err))
		return apphttp.NewInternal("fetch candles", err)
	}
	return apphttp.JSONList(c, candles, int64(len(candles)))
}

func (h *MarketHandler) GetNews(c echo.Context) error {
	var req models.NewsRequest
	if err := apphttp.BindAndValidate(c, &req); err != nil {
		return err
	}

	filter := repository.NewsFilter{Category: req.Category, Asset: req.Asset}
	items, err := h.reader.News(c.Request().Context(), req.Limit, filter)
	if err != nil {
		h.log.Error("get news", logger.Error(err))
		return apphttp.NewInternal("fetch news", err)
	}
	return apphttp.JSONList(c, items, int64(len(items)))
}

func (h *MarketHandler) GetTrends(c echo.Context) error {
	var req models.TrendsRequest
	if err := apphttp.BindAndValidate(c, &req); err != nil {
		return err
	}

	iv := repository.NormalizeInterval(req.Interval)
	key := fmt.Sprintf("%s:%s:%d", req.Symbol, iv, req.Limit)
	if report, ok := h.trends.Get(key); ok {
		return apphttp.JSONSuccess(c, report)
	}

	report, err := h.reader.Trends(c.Request().Context(), req.Symbol, iv, req.Limit)
	if err != nil {
		h.log.Error("get trends", logger.String("symbol", req.Symbol), logger.Error(err))
		return apphttp.NewInternal("compute trends", err)
	}

	h.trends.Set(key, report)
	return apphttp.JSONSuccess(c, report)
}

func (h *MarketHandler) GetLatestAnalysis(c echo.Context) error {
	snap, err := h.reader.LatestSnapshot(c.Request().Context())
	if err != nil {
		if errors.Is(err, repository.ErrNoSnapshot) {
			return apphttp.NewNotFound("no analysis snapshot recorded")
		}
		h.log.Error("latest analysis", logger.Error(err))
		return apphttp.NewInternal("fetch analysis snapshot", err)
	}
	return apphttp.JSONSuccess(c, snap)
}

func (h *MarketHandler) PostAnalysis(c echo.Context) error {
	var req models.SnapshotRequest
	if err := apphttp.BindAndValidate(c, &req); err != nil {
		return err
	}

	snap, err := h.reader.SaveSnapshot(c.Request().Context(), req.Payload)
	if err != nil {
		h.log.Error("save analysis", logger.Error(err))
		return apphttp.NewInternal("save analysis snapshot", err)
	}
	return apphttp.JSONSuccess(c, snap)
}

// Healthz reports store reachability and the state of every stream.
func (h *MarketHandler) Healthz(c echo.Context) error {
	ctx := c.Request().Context()

	storeStatus := "ok"
	status := http.StatusOK
	if err := h.store.Health(ctx); err != nil {
		storeStatus = err.Error()
		status = http.StatusServiceUnavailable
	}

	streams := map[string]string{}
	if h.collector != nil {
		streams = h.collector.StreamStates()
	}

	return c.JSON(status, apphttp.APIResponse{
		Status:  status,
		Message: "health",
		Data: map[string]any{
			"store":   storeStatus,
			"streams": streams,
		},
	})
}
