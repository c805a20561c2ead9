package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
)

// MarketHandler serves cached market data endpoints.
type MarketHandler struct {
	svc       *usecase.MarketService
	collector *usecase.QuoteCollector
	log       *applogger.Logger
}

// NewMarketHandler creates a new MarketHandler instance.
func NewMarketHandler(svc *usecase.MarketService, collector *usecase.QuoteCollector, log *applogger.Logger) *MarketHandler {
	return &MarketHandler{svc: svc, collector: collector, log: log}
}

// RegisterRoutes registers market data routes.
func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/market")
	g.GET("/stocks", h.StockList)
	g.GET("/etfs", h.ETFList)
	g.GET("/cryptos", h.CryptoList)
	g.GET("/forex", h.ForexList)
	g.GET("/commodities", h.CommodityList)
	g.GET("/indexes", h.IndexList)
	g.GET("/search", h.Search)
	g.GET("/quotes/stocks", h.StockQuotes)
	g.GET("/quotes/cryptos", h.CryptoQuotes)
	g.GET("/quotes/forex", h.ForexQuotes)
	g.GET("/quotes/commodities", h.CommodityQuotes)
	g.GET("/quotes/indexes", h.IndexQuotes)
	g.GET("/shares-float", h.SharesFloat)
	g.GET("/sectors-performance", h.SectorsPerformance)
	g.GET("/gainers", h.BiggestGainers)
	g.GET("/losers", h.BiggestLosers)
	g.GET("/actives", h.MostActive)
	g.GET("/history/:symbol", h.History)
	g.GET("/snapshots/:symbol", h.Snapshots)

	e.GET("/health", h.Health)
}

func (h *MarketHandler) respond(c echo.Context, endpoint string, data interface{}, err error) error {
	if err != nil {
		h.log.Error("market request failed", applogger.String("endpoint", endpoint), applogger.Error(err))
		return xhttp.DataResponse(c, http.StatusBadGateway, err.Error())
	}
	return xhttp.SuccessResponse(c, data)
}

// Health reports service and poller health.
func (h *MarketHandler) Health(c echo.Context) error {
	status := "ok"
	if h.collector != nil && !h.collector.IsHealthy() {
		status = "degraded"
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": status})
}

func (h *MarketHandler) StockList(c echo.Context) error {
	out, err := h.svc.StockList(c.Request().Context())
	return h.respond(c, "stocks", out, err)
}

func (h *MarketHandler) ETFList(c echo.Context) error {
	out, err := h.svc.ETFList(c.Request().Context())
	return h.respond(c, "etfs", out, err)
}

func (h *MarketHandler) CryptoList(c echo.Context) error {
	out, err := h.svc.CryptoList(c.Request().Context())
	return h.respond(c, "cryptos", out, err)
}

func (h *MarketHandler) ForexList(c echo.Context) error {
	out, err := h.svc.ForexList(c.Request().Context())
	return h.respond(c, "forex", out, err)
}

func (h *MarketHandler) CommodityList(c echo.Context) error {
	out, err := h.svc.CommodityList(c.Request().Context())
	return h.respond(c, "commodities", out, err)
}

func (h *MarketHandler) IndexList(c echo.Context) error {
	out, err := h.svc.IndexList(c.Request().Context())
	return h.respond(c, "indexes", out, err)
}

func (h *MarketHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "query",
			Message: "query is required",
		}})
	}
	out, err := h.svc.Search(c.Request().Context(), query)
	return h.respond(c, "search", out, err)
}

func (h *MarketHandler) StockQuotes(c echo.Context) error {
	out, err := h.svc.StockQuotes(c.Request().Context())
	return h.respond(c, "stock_quotes", out, err)
}

func (h *MarketHandler) CryptoQuotes(c echo.Context) error {
	out, err := h.svc.CryptoQuotes(c.Request().Context())
	return h.respond(c, "crypto_quotes", out, err)
}

func (h *MarketHandler) ForexQuotes(c echo.Context) error {
	out, err := h.svc.ForexQuotes(c.Request().Context())
	return h.respond(c, "forex_quotes", out, err)
}

func (h *MarketHandler) CommodityQuotes(c echo.Context) error {
	out, err := h.svc.CommodityQuotes(c.Request().Context())
	return h.respond(c, "commodity_quotes", out, err)
}

func (h *MarketHandler) IndexQuotes(c echo.Context) error {
	out, err := h.svc.IndexQuotes(c.Request().Context())
	return h.respond(c, "index_quotes", out, err)
}

func (h *MarketHandler) SharesFloat(c echo.Context) error {
	out, err := h.svc.SharesFloat(c.Request().Context())
	return h.respond(c, "shares_float", out, err)
}

func (h *MarketHandler) SectorsPerformance(c echo.Context) error {
	out, err := h.svc.SectorsPerformance(c.Request().Context())
	return h.respond(c, "sectors_performance", out, err)
}

func (h *MarketHandler) BiggestGainers(c echo.Context) error {
	out, err := h.svc.BiggestGainers(c.Request().Context())
	return h.respond(c, "gainers", out, err)
}

func (h *MarketHandler) BiggestLosers(c echo.Context) error {
	out, err := h.svc.BiggestLosers(c.Request().Context())
	return h.respond(c, "losers", out, err)
}

func (h *MarketHandler) MostActive(c echo.Context) error {
	out, err := h.svc.MostActive(c.Request().Context())
	return h.respond(c, "actives", out, err)
}

func (h *MarketHandler) History(c echo.Context) error {
	symbol := c.Param("symbol")
	out, err := h.svc.HistoricalPrices(c.Request().Context(), symbol)
	return h.respond(c, "history", out, err)
}

// Snapshots serves the intraday quote snapshots collected by the poller,
// read back from snapshot storage.
func (h *MarketHandler) Snapshots(c echo.Context) error {
	if h.collector == nil {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "snapshot storage unavailable")
	}
	symbol := c.Param("symbol")
	now := time.Now()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-24*time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 1000)

	out, err := h.collector.Processor().History(c.Request().Context(), symbol, from, to, limit)
	return h.respond(c, "snapshots", out, err)
}
