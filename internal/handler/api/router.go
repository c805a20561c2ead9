package api

import "github.com/labstack/echo/v4"

// Router aggregates the API handlers into one route registrar.
type Router struct {
	market   *MarketHandler
	forecast *ForecastHandler
}

// NewRouter creates a Router over the given handlers.
func NewRouter(market *MarketHandler, forecast *ForecastHandler) *Router {
	return &Router{market: market, forecast: forecast}
}

// RegisterRoutes registers all API routes.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	if r.market != nil {
		r.market.RegisterRoutes(e)
	}
	if r.forecast != nil {
		r.forecast.RegisterRoutes(e)
	}
}
