package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"FinCast/internal/domain/models"
	"FinCast/internal/quant"
	"FinCast/internal/service/ratelimit"
	"FinCast/internal/usecase"
	xhttp "FinCast/pkg/http"
	applogger "FinCast/pkg/logger"
)

// ForecastHandler serves the forecast and statistics endpoints.
type ForecastHandler struct {
	svc     *usecase.ForecastService
	log     *applogger.Logger
	limiter *ratelimit.Limiter
}

// NewForecastHandler creates a new ForecastHandler instance.
func NewForecastHandler(svc *usecase.ForecastService, log *applogger.Logger) *ForecastHandler {
	return &ForecastHandler{svc: svc, log: log, limiter: ratelimit.New()}
}

// RegisterRoutes registers forecast and statistics routes.
func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/forecast")
	g.POST("/ar", h.ForecastAR)
	g.POST("/ma", h.ForecastMA)
	g.POST("/ar/fit", h.FitAR)
	g.POST("/ma/fit", h.FitMA)

	st := e.Group("/api/stats")
	st.POST("/beta", h.Beta)
	st.POST("/correlation", h.Correlation)
	st.POST("/dispersion", h.Dispersion)
}

func (h *ForecastHandler) allow(c echo.Context) bool {
	// 20 req/s with a burst of 40 per client IP
	return h.limiter.Allow(c.RealIP(), 40, 20)
}

// quantError maps estimation errors onto HTTP statuses: malformed or
// structurally invalid inputs are 400, numerically unservable ones are 422.
func quantError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, quant.ErrMissingParameter):
		return xhttp.NewAppError("ERR_MISSING_PARAMETER", "", err.Error(), http.StatusBadRequest)
	case errors.Is(err, quant.ErrHierarchicalIndex):
		return xhttp.NewAppError("ERR_HIERARCHICAL_INDEX", "", err.Error(), http.StatusBadRequest)
	case errors.Is(err, quant.ErrInvalidInput):
		return xhttp.NewAppError("ERR_INVALID_INPUT", "", err.Error(), http.StatusBadRequest)
	case errors.Is(err, quant.ErrNumerical):
		return xhttp.NewAppError("ERR_NUMERICAL", "", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, quant.ErrEstimation):
		return xhttp.NewAppError("ERR_ESTIMATION", "", err.Error(), http.StatusUnprocessableEntity)
	default:
		return xhttp.NewAppError("ERR_UPSTREAM", "", err.Error(), http.StatusBadGateway)
	}
}

func (h *ForecastHandler) respondQuantError(c echo.Context, op string, err error) error {
	appErr := quantError(err)
	if appErr.Status >= 500 {
		h.log.Error("forecast request failed", applogger.String("op", op), applogger.Error(err))
	} else {
		h.log.Debug("forecast request rejected", applogger.String("op", op), applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ForecastAR handles POST /api/forecast/ar.
func (h *ForecastHandler) ForecastAR(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := new(models.ARForecastRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	resp, err := h.svc.ForecastAR(c.Request().Context(), req)
	if err != nil {
		return h.respondQuantError(c, "forecast_ar", err)
	}
	return xhttp.SuccessResponse(c, resp)
}

// ForecastMA handles POST /api/forecast/ma.
func (h *ForecastHandler) ForecastMA(c echo.Context) error {
	if !h.allow(c) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := new(models.MAForecastRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	resp, err := h.svc.ForecastMA(c.Request().Context(), req)
	if err != nil {
		return h.respondQuantError(c, "forecast_ma", err)
	}
	return xhttp.SuccessResponse(c, resp)
}

// FitAR handles POST /api/forecast/ar/fit.
func (h *ForecastHandler) FitAR(c echo.Context) error {
	req := new(models.FitRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	model, err := h.svc.FitAR(c.Request().Context(), req)
	if err != nil {
		return h.respondQuantError(c, "fit_ar", err)
	}
	return xhttp.SuccessResponse(c, model)
}

// FitMA handles POST /api/forecast/ma/fit.
func (h *ForecastHandler) FitMA(c echo.Context) error {
	req := new(models.FitRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	model, err := h.svc.FitMA(c.Request().Context(), req)
	if err != nil {
		return h.respondQuantError(c, "fit_ma", err)
	}
	return xhttp.SuccessResponse(c, model)
}

// Beta handles POST /api/stats/beta.
func (h *ForecastHandler) Beta(c echo.Context) error {
	req := new(models.BetaRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	beta, err := h.svc.Beta(req)
	if err != nil {
		return h.respondQuantError(c, "beta", err)
	}
	return xhttp.SuccessResponse(c, map[string]float64{"beta": beta})
}

// Correlation handles POST /api/stats/correlation.
func (h *ForecastHandler) Correlation(c echo.Context) error {
	req := new(models.CorrelationRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	r, err := h.svc.Correlation(req)
	if err != nil {
		return h.respondQuantError(c, "correlation", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{"method": req.Method, "correlation": r})
}

// Dispersion handles POST /api/stats/dispersion.
func (h *ForecastHandler) Dispersion(c echo.Context) error {
	req := new(models.DispersionRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	resp, err := h.svc.Dispersion(req)
	if err != nil {
		return h.respondQuantError(c, "dispersion", err)
	}
	return xhttp.SuccessResponse(c, resp)
}
