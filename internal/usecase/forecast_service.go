package usecase

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	"FinCast/internal/quant"
)

// ForecastLimits bounds request sizes accepted by the forecast service.
type ForecastLimits struct {
	MaxSteps     int
	MaxOrder     int
	HistoryLimit int
}

// ForecastService resolves request inputs (inline series, frames, or a
// symbol's close history) and runs the quant estimation and forecasting
// routines over them.
type ForecastService struct {
	market  *MarketService
	metrics drepo.Metrics
	limits  ForecastLimits
}

// NewForecastService creates a new ForecastService instance.
func NewForecastService(market *MarketService, metrics drepo.Metrics, limits ForecastLimits) *ForecastService {
	if limits.MaxSteps <= 0 {
		limits.MaxSteps = 1000
	}
	if limits.MaxOrder <= 0 {
		limits.MaxOrder = 50
	}
	if limits.HistoryLimit <= 0 {
		limits.HistoryLimit = 1000
	}
	return &ForecastService{market: market, metrics: metrics, limits: limits}
}

// resolveSeries picks the request's input series: inline data wins, then a
// symbol's close history from the market service.
func (s *ForecastService) resolveSeries(ctx context.Context, series []float64, symbol string) ([]float64, error) {
	if len(series) > 0 {
		return series, nil
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: either series or symbol must be provided", quant.ErrMissingParameter)
	}
	if s.market == nil {
		return nil, fmt.Errorf("%w: no market data source for symbol %q", quant.ErrMissingParameter, symbol)
	}
	return s.market.CloseHistory(ctx, symbol, s.limits.HistoryLimit)
}

func (s *ForecastService) checkBounds(steps, order int) error {
	if steps > s.limits.MaxSteps {
		return fmt.Errorf("%w: steps %d exceeds limit %d", quant.ErrInvalidInput, steps, s.limits.MaxSteps)
	}
	if order > s.limits.MaxOrder {
		return fmt.Errorf("%w: order %d exceeds limit %d", quant.ErrInvalidInput, order, s.limits.MaxOrder)
	}
	return nil
}

// ForecastAR serves an AR(p) forecast for a series, a frame, or a symbol.
// Supplied coefficients bypass estimation; otherwise the model is fitted
// with the requested method.
func (s *ForecastService) ForecastAR(ctx context.Context, req *models.ARForecastRequest) (*models.ForecastResponse, error) {
	if err := s.checkBounds(req.Steps, req.P); err != nil {
		return nil, err
	}

	method := quant.ARMethod(req.Method)
	resp := &models.ForecastResponse{Model: "ar", Steps: req.Steps}

	if len(req.Frame) > 0 {
		frame := quant.FrameFromMap(req.Frame)
		frame.IndexLevels = req.IndexLevels
		out, err := quant.ForecastARFrame(frame, req.Steps, req.P, method)
		if err != nil {
			return nil, err
		}
		resp.Columns = make(map[string][]float64, out.Len())
		for _, name := range out.Columns() {
			resp.Columns[name] = out.Column(name)
		}
		s.metrics.RecordForecast("ar")
		return resp, nil
	}

	series, err := s.resolveSeries(ctx, req.Series, req.Symbol)
	if err != nil {
		return nil, err
	}

	var model *quant.ARModel
	if len(req.Phi) > 0 {
		model = &quant.ARModel{P: len(req.Phi), Phi: req.Phi}
	} else {
		model, err = quant.FitAR(series, req.P, method)
		if err != nil {
			return nil, err
		}
	}

	resp.Predictions, err = model.Forecast(series, req.Steps)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordForecast("ar")
	return resp, nil
}

// ForecastMA serves an MA(q) stochastic forecast. Theta is required; a seed
// makes the simulated innovations reproducible.
func (s *ForecastService) ForecastMA(ctx context.Context, req *models.MAForecastRequest) (*models.ForecastResponse, error) {
	if err := s.checkBounds(req.Steps, req.Q); err != nil {
		return nil, err
	}

	model := &quant.MAModel{Q: req.Q, Theta: req.Theta, Sigma2: req.Sigma2}
	var src rand.Source
	if req.Seed != nil {
		src = rand.NewSource(*req.Seed)
	}

	resp := &models.ForecastResponse{Model: "ma", Steps: req.Steps}

	if len(req.Frame) > 0 {
		frame := quant.FrameFromMap(req.Frame)
		frame.IndexLevels = req.IndexLevels
		out, err := quant.ForecastMAFrame(frame, model, req.Steps, src)
		if err != nil {
			return nil, err
		}
		resp.Columns = make(map[string][]float64, out.Len())
		for _, name := range out.Columns() {
			resp.Columns[name] = out.Column(name)
		}
		s.metrics.RecordForecast("ma")
		return resp, nil
	}

	series, err := s.resolveSeries(ctx, req.Series, req.Symbol)
	if err != nil {
		return nil, err
	}

	resp.Predictions, err = model.Forecast(series, req.Steps, src)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordForecast("ma")
	return resp, nil
}

// FitAR estimates AR(p) coefficients for a series or a symbol history.
func (s *ForecastService) FitAR(ctx context.Context, req *models.FitRequest) (*quant.ARModel, error) {
	if err := s.checkBounds(0, req.P); err != nil {
		return nil, err
	}
	series, err := s.resolveSeries(ctx, req.Series, req.Symbol)
	if err != nil {
		return nil, err
	}
	return quant.FitAR(series, req.P, quant.ARMethod(req.Method))
}

// FitMA estimates MA(q) parameters by maximum likelihood for a series or a
// symbol history. The request's P field carries the order q.
func (s *ForecastService) FitMA(ctx context.Context, req *models.FitRequest) (*quant.MAModel, error) {
	if err := s.checkBounds(0, req.P); err != nil {
		return nil, err
	}
	series, err := s.resolveSeries(ctx, req.Series, req.Symbol)
	if err != nil {
		return nil, err
	}
	return quant.FitMA(series, req.P)
}

// Beta computes the beta of a return series against a benchmark.
func (s *ForecastService) Beta(req *models.BetaRequest) (float64, error) {
	return quant.Beta(req.Returns, req.Benchmark)
}

// Correlation computes Pearson or Spearman correlation between two series.
func (s *ForecastService) Correlation(req *models.CorrelationRequest) (float64, error) {
	switch req.Method {
	case "spearman":
		return quant.SpearmanCorrelation(req.A, req.B)
	case "pearson", "":
		return quant.PearsonCorrelation(req.A, req.B)
	default:
		return 0, fmt.Errorf("%w: unknown correlation method %q", quant.ErrInvalidInput, req.Method)
	}
}

// Dispersion computes sample variance and standard deviation of a series.
func (s *ForecastService) Dispersion(req *models.DispersionRequest) (*models.DispersionResponse, error) {
	v, err := quant.Variance(req.Series)
	if err != nil {
		return nil, err
	}
	sd, err := quant.StdDev(req.Series)
	if err != nil {
		return nil, err
	}
	return &models.DispersionResponse{Variance: v, StdDev: sd}, nil
}
