package models

// Requests for the forecast and statistics HTTP endpoints. Defined in domain
// for consistency and reuse.

// ARForecastRequest selects an input (inline series, a named frame of
// series, or a stored symbol's close history) and the AR model settings.
// When Phi is supplied it is used as-is; otherwise the coefficients are
// estimated with the requested method.
type ARForecastRequest struct {
	Series      []float64            `json:"series"`
	Frame       map[string][]float64 `json:"frame"`
	IndexLevels int                  `json:"index_levels" default:"1" validate:"gte=1"`
	Symbol      string               `json:"symbol"`
	Steps       int                  `json:"steps" default:"1" validate:"gte=1,lte=1000"`
	P           int                  `json:"p" default:"1" validate:"gte=1,lte=50"`
	Method      string               `json:"method" default:"lsm" validate:"oneof=lsm yw"`
	Phi         []float64            `json:"phi"`
}

// MAForecastRequest carries MA forecast inputs. Theta must be supplied;
// Seed, when set, makes the simulated innovations reproducible.
type MAForecastRequest struct {
	Series      []float64            `json:"series"`
	Frame       map[string][]float64 `json:"frame"`
	IndexLevels int                  `json:"index_levels" default:"1" validate:"gte=1"`
	Symbol      string               `json:"symbol"`
	Steps       int                  `json:"steps" default:"1" validate:"gte=1,lte=1000"`
	Q           int                  `json:"q" default:"1" validate:"gte=0,lte=50"`
	Theta       []float64            `json:"theta"`
	Sigma2      float64              `json:"sigma2" default:"1"`
	Seed        *uint64              `json:"seed"`
}

// FitRequest fits an AR or MA model to a series or a stored symbol history.
type FitRequest struct {
	Series []float64 `json:"series"`
	Symbol string    `json:"symbol"`
	P      int       `json:"p" default:"1" validate:"gte=0,lte=50"`
	Method string    `json:"method" default:"lsm" validate:"oneof=lsm yw"`
}

// BetaRequest compares an asset return series against a benchmark.
type BetaRequest struct {
	Returns   []float64 `json:"returns" validate:"required"`
	Benchmark []float64 `json:"benchmark" validate:"required"`
}

// CorrelationRequest computes Pearson or Spearman correlation.
type CorrelationRequest struct {
	A      []float64 `json:"a" validate:"required"`
	B      []float64 `json:"b" validate:"required"`
	Method string    `json:"method" default:"pearson" validate:"oneof=pearson spearman"`
}

// DispersionRequest computes sample variance and standard deviation.
type DispersionRequest struct {
	Series []float64 `json:"series" validate:"required"`
}

// ForecastResponse is the per-series forecast result; Columns is set for
// frame inputs instead of Predictions.
type ForecastResponse struct {
	Model       string               `json:"model"`
	Steps       int                  `json:"steps"`
	Predictions []float64            `json:"predictions,omitempty"`
	Columns     map[string][]float64 `json:"columns,omitempty"`
}

// DispersionResponse pairs the two dispersion measures.
type DispersionResponse struct {
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
}
