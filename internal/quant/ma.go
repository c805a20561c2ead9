package quant

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MAModel holds the fitted parameters of a moving-average model of order Q.
// Theta[0] is the coefficient of the most recent innovation and Mu is the
// process mean the series was centered on during estimation.
type MAModel struct {
	Q      int       `json:"q"`
	Theta  []float64 `json:"theta"`
	Sigma2 float64   `json:"sigma2"`
	Mu     float64   `json:"mu"`
}

// FitMA estimates an MA(q) model by maximum likelihood. The series is
// centered on its mean, innovations are reconstructed recursively as
// e[t] = x[t] - theta . e[t-q..t-1] (reversed), and the exact Gaussian
// log-likelihood over t >= q is maximized with a quasi-Newton optimizer
// starting from theta = 0 and sigma2 = sample variance. Non-convergence is
// an estimation failure; the initial guess is never returned silently.
func FitMA(series []float64, q int) (*MAModel, error) {
	if q < 0 {
		return nil, fmt.Errorf("%w: order q must be non-negative, got %d", ErrInvalidInput, q)
	}
	if len(series) <= q || len(series) < 2 {
		return nil, fmt.Errorf("%w: series length %d too short for order %d", ErrInvalidInput, len(series), q)
	}

	mu := stat.Mean(series, nil)
	centered := make([]float64, len(series))
	for i, v := range series {
		centered[i] = v - mu
	}

	objective := func(params []float64) float64 {
		return maNegLogLikelihood(params, centered)
	}
	// L-BFGS needs a gradient; the likelihood has no tidy closed form, so
	// differentiate numerically.
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, params []float64) {
			fd.Gradient(grad, objective, params, nil)
		},
	}

	// params = [theta_1..theta_q, sigma2]
	initial := make([]float64, q+1)
	initial[q] = stat.Variance(series, nil)

	result, err := optimize.Minimize(problem, initial, nil, &optimize.LBFGS{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEstimation, err)
	}
	switch result.Status {
	case optimize.Failure, optimize.NotTerminated, optimize.IterationLimit,
		optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit, optimize.RuntimeLimit:
		return nil, fmt.Errorf("%w: optimizer did not converge (status %v)", ErrEstimation, result.Status)
	}

	sigma2 := result.X[q]
	if sigma2 <= 0 || math.IsNaN(sigma2) {
		return nil, fmt.Errorf("%w: non-positive innovation variance %g", ErrEstimation, sigma2)
	}

	theta := make([]float64, q)
	copy(theta, result.X[:q])
	return &MAModel{Q: q, Theta: theta, Sigma2: sigma2, Mu: mu}, nil
}

// maNegLogLikelihood evaluates the negative exact log-likelihood of an MA(q)
// process for params = [theta..., sigma2] on a mean-centered series.
func maNegLogLikelihood(params []float64, data []float64) float64 {
	q := len(params) - 1
	theta := params[:q]
	sigma2 := params[q]
	if sigma2 <= 0 {
		return math.Inf(1)
	}

	n := len(data)
	errs := make([]float64, n)
	for t := q; t < n; t++ {
		var acc float64
		for j := 0; j < q; j++ {
			acc += theta[j] * errs[t-1-j]
		}
		errs[t] = data[t] - acc
	}

	var sse float64
	for t := q; t < n; t++ {
		sse += errs[t] * errs[t]
	}

	ll := -float64(n)/2*math.Log(2*math.Pi*sigma2) - sse/(2*sigma2)
	return -ll
}

// Forecast simulates steps future values. Innovations are drawn from a
// zero-mean Gaussian with variance Sigma2 through src, so a seeded source
// makes the forecast deterministic; a nil src falls back to a time-seeded
// one. Each prediction is mu + theta . (recent innovations, reversed),
// truncated to the innovations available within the horizon. With q = 0
// every prediction collapses to the series mean.
func (m *MAModel) Forecast(series []float64, steps int, src rand.Source) ([]float64, error) {
	if m.Theta == nil {
		return nil, fmt.Errorf("%w: theta (MA coefficients) must be provided", ErrMissingParameter)
	}
	if len(m.Theta) != m.Q {
		return nil, fmt.Errorf("%w: theta has %d coefficients for order %d", ErrInvalidInput, len(m.Theta), m.Q)
	}
	if len(series) < m.Q {
		return nil, fmt.Errorf("%w: series length %d shorter than order %d", ErrInvalidInput, len(series), m.Q)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidInput, steps)
	}
	if m.Sigma2 < 0 {
		return nil, fmt.Errorf("%w: negative innovation variance %g", ErrInvalidInput, m.Sigma2)
	}

	mu := stat.Mean(series, nil)
	out := make([]float64, steps)
	if m.Q == 0 {
		for i := range out {
			out[i] = mu
		}
		return out, nil
	}

	if src == nil {
		src = rand.NewSource(uint64(time.Now().UnixNano()))
	}
	noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(m.Sigma2), Src: src}

	innovations := make([]float64, steps+m.Q)
	for i := range innovations {
		innovations[i] = noise.Rand()
	}

	for i := 0; i < steps; i++ {
		window := innovations[i:steps]
		if i+m.Q <= steps {
			window = innovations[i : i+m.Q]
		}
		pred := mu
		for j := 0; j < len(window); j++ {
			pred += m.Theta[j] * window[len(window)-1-j]
		}
		out[i] = pred
	}
	return out, nil
}

// ForecastMAFrame applies MA(q) forecasting column-wise over a single-level
// frame, sharing the model parameters across columns. A hierarchical index
// fails fast before any column is touched.
func ForecastMAFrame(f *Frame, m *MAModel, steps int, src rand.Source) (*Frame, error) {
	if err := f.checkComputable(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: MA model must be provided", ErrMissingParameter)
	}

	out := NewFrame()
	for _, name := range f.cols {
		pred, err := m.Forecast(f.data[name], steps, src)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		out.Add(name, pred)
	}
	return out, nil
}
