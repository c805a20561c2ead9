package quant

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ARMethod selects the AR(p) coefficient estimation procedure.
type ARMethod string

const (
	// ARLeastSquares fits coefficients by solving the lagged regression in
	// the least-squares sense. Does not require stationarity.
	ARLeastSquares ARMethod = "lsm"

	// ARYuleWalker solves the Yule-Walker equations built from the sample
	// autocovariance. The series must be weakly stationary; this is a
	// documented precondition, not validated here, and a non-stationary
	// input silently yields an unreliable estimate.
	ARYuleWalker ARMethod = "yw"
)

// ARModel holds the fitted parameters of an autoregressive model of order P.
// Phi[0] is the lag-1 coefficient. Models are value objects: built by an
// estimation routine, consumed by forecasting, never mutated.
type ARModel struct {
	P      int       `json:"p"`
	Phi    []float64 `json:"phi"`
	Sigma2 float64   `json:"sigma2"`
}

// FitAR estimates an AR(p) model with the given method.
func FitAR(series []float64, p int, method ARMethod) (*ARModel, error) {
	switch method {
	case ARLeastSquares, "":
		return FitARLeastSquares(series, p)
	case ARYuleWalker:
		return FitARYuleWalker(series, p)
	default:
		return nil, fmt.Errorf("%w: unknown AR method %q", ErrInvalidInput, method)
	}
}

// FitARLeastSquares fits an AR(p) model by least squares. The design matrix
// holds the series at lags 1..p, the target is the series from index p
// onward, and sigma2 is estimated as the mean squared residual.
func FitARLeastSquares(series []float64, p int) (*ARModel, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: order p must be positive, got %d", ErrInvalidInput, p)
	}
	n := len(series) - p
	if n < 1 {
		return nil, fmt.Errorf("%w: series length %d must exceed order %d", ErrInvalidInput, len(series), p)
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for t := 0; t < n; t++ {
		y.SetVec(t, series[p+t])
		for j := 0; j < p; j++ {
			x.Set(t, j, series[p+t-1-j])
		}
	}

	// Minimum-norm least squares via the pseudoinverse, phi = V S+ Ut y.
	// The system is underdetermined when p < len(series) < 2p, which a QR
	// solve cannot handle.
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: singular value decomposition failed", ErrNumerical)
	}
	sv := svd.Values(nil)
	if len(sv) == 0 || sv[0] == 0 {
		return nil, fmt.Errorf("%w: design matrix has rank zero", ErrNumerical)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := 1e-12 * sv[0]
	coeffs := make([]float64, p)
	for k, s := range sv {
		if s <= tol {
			continue
		}
		var c float64
		for i := 0; i < n; i++ {
			c += u.At(i, k) * y.AtVec(i)
		}
		c /= s
		for j := 0; j < p; j++ {
			coeffs[j] += c * v.At(j, k)
		}
	}

	// sigma2 as the mean squared residual of y - X*phi
	phi := mat.NewVecDense(p, coeffs)
	var resid mat.VecDense
	resid.MulVec(x, phi)
	resid.SubVec(y, &resid)
	sigma2 := mat.Dot(&resid, &resid) / float64(n)

	return &ARModel{P: p, Phi: coeffs, Sigma2: sigma2}, nil
}

// FitARYuleWalker fits an AR(p) model by solving the Yule-Walker system
// R*phi = r, where R is the p-by-p Toeplitz matrix of sample autocovariances
// at lags 0..p-1 and r holds lags 1..p. Stationarity is the caller's
// responsibility.
func FitARYuleWalker(series []float64, p int) (*ARModel, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: order p must be positive, got %d", ErrInvalidInput, p)
	}
	if len(series) <= p {
		return nil, fmt.Errorf("%w: series length %d must exceed order %d", ErrInvalidInput, len(series), p)
	}

	autocov := autocovariance(series, p)

	r := mat.NewDense(p, p, nil)
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			lag := i - j
			if lag < 0 {
				lag = -lag
			}
			r.Set(i, j, autocov[lag])
		}
	}
	rhs := mat.NewVecDense(p, autocov[1:p+1])

	phi := mat.NewVecDense(p, nil)
	if err := phi.SolveVec(r, rhs); err != nil {
		return nil, fmt.Errorf("%w: yule-walker solve: %v", ErrNumerical, err)
	}

	coeffs := make([]float64, p)
	copy(coeffs, phi.RawVector().Data)
	sigma2 := autocov[0] - floats.Dot(coeffs, autocov[1:p+1])

	return &ARModel{P: p, Phi: coeffs, Sigma2: sigma2}, nil
}

// Forecast iteratively predicts steps future values. Each prediction is the
// dot product of Phi with the P most recent observations in reverse
// chronological order, and each predicted value feeds the next prediction.
func (m *ARModel) Forecast(series []float64, steps int) ([]float64, error) {
	if len(m.Phi) != m.P {
		return nil, fmt.Errorf("%w: phi has %d coefficients for order %d", ErrInvalidInput, len(m.Phi), m.P)
	}
	if len(series) < m.P {
		return nil, fmt.Errorf("%w: series length %d shorter than order %d", ErrInvalidInput, len(series), m.P)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidInput, steps)
	}

	hist := make([]float64, len(series), len(series)+steps)
	copy(hist, series)

	out := make([]float64, steps)
	for i := range out {
		recent := hist[len(hist)-m.P:]
		var next float64
		for j := 0; j < m.P; j++ {
			next += m.Phi[j] * recent[m.P-1-j]
		}
		out[i] = next
		hist = append(hist, next)
	}
	return out, nil
}

// ForecastAR fits an AR(p) model with the given method and forecasts steps
// future values in one call.
func ForecastAR(series []float64, steps, p int, method ARMethod) ([]float64, error) {
	model, err := FitAR(series, p, method)
	if err != nil {
		return nil, err
	}
	return model.Forecast(series, steps)
}

// ForecastARFrame applies AR(p) forecasting column-wise over a single-level
// frame, fitting each column independently. A hierarchical index fails fast
// before any column is touched.
func ForecastARFrame(f *Frame, steps, p int, method ARMethod) (*Frame, error) {
	if err := f.checkComputable(); err != nil {
		return nil, err
	}

	out := NewFrame()
	for _, name := range f.cols {
		pred, err := ForecastAR(f.data[name], steps, p, method)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		out.Add(name, pred)
	}
	return out, nil
}

// autocovariance returns uncentered sample autocovariances at lags 0..maxLag
// with the 1/n normalization used by the Yule-Walker equations.
func autocovariance(series []float64, maxLag int) []float64 {
	n := len(series)
	out := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		var sum float64
		for i := k; i < n; i++ {
			sum += series[i] * series[i-k]
		}
		out[k] = sum / float64(n)
	}
	return out
}
