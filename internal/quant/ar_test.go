package quant

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// generateAR builds a noiseless AR process from initial values and phi.
func generateAR(initial, phi []float64, n int) []float64 {
	p := len(phi)
	out := make([]float64, 0, n)
	out = append(out, initial...)
	for len(out) < n {
		var next float64
		for j := 0; j < p; j++ {
			next += phi[j] * out[len(out)-1-j]
		}
		out = append(out, next)
	}
	return out
}

func TestFitARLeastSquaresExactRecovery(t *testing.T) {
	phi := []float64{0.5, 0.3}
	series := generateAR([]float64{1, 2}, phi, 60)

	model, err := FitARLeastSquares(series, 2)
	if err != nil {
		t.Fatalf("FitARLeastSquares returned error: %v", err)
	}

	for i := range phi {
		if math.Abs(model.Phi[i]-phi[i]) > 1e-8 {
			t.Errorf("phi[%d]: expected %f, got %f", i, phi[i], model.Phi[i])
		}
	}
	if model.Sigma2 > 1e-12 {
		t.Errorf("noiseless fit should have near-zero sigma2, got %g", model.Sigma2)
	}
}

func TestFitARLeastSquaresUnderdetermined(t *testing.T) {
	// len(series) = 3, p = 2 gives a single-row design matrix. The fit must
	// return the minimum-norm solution, not fail on the wide system.
	model, err := FitARLeastSquares([]float64{1, 2, 3}, 2)
	if err != nil {
		t.Fatalf("FitARLeastSquares returned error: %v", err)
	}
	if len(model.Phi) != 2 {
		t.Fatalf("expected 2 coefficients, got %d", len(model.Phi))
	}

	// One equation, 2*phi[0] + 1*phi[1] = 3; minimum-norm solution is
	// [2,1] * 3/5.
	want := []float64{1.2, 0.6}
	for i := range want {
		if math.Abs(model.Phi[i]-want[i]) > 1e-12 {
			t.Errorf("phi[%d]: expected %f, got %f", i, want[i], model.Phi[i])
		}
	}
	if model.Sigma2 > 1e-12 {
		t.Errorf("exactly solvable system should have zero residual, got sigma2 %g", model.Sigma2)
	}
}

func TestFitARLeastSquaresTooShort(t *testing.T) {
	if _, err := FitARLeastSquares([]float64{1, 2, 3}, 3); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("len == p: expected ErrInvalidInput, got %v", err)
	}
	if _, err := FitARLeastSquares([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("p == 0: expected ErrInvalidInput, got %v", err)
	}
}

func TestFitARYuleWalkerTooShort(t *testing.T) {
	if _, err := FitARYuleWalker([]float64{1, 2}, 2); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestYuleWalkerMatchesLeastSquares(t *testing.T) {
	// Stationary AR(1) with seeded Gaussian noise: both estimators should
	// land close to the true coefficient for a large sample.
	const phi = 0.6
	noise := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(7)}

	series := make([]float64, 8000)
	for i := 1; i < len(series); i++ {
		series[i] = phi*series[i-1] + noise.Rand()
	}

	lsm, err := FitARLeastSquares(series, 1)
	if err != nil {
		t.Fatalf("least squares fit failed: %v", err)
	}
	yw, err := FitARYuleWalker(series, 1)
	if err != nil {
		t.Fatalf("yule-walker fit failed: %v", err)
	}

	if math.Abs(lsm.Phi[0]-phi) > 0.05 {
		t.Errorf("least squares phi %f too far from %f", lsm.Phi[0], phi)
	}
	if math.Abs(yw.Phi[0]-phi) > 0.05 {
		t.Errorf("yule-walker phi %f too far from %f", yw.Phi[0], phi)
	}
	if math.Abs(lsm.Phi[0]-yw.Phi[0]) > 0.02 {
		t.Errorf("estimators diverge: lsm %f vs yw %f", lsm.Phi[0], yw.Phi[0])
	}
}

func TestForecastRepeatsLastValueForUnitPhi(t *testing.T) {
	model := &ARModel{P: 1, Phi: []float64{1}}

	pred, err := model.Forecast([]float64{1, 2, 3}, 2)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	if len(pred) != 2 || pred[0] != 3 || pred[1] != 3 {
		t.Errorf("expected [3 3], got %v", pred)
	}
}

func TestForecastFeedsPredictionsForward(t *testing.T) {
	// phi = [0.5]: each step halves the previous prediction
	model := &ARModel{P: 1, Phi: []float64{0.5}}

	pred, err := model.Forecast([]float64{8}, 3)
	if err != nil {
		t.Fatalf("Forecast returned error: %v", err)
	}
	want := []float64{4, 2, 1}
	for i := range want {
		if math.Abs(pred[i]-want[i]) > 1e-12 {
			t.Errorf("step %d: expected %f, got %f", i, want[i], pred[i])
		}
	}
}

func TestForecastValidation(t *testing.T) {
	model := &ARModel{P: 2, Phi: []float64{0.5, 0.2}}

	if _, err := model.Forecast([]float64{1}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short series: expected ErrInvalidInput, got %v", err)
	}
	if _, err := model.Forecast([]float64{1, 2}, 0); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero steps: expected ErrInvalidInput, got %v", err)
	}

	bad := &ARModel{P: 2, Phi: []float64{0.5}}
	if _, err := bad.Forecast([]float64{1, 2}, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("phi/order mismatch: expected ErrInvalidInput, got %v", err)
	}
}

func TestForecastARUnknownMethod(t *testing.T) {
	if _, err := ForecastAR([]float64{1, 2, 3}, 1, 1, "mle"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestForecastARFrame(t *testing.T) {
	f := NewFrame()
	f.Add("AAPL", []float64{1, 2, 3})
	f.Add("MSFT", []float64{2, 4, 6})

	out, err := ForecastARFrame(f, 2, 1, ARLeastSquares)
	if err != nil {
		t.Fatalf("ForecastARFrame returned error: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 columns, got %d", out.Len())
	}

	// column-wise result must match the per-series routine
	for _, name := range f.Columns() {
		want, err := ForecastAR(f.Column(name), 2, 1, ARLeastSquares)
		if err != nil {
			t.Fatalf("ForecastAR(%s) returned error: %v", name, err)
		}
		got := out.Column(name)
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("column %s step %d: frame %f vs series %f", name, i, got[i], want[i])
			}
		}
	}
}

func TestForecastARFrameHierarchicalIndex(t *testing.T) {
	f := NewFrame()
	f.Add("AAPL", []float64{1, 2, 3})
	f.IndexLevels = 2

	if _, err := ForecastARFrame(f, 1, 1, ARLeastSquares); !errors.Is(err, ErrHierarchicalIndex) {
		t.Errorf("expected ErrHierarchicalIndex, got %v", err)
	}
}

func TestForecastARFrameEmpty(t *testing.T) {
	if _, err := ForecastARFrame(NewFrame(), 1, 1, ARLeastSquares); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
