package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"FinCast/internal/domain/models"
	"FinCast/internal/quant"
)

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamRequest(endpoint, result string) {}
func (nopMetrics) RecordSnapshotSent(backend, symbol string)     {}
func (nopMetrics) RecordError(kind string)                       {}
func (nopMetrics) RecordLastPrice(symbol string, price float64)  {}
func (nopMetrics) RecordLatency(op string, seconds float64)      {}
func (nopMetrics) RecordForecast(model string)                   {}

func newTestForecastService() *ForecastService {
	return NewForecastService(nil, nopMetrics{}, ForecastLimits{})
}

func TestForecastARWithSuppliedPhi(t *testing.T) {
	svc := newTestForecastService()

	resp, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{
		Series: []float64{1, 2, 3},
		Steps:  2,
		P:      1,
		Phi:    []float64{1},
	})
	if err != nil {
		t.Fatalf("ForecastAR returned error: %v", err)
	}
	if len(resp.Predictions) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(resp.Predictions))
	}
	for i, p := range resp.Predictions {
		if p != 3 {
			t.Errorf("prediction %d = %f, want 3", i, p)
		}
	}
}

func TestForecastARFitsWhenPhiAbsent(t *testing.T) {
	svc := newTestForecastService()

	// Exact AR(1) with phi = 0.5
	series := make([]float64, 50)
	series[0] = 64
	for i := 1; i < len(series); i++ {
		series[i] = 0.5 * series[i-1]
	}

	resp, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{
		Series: series,
		Steps:  1,
		P:      1,
		Method: "lsm",
	})
	if err != nil {
		t.Fatalf("ForecastAR returned error: %v", err)
	}
	want := 0.5 * series[len(series)-1]
	if math.Abs(resp.Predictions[0]-want) > 1e-8 {
		t.Errorf("prediction = %g, want %g", resp.Predictions[0], want)
	}
}

func TestForecastARFrame(t *testing.T) {
	svc := newTestForecastService()

	resp, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{
		Frame: map[string][]float64{
			"AAPL": {1, 2, 3},
			"MSFT": {2, 4, 6},
		},
		IndexLevels: 1,
		Steps:       1,
		P:           1,
		Phi:         nil,
		Method:      "lsm",
	})
	if err != nil {
		t.Fatalf("ForecastAR frame returned error: %v", err)
	}
	if resp.Predictions != nil {
		t.Error("frame response should not set Predictions")
	}
	if len(resp.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(resp.Columns))
	}
	if len(resp.Columns["AAPL"]) != 1 || len(resp.Columns["MSFT"]) != 1 {
		t.Errorf("columns have wrong lengths: %v", resp.Columns)
	}
}

func TestForecastARHierarchicalFrame(t *testing.T) {
	svc := newTestForecastService()

	_, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{
		Frame:       map[string][]float64{"AAPL": {1, 2, 3}},
		IndexLevels: 2,
		Steps:       1,
		P:           1,
	})
	if !errors.Is(err, quant.ErrHierarchicalIndex) {
		t.Fatalf("expected ErrHierarchicalIndex, got %v", err)
	}
}

func TestForecastARStepsBound(t *testing.T) {
	svc := NewForecastService(nil, nopMetrics{}, ForecastLimits{MaxSteps: 10})

	_, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{
		Series: []float64{1, 2, 3},
		Steps:  11,
		P:      1,
	})
	if !errors.Is(err, quant.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized steps, got %v", err)
	}
}

func TestForecastARRequiresInput(t *testing.T) {
	svc := newTestForecastService()

	_, err := svc.ForecastAR(context.Background(), &models.ARForecastRequest{Steps: 1, P: 1})
	if !errors.Is(err, quant.ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestForecastMASeedReproducible(t *testing.T) {
	svc := newTestForecastService()
	seed := uint64(42)

	req := &models.MAForecastRequest{
		Series: []float64{10, 11, 9, 10, 12},
		Steps:  5,
		Q:      1,
		Theta:  []float64{0.5},
		Sigma2: 1,
		Seed:   &seed,
	}

	a, err := svc.ForecastMA(context.Background(), req)
	if err != nil {
		t.Fatalf("ForecastMA returned error: %v", err)
	}
	b, err := svc.ForecastMA(context.Background(), req)
	if err != nil {
		t.Fatalf("ForecastMA returned error: %v", err)
	}
	for i := range a.Predictions {
		if a.Predictions[i] != b.Predictions[i] {
			t.Fatalf("same seed produced different forecasts at %d: %g vs %g", i, a.Predictions[i], b.Predictions[i])
		}
	}
}

func TestForecastMARequiresTheta(t *testing.T) {
	svc := newTestForecastService()

	_, err := svc.ForecastMA(context.Background(), &models.MAForecastRequest{
		Series: []float64{1, 2, 3},
		Steps:  1,
		Q:      1,
	})
	if !errors.Is(err, quant.ErrMissingParameter) {
		t.Fatalf("expected ErrMissingParameter, got %v", err)
	}
}

func TestForecastMAZeroOrderIsMean(t *testing.T) {
	svc := newTestForecastService()

	resp, err := svc.ForecastMA(context.Background(), &models.MAForecastRequest{
		Series: []float64{2, 4, 6},
		Steps:  3,
		Q:      0,
		Theta:  []float64{},
		Sigma2: 1,
	})
	if err != nil {
		t.Fatalf("ForecastMA returned error: %v", err)
	}
	for i, p := range resp.Predictions {
		if p != 4 {
			t.Errorf("prediction %d = %g, want series mean 4", i, p)
		}
	}
}

func TestCorrelationDispatch(t *testing.T) {
	svc := newTestForecastService()
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 4, 6, 8}

	r, err := svc.Correlation(&models.CorrelationRequest{A: a, B: b, Method: "pearson"})
	if err != nil {
		t.Fatalf("pearson returned error: %v", err)
	}
	if math.Abs(r-1) > 1e-12 {
		t.Errorf("pearson = %g, want 1", r)
	}

	r, err = svc.Correlation(&models.CorrelationRequest{A: a, B: b, Method: "spearman"})
	if err != nil {
		t.Fatalf("spearman returned error: %v", err)
	}
	if r != 1 {
		t.Errorf("spearman = %g, want 1", r)
	}

	if _, err := svc.Correlation(&models.CorrelationRequest{A: a, B: b, Method: "kendall"}); !errors.Is(err, quant.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown method, got %v", err)
	}
}

func TestDispersion(t *testing.T) {
	svc := newTestForecastService()

	resp, err := svc.Dispersion(&models.DispersionRequest{Series: []float64{2, 4, 4, 4, 5, 5, 7, 9}})
	if err != nil {
		t.Fatalf("Dispersion returned error: %v", err)
	}
	if math.Abs(resp.Variance-32.0/7.0) > 1e-12 {
		t.Errorf("variance = %g, want %g", resp.Variance, 32.0/7.0)
	}
	if math.Abs(resp.StdDev-math.Sqrt(32.0/7.0)) > 1e-12 {
		t.Errorf("stddev = %g", resp.StdDev)
	}
}

func TestBetaAgainstBenchmark(t *testing.T) {
	svc := newTestForecastService()
	bench := []float64{0.01, -0.02, 0.03, 0.01, -0.01}
	scaled := make([]float64, len(bench))
	for i, v := range bench {
		scaled[i] = 2 * v
	}

	beta, err := svc.Beta(&models.BetaRequest{Returns: scaled, Benchmark: bench})
	if err != nil {
		t.Fatalf("Beta returned error: %v", err)
	}
	if math.Abs(beta-2) > 1e-12 {
		t.Errorf("beta = %g, want 2", beta)
	}
}
