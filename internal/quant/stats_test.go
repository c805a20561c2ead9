package quant

import (
	"errors"
	"math"
	"testing"
)

func TestVarianceConstantSeries(t *testing.T) {
	data := []float64{3, 3, 3, 3, 3}

	v, err := Variance(data)
	if err != nil {
		t.Fatalf("Variance returned error: %v", err)
	}
	if v != 0 {
		t.Errorf("variance of constant series should be 0, got %f", v)
	}

	s, err := StdDev(data)
	if err != nil {
		t.Fatalf("StdDev returned error: %v", err)
	}
	if s != 0 {
		t.Errorf("std dev of constant series should be 0, got %f", s)
	}
}

func TestVarianceSample(t *testing.T) {
	// sample variance with n-1 denominator
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	v, err := Variance(data)
	if err != nil {
		t.Fatalf("Variance returned error: %v", err)
	}
	want := 32.0 / 7.0
	if math.Abs(v-want) > 1e-12 {
		t.Errorf("expected variance %f, got %f", want, v)
	}
}

func TestVarianceTooShort(t *testing.T) {
	if _, err := Variance([]float64{1}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPearsonSelfCorrelation(t *testing.T) {
	x := []float64{1.2, -0.5, 3.4, 0.1, 2.2, -1.7}

	r, err := PearsonCorrelation(x, x)
	if err != nil {
		t.Fatalf("PearsonCorrelation returned error: %v", err)
	}
	if math.Abs(r-1) > 1e-12 {
		t.Errorf("pearson(x, x) should be 1, got %f", r)
	}

	neg := make([]float64, len(x))
	for i, v := range x {
		neg[i] = -v
	}
	r, err = PearsonCorrelation(x, neg)
	if err != nil {
		t.Fatalf("PearsonCorrelation returned error: %v", err)
	}
	if math.Abs(r+1) > 1e-12 {
		t.Errorf("pearson(x, -x) should be -1, got %f", r)
	}
}

func TestPearsonErrors(t *testing.T) {
	if _, err := PearsonCorrelation([]float64{1, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("length mismatch: expected ErrInvalidInput, got %v", err)
	}
	if _, err := PearsonCorrelation([]float64{1}, []float64{2}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short input: expected ErrInvalidInput, got %v", err)
	}
	if _, err := PearsonCorrelation([]float64{2, 2, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrNumerical) {
		t.Errorf("constant series: expected ErrNumerical, got %v", err)
	}
}

func TestSpearmanMonotoneInvariance(t *testing.T) {
	a := []float64{0.3, 1.8, -2.1, 0.9, 4.4, 2.0}
	b := []float64{1.1, -0.2, 0.7, 3.3, -1.9, 0.5}

	base, err := SpearmanCorrelation(a, b)
	if err != nil {
		t.Fatalf("SpearmanCorrelation returned error: %v", err)
	}

	// exp is strictly increasing, so ranks are unchanged
	ta := make([]float64, len(a))
	for i, v := range a {
		ta[i] = math.Exp(v)
	}
	transformed, err := SpearmanCorrelation(ta, b)
	if err != nil {
		t.Fatalf("SpearmanCorrelation returned error: %v", err)
	}
	if transformed != base {
		t.Errorf("spearman not invariant under monotone transform: %f vs %f", base, transformed)
	}

	tb := make([]float64, len(b))
	for i, v := range b {
		tb[i] = 3*v + 100
	}
	transformed, err = SpearmanCorrelation(a, tb)
	if err != nil {
		t.Fatalf("SpearmanCorrelation returned error: %v", err)
	}
	if transformed != base {
		t.Errorf("spearman not invariant under affine transform: %f vs %f", base, transformed)
	}
}

func TestSpearmanPerfectRankAgreement(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{10, 20, 30, 40, 50}

	r, err := SpearmanCorrelation(a, b)
	if err != nil {
		t.Fatalf("SpearmanCorrelation returned error: %v", err)
	}
	if math.Abs(r-1) > 1e-12 {
		t.Errorf("expected spearman 1, got %f", r)
	}
}

func TestSpearmanDegenerateLength(t *testing.T) {
	if _, err := SpearmanCorrelation(nil, nil); !errors.Is(err, ErrNumerical) {
		t.Errorf("n=0: expected ErrNumerical, got %v", err)
	}
	if _, err := SpearmanCorrelation([]float64{1}, []float64{2}); !errors.Is(err, ErrNumerical) {
		t.Errorf("n=1: expected ErrNumerical, got %v", err)
	}
}

func TestBetaSelf(t *testing.T) {
	x := []float64{0.01, -0.02, 0.015, 0.03, -0.007, 0.002}

	b, err := Beta(x, x)
	if err != nil {
		t.Fatalf("Beta returned error: %v", err)
	}
	if math.Abs(b-1) > 1e-12 {
		t.Errorf("beta(x, x) should be 1, got %f", b)
	}
}

func TestBetaScaled(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.03, -0.007, 0.002}
	asset := make([]float64, len(bench))
	for i, v := range bench {
		asset[i] = 2 * v
	}

	b, err := Beta(asset, bench)
	if err != nil {
		t.Fatalf("Beta returned error: %v", err)
	}
	if math.Abs(b-2) > 1e-12 {
		t.Errorf("expected beta 2, got %f", b)
	}
}

func TestBetaZeroBenchmarkVariance(t *testing.T) {
	if _, err := Beta([]float64{1, 2, 3}, []float64{5, 5, 5}); !errors.Is(err, ErrNumerical) {
		t.Errorf("expected ErrNumerical, got %v", err)
	}
}

func TestBetaLengthMismatch(t *testing.T) {
	if _, err := Beta([]float64{1, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRanksTies(t *testing.T) {
	r := ranks([]float64{10, 20, 20, 30})
	want := []float64{1, 2.5, 2.5, 4}
	for i := range want {
		if r[i] != want[i] {
			t.Fatalf("ranks mismatch at %d: got %v, want %v", i, r, want)
		}
	}
}
