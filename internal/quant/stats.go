// Package quant implements the statistical and time-series estimation
// routines behind the forecast API: beta, correlation measures, dispersion,
// and AR(p)/MA(q) model fitting and forecasting.
package quant

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Beta calculates the sensitivity of an asset's returns to a benchmark's
// returns: the covariance of the mean-centered series divided by the
// variance of the centered benchmark. A zero benchmark variance is a
// numerical error, not a special case.
func Beta(returns, benchmark []float64) (float64, error) {
	if len(returns) != len(benchmark) {
		return 0, fmt.Errorf("%w: series length %d != benchmark length %d", ErrInvalidInput, len(returns), len(benchmark))
	}
	if len(returns) < 2 {
		return 0, fmt.Errorf("%w: beta needs at least 2 observations, got %d", ErrInvalidInput, len(returns))
	}

	cov := stat.Covariance(returns, benchmark, nil)
	benchVar := stat.Variance(benchmark, nil)
	if benchVar == 0 {
		return 0, fmt.Errorf("%w: benchmark variance is zero", ErrNumerical)
	}

	return cov / benchVar, nil
}

// PearsonCorrelation calculates Pearson's correlation coefficient between
// two equal-length series of at least 2 observations.
func PearsonCorrelation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: series lengths %d and %d differ", ErrInvalidInput, len(a), len(b))
	}
	if len(a) < 2 {
		return 0, fmt.Errorf("%w: correlation needs at least 2 observations, got %d", ErrInvalidInput, len(a))
	}

	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) {
		return 0, fmt.Errorf("%w: zero variance in input series", ErrNumerical)
	}
	return r, nil
}

// SpearmanCorrelation calculates Spearman's rank correlation coefficient
// using 1 - 6*sum(d^2)/(n*(n^2-1)) over per-position rank differences.
// Ties receive their average rank.
func SpearmanCorrelation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: series lengths %d and %d differ", ErrInvalidInput, len(a), len(b))
	}
	n := len(a)
	if n < 2 {
		return 0, fmt.Errorf("%w: rank denominator n*(n^2-1) is zero for n=%d", ErrNumerical, n)
	}

	ra := ranks(a)
	rb := ranks(b)

	var dsq float64
	for i := range ra {
		d := ra[i] - rb[i]
		dsq += d * d
	}

	nf := float64(n)
	return 1 - (6*dsq)/(nf*(nf*nf-1)), nil
}

// Variance calculates the sample variance (n-1 denominator).
func Variance(data []float64) (float64, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: sample variance needs at least 2 observations, got %d", ErrInvalidInput, len(data))
	}
	return stat.Variance(data, nil), nil
}

// StdDev calculates the sample standard deviation (n-1 denominator).
func StdDev(data []float64) (float64, error) {
	v, err := Variance(data)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// ranks returns 1-based positional ranks with ties averaged.
func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })

	out := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		// ranks i+1..j+1 averaged over the tie run
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}
