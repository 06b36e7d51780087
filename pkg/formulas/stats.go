// Package formulas holds the gonum-backed numeric helpers used by the allocation engine.
package formulas

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SimpleReturns converts prices to periodic returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; fewer than two prices yields an empty slice.
// Non-positive prices are not special-cased.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 0; i < len(prices)-1; i++ {
		returns[i] = (prices[i+1] - prices[i]) / prices[i]
	}
	return returns
}

// Mean calculates the arithmetic mean, 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopVariance is the variance with divisor n (not n-1). Empty input yields 0.
func PopVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopVariance(data, nil)
}

// PopStdDev is the square root of PopVariance, clamped at zero.
func PopStdDev(data []float64) float64 {
	return math.Sqrt(math.Max(0, PopVariance(data)))
}

// PopCovarianceMatrix builds the population covariance matrix of equal-length series.
// Element (i, j) is the covariance of series[i] and series[j] divided by the observation
// count. Fewer than two observations produce an all-zero matrix.
func PopCovarianceMatrix(series [][]float64) (*mat.SymDense, error) {
	n := len(series)
	if n == 0 {
		return nil, fmt.Errorf("no series provided")
	}

	obs := len(series[0])
	for i, s := range series {
		if len(s) != obs {
			return nil, fmt.Errorf("series %d has %d observations, expected %d", i, len(s), obs)
		}
	}

	cov := mat.NewSymDense(n, nil)
	if obs < 2 {
		return cov, nil
	}

	// Rows are observations, columns are assets.
	x := mat.NewDense(obs, n, nil)
	for j, s := range series {
		x.SetCol(j, s)
	}

	// gonum uses the unbiased (n-1) divisor.
	stat.CovarianceMatrix(cov, x, nil)
	scale := float64(obs-1) / float64(obs)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			cov.SetSym(i, j, cov.At(i, j)*scale)
		}
	}

	return cov, nil
}

// QuadraticForm returns wᵗΣw.
func QuadraticForm(weights []float64, cov mat.Symmetric) float64 {
	if len(weights) == 0 {
		return 0
	}
	w := mat.NewVecDense(len(weights), weights)
	return mat.Inner(w, cov, w)
}

// RollingStdDev returns the population standard deviation over a trailing window of
// `period` observations. The first period-1 entries are zero.
func RollingStdDev(data []float64, period int) []float64 {
	if period < 2 || len(data) < period {
		return []float64{}
	}
	return talib.StdDev(data, period, 1.0)
}
