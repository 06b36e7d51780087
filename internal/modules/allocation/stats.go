package allocation

import (
	"math"
	"sort"

	"github.com/aristath/allocator/pkg/formulas"
)

// PortfolioStats summarizes a weighted portfolio in periodic (not annualized) terms.
type PortfolioStats struct {
	ExpectedReturn     float64 `json:"expectedReturn"`
	ExpectedVolatility float64 `json:"expectedVolatility"`
	// Periods is the number of aligned return observations behind the covariance matrix.
	Periods int `json:"periods"`
}

// ComputeStats returns the expected return and covariance-aware volatility of a portfolio.
//
// Expected return is Σ w(s)·mean(returns(s)) using each asset's full series.
//
// For volatility the series with at least two observations are aligned on their most
// recent observations and truncated to the shortest of them. Assets with a shorter
// series, or missing from returnsBySymbol, contribute zero variance and covariance. Variance is wᵗΣw with a
// population covariance matrix, clamped at zero before the square root.
func ComputeStats(weights map[string]float64, returnsBySymbol map[string][]float64) PortfolioStats {
	symbols := make([]string, 0, len(weights))
	for s := range weights {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var stats PortfolioStats
	for _, s := range symbols {
		stats.ExpectedReturn += weights[s] * formulas.Mean(returnsBySymbol[s])
	}

	aligned, alignedWeights, periods := alignReturns(symbols, weights, returnsBySymbol)
	stats.Periods = periods
	if len(aligned) == 0 {
		return stats
	}

	cov, err := formulas.PopCovarianceMatrix(aligned)
	if err != nil {
		// alignReturns only yields equal-length, non-empty input.
		return stats
	}
	stats.ExpectedVolatility = volatilityFromVariance(formulas.QuadraticForm(alignedWeights, cov))
	return stats
}

// minAlignedReturns is the shortest series allowed to take part in the covariance
// estimate. A single observation has no variance and would truncate every other series.
const minAlignedReturns = 2

// alignReturns keeps the trailing `periods` returns of every series holding at least
// minAlignedReturns observations, where periods is the shortest such length.
func alignReturns(symbols []string, weights map[string]float64, returnsBySymbol map[string][]float64) ([][]float64, []float64, int) {
	periods := 0
	for _, s := range symbols {
		n := len(returnsBySymbol[s])
		if n < minAlignedReturns {
			continue
		}
		if periods == 0 || n < periods {
			periods = n
		}
	}
	if periods == 0 {
		return nil, nil, 0
	}

	var aligned [][]float64
	var w []float64
	for _, s := range symbols {
		r := returnsBySymbol[s]
		if len(r) < minAlignedReturns {
			continue
		}
		aligned = append(aligned, r[len(r)-periods:])
		w = append(w, weights[s])
	}
	return aligned, w, periods
}

// volatilityFromVariance clamps rounding-induced negative variance to zero.
func volatilityFromVariance(variance float64) float64 {
	if math.IsNaN(variance) || variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}
