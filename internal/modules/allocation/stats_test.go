package allocation

import (
	"math"
	"testing"

	"github.com/aristath/allocator/pkg/formulas"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats_SingleAsset(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, 0.0}
	stats := ComputeStats(map[string]float64{"A": 1}, map[string][]float64{"A": returns})

	assert.InDelta(t, formulas.Mean(returns), stats.ExpectedReturn, 1e-15)
	assert.InDelta(t, formulas.PopStdDev(returns), stats.ExpectedVolatility, 1e-12)
	assert.Equal(t, 4, stats.Periods)
}

func TestComputeStats_CovarianceMatters(t *testing.T) {
	a := []float64{0.01, -0.01, 0.01, -0.01}
	b := []float64{-0.01, 0.01, -0.01, 0.01}
	weights := map[string]float64{"A": 0.5, "B": 0.5}

	hedged := ComputeStats(weights, map[string][]float64{"A": a, "B": b})
	assert.InDelta(t, 0.0, hedged.ExpectedVolatility, 1e-8, "perfect hedge cancels out")

	together := ComputeStats(weights, map[string][]float64{"A": a, "B": a})
	assert.InDelta(t, 0.01, together.ExpectedVolatility, 1e-12, "perfectly correlated assets do not diversify")
}

func TestComputeStats_TwoAssetFormula(t *testing.T) {
	a := []float64{0.02, -0.01, 0.03, 0.00, -0.02}
	b := []float64{0.01, 0.00, -0.01, 0.02, 0.01}
	wa, wb := 0.7, 0.3

	stats := ComputeStats(map[string]float64{"A": wa, "B": wb}, map[string][]float64{"A": a, "B": b})

	va := formulas.PopVariance(a)
	vb := formulas.PopVariance(b)
	ma, mb := formulas.Mean(a), formulas.Mean(b)
	cov := 0.0
	for i := range a {
		cov += (a[i] - ma) * (b[i] - mb)
	}
	cov /= float64(len(a))

	expected := math.Sqrt(wa*wa*va + wb*wb*vb + 2*wa*wb*cov)
	assert.InDelta(t, expected, stats.ExpectedVolatility, 1e-12)
	assert.InDelta(t, wa*ma+wb*mb, stats.ExpectedReturn, 1e-15)
}

func TestComputeStats_UnequalLengthsAlignOnMostRecent(t *testing.T) {
	long := []float64{0.5, -0.5, 0.01, -0.01}
	short := []float64{0.02, -0.02}
	weights := map[string]float64{"L": 0.5, "S": 0.5}

	stats := ComputeStats(weights, map[string][]float64{"L": long, "S": short})
	assert.Equal(t, 2, stats.Periods)

	// Only the trailing two observations of L are used for covariance.
	truncated := ComputeStats(weights, map[string][]float64{"L": long[2:], "S": short})
	assert.InDelta(t, truncated.ExpectedVolatility, stats.ExpectedVolatility, 1e-15)

	// Expected return still uses every observation of L.
	assert.InDelta(t, 0.5*formulas.Mean(long)+0.5*formulas.Mean(short), stats.ExpectedReturn, 1e-15)
}

func TestComputeStats_EmptySeriesContributeNothing(t *testing.T) {
	a := []float64{0.01, -0.03, 0.02}
	weights := map[string]float64{"A": 0.6, "NEW": 0.4}

	stats := ComputeStats(weights, map[string][]float64{"A": a, "NEW": {}})
	assert.Equal(t, 3, stats.Periods)
	assert.InDelta(t, 0.6*formulas.PopStdDev(a), stats.ExpectedVolatility, 1e-12)
	assert.InDelta(t, 0.6*formulas.Mean(a), stats.ExpectedReturn, 1e-15)

	missing := ComputeStats(map[string]float64{"X": 1}, map[string][]float64{})
	assert.Equal(t, PortfolioStats{}, missing)
}

func TestComputeStats_NeverNegative(t *testing.T) {
	tiny := []float64{1e-300, -1e-300, 1e-300}
	stats := ComputeStats(map[string]float64{"A": 0.5, "B": 0.5}, map[string][]float64{"A": tiny, "B": tiny})
	assert.GreaterOrEqual(t, stats.ExpectedVolatility, 0.0)
	assert.False(t, math.IsNaN(stats.ExpectedVolatility))
}

func TestVolatilityFromVariance(t *testing.T) {
	assert.Equal(t, 0.0, volatilityFromVariance(-1e-18))
	assert.Equal(t, 0.0, volatilityFromVariance(math.NaN()))
	assert.Equal(t, 0.0, volatilityFromVariance(0))
	assert.InDelta(t, 0.2, volatilityFromVariance(0.04), 1e-15)
}

func TestComputeStats_SingleReturnSeriesDoesNotTruncate(t *testing.T) {
	a := []float64{0.02, -0.01, 0.04}
	weights := map[string]float64{"A": 0.5, "B": 0.5}

	stats := ComputeStats(weights, map[string][]float64{"A": a, "B": {0.05}})
	assert.Equal(t, 3, stats.Periods)
	assert.InDelta(t, 0.5*formulas.PopStdDev(a), stats.ExpectedVolatility, 1e-12)
	assert.Greater(t, stats.ExpectedVolatility, 0.0)
	assert.InDelta(t, 0.5*formulas.Mean(a)+0.5*0.05, stats.ExpectedReturn, 1e-15)

	onlyShort := ComputeStats(map[string]float64{"B": 1}, map[string][]float64{"B": {0.05}})
	assert.Equal(t, PortfolioStats{ExpectedReturn: 0.05}, onlyShort)
}
