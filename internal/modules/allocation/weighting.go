package allocation

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// InverseVolatilityWeights assigns each symbol a weight proportional to 1/volatility.
// Volatilities are floored at VolatilityFloor, so the weights are finite and sum to one.
func InverseVolatilityWeights(vols *VolatilityMap) (map[string]float64, error) {
	if vols.Len() == 0 {
		return nil, ErrEmptyUniverse
	}

	symbols := vols.Symbols()
	raw := make([]float64, len(symbols))
	for i, s := range symbols {
		raw[i] = 1.0 / math.Max(VolatilityFloor, vols.values[s])
	}
	sum := floats.Sum(raw)

	weights := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		weights[s] = raw[i] / sum
	}
	return weights, nil
}
