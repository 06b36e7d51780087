package allocation

// Strategy turns per-asset volatilities into target weights over a universe.
// The engine only depends on this interface, so the blend heuristic can be replaced
// by a different scheme without touching callers.
type Strategy interface {
	Name() string
	Weights(vols *VolatilityMap, universe []string, riskPreference float64) (map[string]float64, error)
}

// BlendStrategy blends full-universe inverse-volatility weights with inverse-volatility
// weights over the DefensiveSubsetSize lowest-volatility names.
type BlendStrategy struct{}

// Name identifies the strategy in logs and responses.
func (BlendStrategy) Name() string {
	return "inverse_volatility_blend"
}

// Weights implements Strategy. The universe is normalized the same way as the
// volatility map keys, so the returned weights are keyed by upper-case tickers.
func (BlendStrategy) Weights(vols *VolatilityMap, universe []string, riskPreference float64) (map[string]float64, error) {
	universe = NormalizeUniverse(universe)
	if len(universe) == 0 || vols.Len() == 0 {
		return nil, ErrEmptyUniverse
	}

	full, err := InverseVolatilityWeights(vols)
	if err != nil {
		return nil, err
	}

	subset := SelectLowestVolatility(vols, DefensiveSubsetSize(len(universe)))
	defensive, err := InverseVolatilityWeights(subset)
	if err != nil {
		return nil, err
	}

	return BlendAllocations(full, defensive, riskPreference, universe), nil
}
