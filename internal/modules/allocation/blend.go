package allocation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

const (
	// MinRiskPreference is the most defensive accepted preference.
	MinRiskPreference = 0.1
	// MaxRiskPreference is the most aggressive accepted preference.
	MaxRiskPreference = 0.95
	// DefaultRiskPreference applies when no usable preference was supplied.
	DefaultRiskPreference = 0.6
)

// Allocation is a single symbol's final weight.
type Allocation struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
}

// ClampRiskPreference bounds r to [MinRiskPreference, MaxRiskPreference].
// NaN and infinities fall back to DefaultRiskPreference.
func ClampRiskPreference(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return DefaultRiskPreference
	}
	return math.Min(MaxRiskPreference, math.Max(MinRiskPreference, r))
}

// BlendAllocations mixes the full-universe weights with the defensive-subset weights:
// blended(s) = full(s)*r + defensive(s)*(1-r), missing entries counting as zero, then
// renormalizes over the universe. A zero total leaves the blended values as they are.
// r is used as given; callers clamp it at the request boundary.
func BlendAllocations(full, defensive map[string]float64, riskPreference float64, universe []string) map[string]float64 {
	blended := make(map[string]float64, len(universe))
	values := make([]float64, len(universe))
	for i, s := range universe {
		values[i] = full[s]*riskPreference + defensive[s]*(1-riskPreference)
	}

	sum := floats.Sum(values)
	if sum == 0 {
		sum = 1
	}
	for i, s := range universe {
		blended[s] = values[i] / sum
	}
	return blended
}

// RankAllocations orders weights descending. Equal weights keep universe order.
func RankAllocations(weights map[string]float64, universe []string) []Allocation {
	allocations := make([]Allocation, 0, len(universe))
	for _, s := range universe {
		allocations = append(allocations, Allocation{Symbol: s, Weight: weights[s]})
	}
	sort.SliceStable(allocations, func(i, j int) bool {
		return allocations[i].Weight > allocations[j].Weight
	})
	return allocations
}
