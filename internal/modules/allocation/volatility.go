package allocation

import (
	"math"

	"github.com/aristath/allocator/pkg/formulas"
)

const (
	// DefaultVolatility is the placeholder for assets with fewer than two prices.
	// It is not derived from data and should be treated as low confidence.
	DefaultVolatility = 0.2
	// VolatilityFloor keeps inverse-volatility weights finite.
	VolatilityFloor = 1e-6
)

// EstimateVolatility returns the population standard deviation of a return series,
// floored at VolatilityFloor. An empty series yields DefaultVolatility.
func EstimateVolatility(returns []float64) float64 {
	if len(returns) == 0 {
		return DefaultVolatility
	}
	return math.Max(VolatilityFloor, formulas.PopStdDev(returns))
}

// VolatilityMap maps symbols to volatilities and remembers insertion order.
// The order drives tie-breaking in SelectLowestVolatility and the summation order
// in InverseVolatilityWeights, so results do not depend on Go map iteration.
type VolatilityMap struct {
	symbols []string
	values  map[string]float64
}

// NewVolatilityMap creates an empty map.
func NewVolatilityMap() *VolatilityMap {
	return &VolatilityMap{values: make(map[string]float64)}
}

// VolatilityMapOf builds a map from parallel symbol and volatility slices.
func VolatilityMapOf(symbols []string, vols []float64) *VolatilityMap {
	m := NewVolatilityMap()
	for i, s := range symbols {
		if i < len(vols) {
			m.Set(s, vols[i])
		}
	}
	return m
}

// Set stores a volatility under the normalized symbol.
// Re-setting an existing symbol keeps its original position.
func (m *VolatilityMap) Set(symbol string, vol float64) {
	sym := NormalizeSymbol(symbol)
	if _, ok := m.values[sym]; !ok {
		m.symbols = append(m.symbols, sym)
	}
	m.values[sym] = vol
}

// Get returns the volatility for a symbol.
func (m *VolatilityMap) Get(symbol string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m.values[NormalizeSymbol(symbol)]
	return v, ok
}

// Len returns the number of symbols.
func (m *VolatilityMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.symbols)
}

// Symbols returns the symbols in insertion order.
func (m *VolatilityMap) Symbols() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.symbols))
	copy(out, m.symbols)
	return out
}

// ToMap returns an unordered copy.
func (m *VolatilityMap) ToMap() map[string]float64 {
	out := make(map[string]float64, m.Len())
	if m == nil {
		return out
	}
	for _, s := range m.symbols {
		out[s] = m.values[s]
	}
	return out
}
