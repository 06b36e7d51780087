package allocation

import "sort"

// DefensiveSubsetSize is the number of low-volatility names kept for the defensive leg:
// a third of the universe, never fewer than two.
func DefensiveSubsetSize(universeSize int) int {
	k := universeSize / 3
	if k < 2 {
		return 2
	}
	return k
}

// SelectLowestVolatility keeps the k entries with the smallest volatility.
// Ties keep insertion order. The result is ordered by ascending volatility.
// When k covers the whole map every entry is returned.
func SelectLowestVolatility(vols *VolatilityMap, k int) *VolatilityMap {
	out := NewVolatilityMap()
	n := vols.Len()
	if n == 0 || k <= 0 {
		return out
	}

	symbols := vols.Symbols()
	if k >= n {
		for _, s := range symbols {
			out.Set(s, vols.values[s])
		}
		return out
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return vols.values[symbols[order[a]]] < vols.values[symbols[order[b]]]
	})

	for _, idx := range order[:k] {
		s := symbols[idx]
		out.Set(s, vols.values[s])
	}
	return out
}
