// Package allocation implements the risk-blended inverse-volatility allocation engine.
//
// Price histories are turned into simple returns, each asset gets a population
// volatility estimate, and the final weights blend a full-universe inverse-volatility
// allocation with a defensive allocation over the lowest-volatility names. Portfolio
// statistics account for covariance between assets.
//
// Everything in this package is a pure function over its inputs; the Engine type only
// composes them and carries a logger.
package allocation

import (
	"strings"

	"github.com/aristath/allocator/pkg/formulas"
)

// HistoryPoint is a single closing price observation.
// Sequences are ordered ascending by date with no duplicate dates.
type HistoryPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// ComputeReturns converts a price history into simple periodic returns.
// The result has one fewer element than the history and is empty for fewer than two points.
func ComputeReturns(history []HistoryPoint) []float64 {
	if len(history) < 2 {
		return []float64{}
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Close
	}
	return formulas.SimpleReturns(closes)
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeUniverse normalizes every symbol, drops blanks and removes duplicates.
// The first occurrence keeps its position.
func NormalizeUniverse(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	universe := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sym := NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		universe = append(universe, sym)
	}
	return universe
}
