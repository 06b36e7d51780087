// Package advisor turns a free-text description of an investor into a risk
// preference and horizon using fixed keyword rules.
package advisor

import (
	"fmt"
	"math"
	"strings"
)

// Risk preferences assigned by keyword.
const (
	AggressiveRisk   = 0.85
	ConservativeRisk = 0.35
	NeutralRisk      = 0.6
)

// StrategyNote is always the last line of the reply.
const StrategyNote = "Strategy: core index funds with satellite growth and duration-balanced bonds"

// Interpretation is the outcome of reading one message.
type Interpretation struct {
	RiskPreference float64  `json:"riskPreference"`
	HorizonYears   int      `json:"horizonYears"`
	Notes          []string `json:"notes"`
	Reply          string   `json:"reply"`
}

// Interpret reads risk tolerance and horizon from text. Matching is case-insensitive
// substring search; "aggressive" takes precedence over "conservative" and "retire",
// and "short" over "medium".
func Interpret(text string) Interpretation {
	lower := strings.ToLower(text)

	risk := NeutralRisk
	switch {
	case strings.Contains(lower, "aggressive"):
		risk = AggressiveRisk
	case strings.Contains(lower, "conservative"), strings.Contains(lower, "retire"):
		risk = ConservativeRisk
	}

	horizon := 10
	switch {
	case strings.Contains(lower, "short"):
		horizon = 1
	case strings.Contains(lower, "medium"):
		horizon = 5
	}

	notes := []string{
		fmt.Sprintf("Interpreted risk tolerance: %d%%", int(math.Round(risk*100))),
		fmt.Sprintf("Investment horizon: ~%d years", horizon),
		StrategyNote,
	}

	return Interpretation{
		RiskPreference: risk,
		HorizonYears:   horizon,
		Notes:          notes,
		Reply:          strings.Join(notes, "\n"),
	}
}
