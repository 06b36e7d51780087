package allocation

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// Input is everything one allocation run needs.
type Input struct {
	Universe       []string
	RiskPreference float64
	// Histories are keyed by symbol; keys are normalized before lookup.
	Histories map[string][]HistoryPoint
}

// AssetVolatility reports the estimate used for one symbol.
type AssetVolatility struct {
	Symbol       string  `json:"symbol"`
	Volatility   float64 `json:"volatility"`
	Observations int     `json:"observations"`
	// LowConfidence marks the DefaultVolatility placeholder.
	LowConfidence bool `json:"lowConfidence"`
}

// Result is the output of one allocation run.
type Result struct {
	Universe       []string           `json:"universe"`
	RiskPreference float64            `json:"riskPreference"`
	Strategy       string             `json:"strategy"`
	Allocations    []Allocation       `json:"allocations"`
	Weights        map[string]float64 `json:"-"`
	Volatilities   []AssetVolatility  `json:"volatilities"`
	Stats          PortfolioStats     `json:"stats"`
	Rationale      string             `json:"rationale"`
}

// Engine composes the allocation pipeline. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	strategy Strategy
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrategy replaces the default BlendStrategy.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) {
		if s != nil {
			e.strategy = s
		}
	}
}

// NewEngine creates an allocation engine.
func NewEngine(log zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		strategy: BlendStrategy{},
		log:      log.With().Str("component", "allocation_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allocate runs returns → volatility → weighting → statistics for the given universe.
// The risk preference is clamped to [MinRiskPreference, MaxRiskPreference].
func (e *Engine) Allocate(in Input) (*Result, error) {
	universe := NormalizeUniverse(in.Universe)
	if len(universe) == 0 {
		return nil, ErrEmptyUniverse
	}
	risk := ClampRiskPreference(in.RiskPreference)

	histories := make(map[string][]HistoryPoint, len(in.Histories))
	for s, h := range in.Histories {
		histories[NormalizeSymbol(s)] = h
	}

	returns := make(map[string][]float64, len(universe))
	vols := NewVolatilityMap()
	assetVols := make([]AssetVolatility, 0, len(universe))
	for _, s := range universe {
		r := ComputeReturns(histories[s])
		returns[s] = r
		v := EstimateVolatility(r)
		vols.Set(s, v)

		av := AssetVolatility{Symbol: s, Volatility: v, Observations: len(r), LowConfidence: len(r) == 0}
		if av.LowConfidence {
			e.log.Warn().
				Str("symbol", s).
				Int("price_points", len(histories[s])).
				Float64("volatility", v).
				Msg("Insufficient price history, using default volatility")
		}
		assetVols = append(assetVols, av)
	}

	weights, err := e.strategy.Weights(vols, universe, risk)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weights: %w", err)
	}

	stats := ComputeStats(weights, returns)

	e.log.Debug().
		Int("num_symbols", len(universe)).
		Float64("risk_preference", risk).
		Str("strategy", e.strategy.Name()).
		Float64("expected_return", stats.ExpectedReturn).
		Float64("expected_volatility", stats.ExpectedVolatility).
		Int("periods", stats.Periods).
		Msg("Computed allocation")

	return &Result{
		Universe:       universe,
		RiskPreference: risk,
		Strategy:       e.strategy.Name(),
		Allocations:    RankAllocations(weights, universe),
		Weights:        weights,
		Volatilities:   assetVols,
		Stats:          stats,
		Rationale:      BuildRationale(risk, universe),
	}, nil
}

// BuildRationale explains an allocation in plain text, one statement per line.
func BuildRationale(riskPreference float64, universe []string) string {
	return strings.Join([]string{
		fmt.Sprintf("Inverse-volatility core blended with low-vol subset based on risk %d%%.", int(math.Round(riskPreference*100))),
		fmt.Sprintf("Universe: %s.", strings.Join(universe, ", ")),
		"Objective: diversify across uncorrelated assets and downweight volatile names.",
	}, "\n")
}
