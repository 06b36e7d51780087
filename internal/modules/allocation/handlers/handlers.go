// Package handlers provides HTTP handlers for portfolio allocation.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/allocator/internal/marketdata"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OptimizeRequest is the body of POST /api/optimize.
// Both fields stay raw so that values of the wrong type fall back to the defaults
// instead of failing.
type OptimizeRequest struct {
	Symbols json.RawMessage `json:"symbols"`
	Risk    json.RawMessage `json:"risk"`
}

// symbolsRule bounds the parsed symbol list.
const symbolsRule = "max=100,dive,max=32"

// OptimizeResponse is the body returned by POST /api/optimize.
type OptimizeResponse struct {
	ID                 string                       `json:"id"`
	Allocations        []allocation.Allocation      `json:"allocations"`
	ExpectedReturn     float64                      `json:"expectedReturn"`
	ExpectedVolatility float64                      `json:"expectedVolatility"`
	Rationale          string                       `json:"rationale"`
	RiskPreference     float64                      `json:"riskPreference"`
	Strategy           string                       `json:"strategy"`
	Volatilities       []allocation.AssetVolatility `json:"volatilities"`
}

// Handler handles allocation HTTP requests
type Handler struct {
	engine          *allocation.Engine
	provider        marketdata.HistoryProvider
	defaultUniverse []string
	fetchTimeout    time.Duration
	validate        *validator.Validate
	log             zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(
	engine *allocation.Engine,
	provider marketdata.HistoryProvider,
	defaultUniverse []string,
	fetchTimeout time.Duration,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		engine:          engine,
		provider:        provider,
		defaultUniverse: allocation.NormalizeUniverse(defaultUniverse),
		fetchTimeout:    fetchTimeout,
		validate:        validator.New(),
		log:             log.With().Str("handler", "allocation").Logger(),
	}
}

// HandleOptimize fetches histories for the requested universe and returns the blended allocation.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	symbols := ParseSymbols(req.Symbols)
	if err := h.validate.Var(symbols, symbolsRule); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	universe := allocation.NormalizeUniverse(symbols)
	if len(universe) == 0 {
		universe = h.defaultUniverse
	}
	risk := ParseRisk(req.Risk)

	ctx := r.Context()
	if h.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.fetchTimeout)
		defer cancel()
	}

	histories, err := marketdata.FetchHistories(ctx, h.provider, universe)
	if err != nil {
		h.log.Error().Err(err).Strs("symbols", universe).Msg("Failed to fetch price histories")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	result, err := h.engine.Allocate(allocation.Input{
		Universe:       universe,
		RiskPreference: risk,
		Histories:      histories,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, allocation.ErrEmptyUniverse) {
			status = http.StatusBadRequest
		}
		h.log.Error().Err(err).Msg("Allocation failed")
		h.writeError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, OptimizeResponse{
		ID:                 uuid.New().String(),
		Allocations:        result.Allocations,
		ExpectedReturn:     result.Stats.ExpectedReturn,
		ExpectedVolatility: result.Stats.ExpectedVolatility,
		Rationale:          result.Rationale,
		RiskPreference:     result.RiskPreference,
		Strategy:           result.Strategy,
		Volatilities:       result.Volatilities,
	})
}

// ParseSymbols reads the requested tickers from raw JSON. Anything other than an
// array of strings yields nil, which selects the default universe.
func ParseSymbols(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var symbols []string
	if err := json.Unmarshal(raw, &symbols); err != nil {
		return nil
	}
	return symbols
}

// ParseRisk reads a risk preference from raw JSON. Numbers are clamped to the
// allowed range; anything else (missing, null, strings, objects) yields the default.
func ParseRisk(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return allocation.DefaultRiskPreference
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return allocation.DefaultRiskPreference
	}
	n, ok := v.(float64)
	if !ok {
		return allocation.DefaultRiskPreference
	}
	return allocation.ClampRiskPreference(n)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
