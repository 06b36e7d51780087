// Package handlers provides HTTP handlers for price history and quotes.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/allocator/internal/marketdata"
	"github.com/aristath/allocator/internal/modules/allocation"
	"github.com/aristath/allocator/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	// DefaultSymbol is served when no symbol is given.
	DefaultSymbol = "AAPL"
	// DefaultRange is the chart range used when none is given.
	DefaultRange = "1y"
	// RollingWindow is the number of returns per rolling volatility sample.
	RollingWindow = 20
)

// HistorySource loads histories for an explicit range and latest quotes.
type HistorySource interface {
	FetchHistoryRange(ctx context.Context, symbol, chartRange string) ([]allocation.HistoryPoint, error)
	marketdata.QuoteProvider
}

// RollingPoint is one rolling volatility sample, dated by the last return in its window.
type RollingPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// HistoryResponse is the body returned by GET /api/history.
type HistoryResponse struct {
	Symbol            string                    `json:"symbol"`
	Range             string                    `json:"range"`
	Points            []allocation.HistoryPoint `json:"points"`
	Volatility        float64                   `json:"volatility"`
	RollingVolatility []RollingPoint            `json:"rollingVolatility"`
}

// Handler handles history and quote HTTP requests
type Handler struct {
	source    HistorySource
	maxPoints int
	log       zerolog.Logger
}

// NewHandler creates a new historical data handler.
// maxPoints caps the number of trailing points served; non-positive means no cap.
func NewHandler(source HistorySource, maxPoints int, log zerolog.Logger) *Handler {
	return &Handler{
		source:    source,
		maxPoints: maxPoints,
		log:       log.With().Str("handler", "historical").Logger(),
	}
}

// HandleGetHistory handles GET /api/history?symbol=AAPL&range=1y
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)
	chartRange := strings.TrimSpace(r.URL.Query().Get("range"))
	if chartRange == "" {
		chartRange = DefaultRange
	}

	points, err := h.source.FetchHistoryRange(r.Context(), symbol, chartRange)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Str("range", chartRange).Msg("Failed to get history")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.maxPoints > 0 && len(points) > h.maxPoints {
		points = points[len(points)-h.maxPoints:]
	}
	returns := allocation.ComputeReturns(points)

	h.writeNoStore(w, HistoryResponse{
		Symbol:            symbol,
		Range:             chartRange,
		Points:            points,
		Volatility:        allocation.EstimateVolatility(returns),
		RollingVolatility: RollingVolatility(points, RollingWindow),
	})
}

// HandleGetQuote handles GET /api/quote?symbol=AAPL
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	symbol := symbolParam(r)

	quote, err := h.source.FetchQuote(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get quote")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeNoStore(w, quote)
}

// RollingVolatility computes the population standard deviation of simple returns
// over a trailing window. Each sample is dated with the close that ends its window.
func RollingVolatility(points []allocation.HistoryPoint, window int) []RollingPoint {
	returns := allocation.ComputeReturns(points)
	std := formulas.RollingStdDev(returns, window)
	out := make([]RollingPoint, 0, len(std))
	for i := window - 1; i < len(std); i++ {
		// returns[i] ends at points[i+1]
		out = append(out, RollingPoint{Date: points[i+1].Date, Value: std[i]})
	}
	return out
}

func symbolParam(r *http.Request) string {
	symbol := allocation.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if symbol == "" {
		return DefaultSymbol
	}
	return symbol
}

func (h *Handler) writeNoStore(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, data)
}

// writeJSON writes a JSON response
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
