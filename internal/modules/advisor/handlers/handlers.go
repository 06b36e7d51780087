// Package handlers provides HTTP handlers for the advisor.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aristath/allocator/internal/modules/advisor"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// InterpretRequest is the body of POST /api/advisor/interpret.
type InterpretRequest struct {
	Text string `json:"text" validate:"max=4000"`
}

// Handler handles advisor HTTP requests
type Handler struct {
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a new advisor handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		validate: validator.New(),
		log:      log.With().Str("handler", "advisor").Logger(),
	}
}

// RegisterRoutes registers advisor routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/advisor", func(r chi.Router) {
		r.Post("/interpret", h.HandleInterpret)
	})
}

// HandleInterpret handles POST /api/advisor/interpret
func (h *Handler) HandleInterpret(w http.ResponseWriter, r *http.Request) {
	var req InterpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := advisor.Interpret(req.Text)
	h.log.Debug().
		Float64("risk_preference", result.RiskPreference).
		Int("horizon_years", result.HorizonYears).
		Msg("Interpreted advisor message")

	h.writeJSON(w, http.StatusOK, result)
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
