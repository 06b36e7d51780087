package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers history and quote routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/history", h.HandleGetHistory)
	r.Get("/quote", h.HandleGetQuote)
}
