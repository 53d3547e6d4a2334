package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mtyhostal/apiserver/internal/services"
)

// CiudadHandler serves the public city catalog.
type CiudadHandler struct {
	residenceService *services.ResidenceService
}

func NewCiudadHandler(residenceService *services.ResidenceService) *CiudadHandler {
	return &CiudadHandler{residenceService: residenceService}
}

// CiudadRouter registers city routes.
func CiudadRouter(r chi.Router, residenceService *services.ResidenceService) {
	handler := NewCiudadHandler(residenceService)
	r.Get("/", handler.List)
}

func (h *CiudadHandler) List(w http.ResponseWriter, r *http.Request) {
	cities, err := h.residenceService.Cities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cities")
		return
	}
	writeJSON(w, http.StatusOK, cities)
}
