package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/services"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

const dateLayout = "2006-01-02"

// ReservacionHandler provides booking endpoints for guests.
type ReservacionHandler struct {
	reservationService *services.ReservationService
}

func NewReservacionHandler(reservationService *services.ReservationService) *ReservacionHandler {
	return &ReservacionHandler{reservationService: reservationService}
}

// ReservacionRouter registers booking routes. All of them require an
// authenticated guest.
func ReservacionRouter(r chi.Router, reservationService *services.ReservationService, verifier *auth.Verifier) {
	handler := NewReservacionHandler(reservationService)
	requireGuest := func(next http.Handler) http.Handler {
		return auth.RequireAuth(verifier)(auth.RequireRole(types.RoleGuest)(next))
	}

	r.With(requireGuest).Post("/", handler.Create)
	r.With(requireGuest).Post("/{reservacionID}/cancelar", handler.Cancel)
}

type ReservacionRequest struct {
	ResidenceID int    `json:"residenciaId"`
	StartDate   string `json:"fechaInicio"`
	EndDate     string `json:"fechaFin"`
}

func (h *ReservacionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ReservacionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ResidenceID < 1 {
		writeError(w, http.StatusBadRequest, "invalid residence id")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	reservation, err := h.reservationService.Create(r.Context(), identity.UserID, req.ResidenceID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDates):
			writeError(w, http.StatusBadRequest, "invalid reservation dates")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "residencia no encontrada")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create reservation")
		}
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

// ListOwn returns the authenticated guest's bookings. Mounted at
// /mis-reservaciones.
func (h *ReservacionHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reservations, err := h.reservationService.ListByGuest(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

func (h *ReservacionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "reservacionID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reservationService.Cancel(r.Context(), identity, id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "reservación no encontrada")
		case errors.Is(err, auth.ErrNotOwner):
			writeError(w, http.StatusForbidden, "no tienes permiso para cancelar esta reservación")
		case errors.Is(err, services.ErrReservationSettled):
			writeError(w, http.StatusConflict, "la reservación ya no puede cancelarse")
		default:
			writeError(w, http.StatusInternalServerError, "failed to cancel reservation")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
