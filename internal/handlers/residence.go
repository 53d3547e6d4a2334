package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/services"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

// ResidenciaHandler provides HTTP handlers for residences and their
// galleries.
type ResidenciaHandler struct {
	residenceService *services.ResidenceService
}

func NewResidenciaHandler(residenceService *services.ResidenceService) *ResidenciaHandler {
	return &ResidenciaHandler{residenceService: residenceService}
}

// ResidenciaRouter registers residence routes. Reads are public; every
// mutation requires an authenticated host, and the service layer enforces
// ownership on top of that.
func ResidenciaRouter(r chi.Router, residenceService *services.ResidenceService, verifier *auth.Verifier) {
	handler := NewResidenciaHandler(residenceService)
	requireHost := func(next http.Handler) http.Handler {
		return auth.RequireAuth(verifier)(auth.RequireRole(types.RoleHost)(next))
	}

	r.Get("/", handler.List)
	r.With(requireHost).Post("/", handler.Create)
	r.Route("/{residenciaID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.With(requireHost).Put("/", handler.Update)
		r.With(requireHost).Delete("/", handler.Deactivate)
		r.With(requireHost).Post("/imagenes", handler.UploadImages)
		r.With(requireHost).Put("/imagenes", handler.ReplaceImages)
		r.With(requireHost).Delete("/imagenes/{imagenID}", handler.DeleteImage)
	})
}

// ResidenciaRequest carries the mutable fields of a residence. Updates are
// full replacements.
type ResidenciaRequest struct {
	Title         string  `json:"titulo"`
	Description   string  `json:"descripcion"`
	Address       string  `json:"direccion"`
	PricePerNight float64 `json:"precioPorNoche"`
	CityID        int     `json:"ciudadSedeId"`
}

// CiudadResponse is the embedded city projection.
type CiudadResponse struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// AnfitrionResponse is the embedded host projection: display name and photo,
// nothing else about the account leaks.
type AnfitrionResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"nombre"`
	PhotoURL string `json:"fotoPerfilUrl"`
}

// ResidenciaResponse is the public detail payload.
type ResidenciaResponse struct {
	ID            int               `json:"id"`
	Title         string            `json:"titulo"`
	Description   string            `json:"descripcion"`
	Address       string            `json:"direccion"`
	PricePerNight float64           `json:"precioPorNoche"`
	City          CiudadResponse    `json:"ciudad"`
	Host          AnfitrionResponse `json:"anfitrion"`
	ImageURLs     []string          `json:"imagenesUrls"`
}

// ImagenesResponse acknowledges a gallery mutation.
type ImagenesResponse struct {
	Message string   `json:"mensaje"`
	URLs    []string `json:"urls"`
}

func toResidenciaResponse(detail services.ResidenceDetail) ResidenciaResponse {
	urls := make([]string, 0, len(detail.Images))
	for _, img := range detail.Images {
		urls = append(urls, img.URL)
	}
	return ResidenciaResponse{
		ID:            detail.Residence.ID,
		Title:         detail.Residence.Title,
		Description:   detail.Residence.Description,
		Address:       detail.Residence.Address,
		PricePerNight: detail.Residence.PricePerNight,
		City: CiudadResponse{
			ID:   detail.City.ID,
			Name: detail.City.Name,
		},
		Host: AnfitrionResponse{
			ID:       detail.Host.ID,
			Name:     detail.Host.DisplayName(),
			PhotoURL: detail.Host.ProfilePhotoURL,
		},
		ImageURLs: urls,
	}
}

func parseResidenciaRequest(r *http.Request) (services.ResidenceInput, error) {
	var req ResidenciaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return services.ResidenceInput{}, errors.New("invalid request")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Address = strings.TrimSpace(req.Address)
	if req.Title == "" || req.Description == "" || req.Address == "" {
		return services.ResidenceInput{}, errors.New("missing required fields")
	}
	if req.PricePerNight <= 0 {
		return services.ResidenceInput{}, errors.New("invalid price")
	}
	if req.CityID < 1 {
		return services.ResidenceInput{}, errors.New("invalid city")
	}

	return services.ResidenceInput{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		PricePerNight: req.PricePerNight,
		CityID:        req.CityID,
	}, nil
}

func (h *ResidenciaHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.residenceService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list residences")
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *ResidenciaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "residenciaID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.residenceService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "residencia no encontrada")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch residence")
		return
	}

	writeJSON(w, http.StatusOK, toResidenciaResponse(detail))
}

// ListOwn returns all residences of the authenticated host, inactive
// included. Mounted at /mis-residencias.
func (h *ResidenciaHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	residences, err := h.residenceService.ListByOwner(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list residences")
		return
	}
	writeJSON(w, http.StatusOK, residences)
}

func (h *ResidenciaHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	input, err := parseResidenciaRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.residenceService.Create(r.Context(), identity.UserID, input)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "invalid city")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create residence")
		return
	}

	writeJSON(w, http.StatusCreated, toResidenciaResponse(detail))
}

func (h *ResidenciaHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "residenciaID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := parseResidenciaRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.residenceService.Update(r.Context(), identity, id, input)
	if err != nil {
		writeResidenceError(w, err, "failed to update residence")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ResidenciaHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseIDParam(r, "residenciaID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.residenceService.Deactivate(r.Context(), identity, id); err != nil {
		writeResidenceError(w, err, "failed to delete residence")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResidenciaHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	identity, id, files, ok := h.parseImageMutation(w, r)
	if !ok {
		return
	}

	attached, err := h.residenceService.AttachImages(r.Context(), identity, id, files)
	if err != nil {
		writeResidenceError(w, err, "failed to upload images")
		return
	}

	writeJSON(w, http.StatusOK, ImagenesResponse{
		Message: "imágenes subidas exitosamente",
		URLs:    imageURLs(attached),
	})
}

func (h *ResidenciaHandler) ReplaceImages(w http.ResponseWriter, r *http.Request) {
	identity, id, files, ok := h.parseImageMutation(w, r)
	if !ok {
		return
	}

	replaced, err := h.residenceService.ReplaceImages(r.Context(), identity, id, files)
	if err != nil {
		writeResidenceError(w, err, "failed to replace images")
		return
	}

	writeJSON(w, http.StatusOK, ImagenesResponse{
		Message: "imágenes actualizadas exitosamente",
		URLs:    imageURLs(replaced),
	})
}

func (h *ResidenciaHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	residenceID, err := parseIDParam(r, "residenciaID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	imageID, err := parseIDParam(r, "imagenID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.residenceService.DetachImage(r.Context(), identity, residenceID, imageID); err != nil {
		if errors.Is(err, services.ErrImageNotInResidence) {
			writeError(w, http.StatusBadRequest, "la imagen no pertenece a la residencia")
			return
		}
		writeResidenceError(w, err, "failed to delete image")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ResidenciaHandler) parseImageMutation(w http.ResponseWriter, r *http.Request) (auth.Identity, int, []services.ImageFile, bool) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return auth.Identity{}, 0, nil, false
	}

	id, err := parseIDParam(r, "residenciaID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return auth.Identity{}, 0, nil, false
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return auth.Identity{}, 0, nil, false
	}
	files, err := parseImageFiles(r.MultipartForm, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return auth.Identity{}, 0, nil, false
	}

	return identity, id, files, true
}

// writeResidenceError maps the shared residence failure modes: a missing or
// soft-deleted row is 404, a foreign one 403, an image-host failure 500.
func writeResidenceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "residencia no encontrada")
	case errors.Is(err, auth.ErrNotOwner):
		writeError(w, http.StatusForbidden, "no tienes permiso para modificar esta residencia")
	case errors.Is(err, services.ErrImageHost):
		writeError(w, http.StatusInternalServerError, "error al procesar imágenes con el proveedor externo")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func imageURLs(images []types.ResidenceImage) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls
}
