package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/mtyhostal/apiserver/internal/auth"
	"github.com/mtyhostal/apiserver/internal/services"
	"github.com/mtyhostal/apiserver/internal/store"
	"github.com/mtyhostal/apiserver/types"
)

const minPasswordLength = 8

// UsuarioHandler provides registration, login, and profile endpoints.
type UsuarioHandler struct {
	userService *services.UserService
	issuer      *auth.Issuer

	// defaultPhotoURL is assigned to new accounts, injected from config.
	defaultPhotoURL string
}

func NewUsuarioHandler(userService *services.UserService, issuer *auth.Issuer, defaultPhotoURL string) *UsuarioHandler {
	return &UsuarioHandler{
		userService:     userService,
		issuer:          issuer,
		defaultPhotoURL: defaultPhotoURL,
	}
}

// UsuarioRouter registers account routes on the given router.
func UsuarioRouter(r chi.Router, userService *services.UserService, issuer *auth.Issuer, verifier *auth.Verifier, defaultPhotoURL string) {
	handler := NewUsuarioHandler(userService, issuer, defaultPhotoURL)
	requireAuth := auth.RequireAuth(verifier)

	r.Post("/registro", handler.Register)
	r.Post("/login", handler.Login)
	r.With(requireAuth).Get("/perfil", handler.Profile)
	r.With(requireAuth).Put("/foto-perfil", handler.UpdateProfilePhoto)
}

// RegisterRequest carries the registration payload. Role stays a raw string
// here so that an omitted field is distinguishable from a valid role; the
// handler parses it and rejects absent or unknown values.
type RegisterRequest struct {
	FirstName       string `json:"nombre"`
	PaternalSurname string `json:"apellidoPaterno"`
	MaternalSurname string `json:"apellidoMaterno"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Role            string `json:"rol"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"usuario"`
}

// Register creates a new account. The duplicate-email conflict is reported
// directly; see DESIGN.md for the enumeration trade-off.
func (h *UsuarioHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.PaternalSurname = strings.TrimSpace(req.PaternalSurname)
	req.MaternalSurname = strings.TrimSpace(req.MaternalSurname)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.PaternalSurname == "" || req.MaternalSurname == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}
	role, err := types.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		FirstName:       req.FirstName,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Email:           req.Email,
		Role:            role,
		PasswordHash:    hashed,
		ProfilePhotoURL: h.defaultPhotoURL,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "el correo electrónico ya está en uso")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// validatePassword enforces the registration password policy: minimum length
// plus at least one upper-case letter, one lower-case letter, one digit, and
// one special character.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return errors.New("password must mix upper and lower case letters, a digit, and a special character")
	}
	return nil
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password produce the same response, deliberately.
func (h *UsuarioHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "credenciales inválidas")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "credenciales inválidas")
		return
	}

	token, err := h.issuer.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Profile returns the authenticated account.
func (h *UsuarioHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfilePhoto replaces the caller's own photo. The subject comes from
// the verified identity; there is no way to address another account.
func (h *UsuarioHandler) UpdateProfilePhoto(w http.ResponseWriter, r *http.Request) {
	identity, err := auth.IdentityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files, err := parseImageFiles(r.MultipartForm, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(files) != 1 {
		writeError(w, http.StatusBadRequest, "exactly one file is required")
		return
	}

	upload, err := h.userService.ChangeProfilePhoto(r.Context(), identity.UserID, files[0].Filename, files[0].Data, files[0].ContentType)
	if err != nil {
		if errors.Is(err, services.ErrImageHost) {
			writeError(w, http.StatusInternalServerError, "failed to upload image")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update profile photo")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": upload.URL})
}
