package handler

import (
	"encoding/json"
	"net/http"

	"miniblog/internal/api/middleware"
	"miniblog/internal/app/service"
	"miniblog/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService  *service.AuthService
	authenticate func(http.Handler) http.Handler
	verbose      bool
}

func NewAuthHandler(authService *service.AuthService, verbose bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		authenticate: middleware.Authenticator(authService),
		verbose:      verbose,
	}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(protected chi.Router) {
		protected.Use(h.authenticate)
		protected.Get("/profile", h.profile)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithDomainError(w, err, h.verbose)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, common.ErrUnauthorized.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
