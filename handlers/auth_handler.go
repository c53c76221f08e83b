package handlers

import (
	"net/http"

	"github.com/Dosada05/pokernow/middleware"
	"github.com/Dosada05/pokernow/models"
	"github.com/Dosada05/pokernow/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Mock login
// @Tags auth
// @Description Finds or creates a player for the provider and email and issues a session token. A matching staffPin grants the admin role.
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Login"
// @Success 200 {object} services.LoginResult
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Wrong staff PIN"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if !readValidJSON(w, r, &input) {
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Me godoc
// @Summary Current player
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := requireSession(w, r)
	if !ok {
		return
	}

	player, err := h.authService.Me(r.Context(), session)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player, "session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func requireSession(w http.ResponseWriter, r *http.Request) (models.Session, bool) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
	}
	return session, ok
}
