package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/auth"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/domain"
	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Staff login
// @Description Exchanges a staff tax identifier and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	res, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "log in")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type meResponse struct {
	PersonID uint                `json:"personId,omitempty"`
	Name     string              `json:"name"`
	Profile  domain.StaffProfile `json:"profile"`
	AuthType auth.AuthType       `json:"authType"`
}

// Me godoc
// @Summary Current caller
// @Tags Auth
// @Produce json
// @Success 200 {object} meResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, meResponse{
		PersonID: userCtx.PersonID,
		Name:     userCtx.Name,
		Profile:  userCtx.Profile,
		AuthType: userCtx.AuthType,
	})
}
