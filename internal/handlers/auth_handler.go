package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/middleware"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "voxpopuly-api",
		"version": "1.0.0",
	})
}

type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
}

func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// LoginRequest accepts an email (admins, delegates) or an identity
// document (voters) as identifier
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Document   string `json:"document"`
	Password   string `json:"password" binding:"required"`
}

func (r *LoginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Document} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// @Summary Login
// @Description Authenticates a user by email or document
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 401 {object} Response
// @Failure 429 {object} Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.identifier() == "" {
		respondBadRequest(c, "Usuario y contraseña son requeridos")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.identifier(), req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// The request carries no token yet; audit as the new session
	actor := actorFrom(c)
	actor.UserID = result.Profile.ID
	actor.Role = result.Profile.Role
	h.auditService.Log(c.Request.Context(), actor, models.AuditActionLogin, "profile", &result.Profile.ID, nil)

	respondOK(c, http.StatusOK, result, "Sesión iniciada")
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary Refresh Token
// @Description Exchanges a refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} services.LoginResult
// @Failure 401 {object} Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Refresh token es requerido")
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result, "")
}

// @Summary Logout
// @Description Invalidates a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh Token"
// @Success 200 {object} Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Refresh token es requerido")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Sesión cerrada exitosamente")
}

// @Summary Current profile
// @Description Returns the profile of the authenticated user
// @Tags Auth
// @Produce json
// @Success 200 {object} models.ProfileResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authService.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile.ToResponse(), "")
}
