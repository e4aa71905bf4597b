package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary List Users
// @Description Paginated list of profiles
// @Tags Users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by name, document or email"
// @Param role query string false "admin, delegate or voter"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	query.Filters["role"] = c.Query("role")

	profiles, total, err := h.userService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profiles[i].ToResponse())
	}
	respondList(c, items, query, total)
}

// @Summary Get User
// @Tags Users
// @Produce json
// @Param user_id path string true "Profile ID"
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /users/{user_id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	profile, err := h.userService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile.ToResponse(), "")
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// @Summary Change Password
// @Description Changes the caller's own password
// @Tags Users
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Passwords"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Security BearerAuth
// @Router /users/me/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "La contraseña actual y una nueva de al menos 8 caracteres son requeridas")
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), actorFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Contraseña actualizada")
}

// @Summary Reset Voter PIN
// @Description Issues a new login PIN for a voter. The PIN is only shown in this response.
// @Tags Users
// @Produce json
// @Param user_id path string true "Profile ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /users/{user_id}/reset_pin [post]
func (h *UserHandler) ResetPIN(c *gin.Context) {
	id, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}
	pin, err := h.userService.ResetPIN(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"profile_id": id, "pin": pin}, "PIN restablecido")
}
