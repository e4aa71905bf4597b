package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type DelegateHandler struct {
	delegateService *services.DelegateService
}

func NewDelegateHandler(delegateService *services.DelegateService) *DelegateHandler {
	return &DelegateHandler{delegateService: delegateService}
}

// @Summary List Delegates
// @Description Delegate profiles with their assigned voting point
// @Tags Delegates
// @Produce json
// @Param search query string false "Name or document"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /delegates [get]
func (h *DelegateHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	delegates, total, err := h.delegateService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, delegates, query, total)
}

// @Summary Create Delegate
// @Description Creates the delegate account. An existing delegate with the same document is returned.
// @Tags Delegates
// @Accept json
// @Produce json
// @Param request body services.DelegateInput true "Delegate"
// @Success 201 {object} models.ProfileResponse
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /delegates [post]
func (h *DelegateHandler) Create(c *gin.Context) {
	var in services.DelegateInput
	if err := BindNestedOrFlat(c, "delegate", &in); err != nil {
		respondBadRequest(c, "datos del delegado inválidos: "+err.Error())
		return
	}

	profile, err := h.delegateService.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, profile.ToResponse(), "Delegado creado")
}

// @Summary Delete Delegate
// @Description Releases the delegate's voting point and deletes the account
// @Tags Delegates
// @Produce json
// @Param delegate_id path string true "Delegate profile ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /delegates/{delegate_id} [delete]
func (h *DelegateHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "delegate_id")
	if !ok {
		return
	}
	if err := h.delegateService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Delegado eliminado")
}
