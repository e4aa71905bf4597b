package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Newest first, filterable by action, entity type and user
// @Tags Audits
// @Produce json
// @Param action query string false "Action, e.g. vote.cast"
// @Param entity_type query string false "Entity type, e.g. election"
// @Param user_id query string false "Acting user"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	query.Filters["action"] = c.Query("action")
	query.Filters["entity_type"] = c.Query("entity_type")
	query.Filters["user_id"] = c.Query("user_id")

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, logs, query, total)
}
