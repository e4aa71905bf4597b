package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type ElectionHandler struct {
	electionService *services.ElectionService
}

func NewElectionHandler(electionService *services.ElectionService) *ElectionHandler {
	return &ElectionHandler{electionService: electionService}
}

// @Summary List Elections
// @Description Paginated list of elections
// @Tags Elections
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search query string false "Search by title"
// @Param is_active query bool false "Filter by active flag"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /elections [get]
func (h *ElectionHandler) Index(c *gin.Context) {
	query := listQueryFrom(c)
	query.Filters["is_active"] = c.Query("is_active")

	elections, total, err := h.electionService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.ElectionResponse, 0, len(elections))
	for i := range elections {
		items = append(items, elections[i].ToResponse())
	}
	respondList(c, items, query, total)
}

// @Summary Get Election
// @Tags Elections
// @Produce json
// @Param election_id path string true "Election ID"
// @Success 200 {object} models.ElectionResponse
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /elections/{election_id} [get]
func (h *ElectionHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	election, err := h.electionService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, election.ToResponse(), "")
}

// @Summary Create Election
// @Tags Elections
// @Accept json
// @Produce json
// @Param request body services.ElectionInput true "Election"
// @Success 201 {object} models.ElectionResponse
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /elections [post]
func (h *ElectionHandler) Create(c *gin.Context) {
	var in services.ElectionInput
	if err := BindNestedOrFlat(c, "election", &in); err != nil {
		respondBadRequest(c, "datos de elección inválidos: "+err.Error())
		return
	}

	election, err := h.electionService.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, election.ToResponse(), "Elección creada")
}

// @Summary Update Election
// @Description Only allowed before the start date
// @Tags Elections
// @Accept json
// @Produce json
// @Param election_id path string true "Election ID"
// @Param request body services.ElectionInput true "Election"
// @Success 200 {object} models.ElectionResponse
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /elections/{election_id} [put]
func (h *ElectionHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	var in services.ElectionInput
	if err := BindNestedOrFlat(c, "election", &in); err != nil {
		respondBadRequest(c, "datos de elección inválidos: "+err.Error())
		return
	}

	election, err := h.electionService.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, election.ToResponse(), "Elección actualizada")
}

// @Summary Toggle Election
// @Description Activates or deactivates an election
// @Tags Elections
// @Produce json
// @Param election_id path string true "Election ID"
// @Success 200 {object} models.ElectionResponse
// @Security BearerAuth
// @Router /elections/{election_id}/toggle_active [post]
func (h *ElectionHandler) ToggleActive(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	election, err := h.electionService.ToggleActive(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := "Elección desactivada"
	if election.IsActive {
		msg = "Elección activada"
	}
	respondOK(c, http.StatusOK, election.ToResponse(), msg)
}

// @Summary Delete Election
// @Description Only allowed before the start date
// @Tags Elections
// @Produce json
// @Param election_id path string true "Election ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /elections/{election_id} [delete]
func (h *ElectionHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	if err := h.electionService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Elección eliminada")
}
