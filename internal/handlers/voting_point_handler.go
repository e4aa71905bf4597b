package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type VotingPointHandler struct {
	votingPointService *services.VotingPointService
}

func NewVotingPointHandler(votingPointService *services.VotingPointService) *VotingPointHandler {
	return &VotingPointHandler{votingPointService: votingPointService}
}

// @Summary List Voting Points
// @Description Voting points of an election with delegate and voter counts
// @Tags VotingPoints
// @Produce json
// @Param election_id path string true "Election ID"
// @Success 200 {array} models.VotingPointResponse
// @Security BearerAuth
// @Router /elections/{election_id}/voting_points [get]
func (h *VotingPointHandler) Index(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	points, err := h.votingPointService.ListByElection(c.Request.Context(), electionID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.VotingPointResponse, 0, len(points))
	for i := range points {
		items = append(items, points[i].ToResponse())
	}
	respondOK(c, http.StatusOK, items, "")
}

// @Summary Get Voting Point
// @Description Delegates may only read their own voting point
// @Tags VotingPoints
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Success 200 {object} models.VotingPointResponse
// @Failure 403 {object} Response
// @Security BearerAuth
// @Router /voting_points/{voting_point_id} [get]
func (h *VotingPointHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	point, err := h.votingPointService.FindForActor(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, point.ToResponse(), "")
}

// @Summary Create Voting Point
// @Description Creates a voting point with its blank vote slate
// @Tags VotingPoints
// @Accept json
// @Produce json
// @Param election_id path string true "Election ID"
// @Param request body services.VotingPointInput true "Voting point"
// @Success 201 {object} models.VotingPointResponse
// @Failure 400 {object} Response
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /elections/{election_id}/voting_points [post]
func (h *VotingPointHandler) Create(c *gin.Context) {
	electionID, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	var in services.VotingPointInput
	if err := BindNestedOrFlat(c, "voting_point", &in); err != nil {
		respondBadRequest(c, "datos del punto de votación inválidos: "+err.Error())
		return
	}
	in.ElectionID = electionID

	point, err := h.votingPointService.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, point.ToResponse(), "Punto de votación creado")
}

// @Summary Update Voting Point
// @Tags VotingPoints
// @Accept json
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param request body services.VotingPointInput true "Voting point"
// @Success 200 {object} models.VotingPointResponse
// @Security BearerAuth
// @Router /voting_points/{voting_point_id} [put]
func (h *VotingPointHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	var in services.VotingPointInput
	if err := BindNestedOrFlat(c, "voting_point", &in); err != nil {
		respondBadRequest(c, "datos del punto de votación inválidos: "+err.Error())
		return
	}

	point, err := h.votingPointService.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, point.ToResponse(), "Punto de votación actualizado")
}

// @Summary Delete Voting Point
// @Tags VotingPoints
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /voting_points/{voting_point_id} [delete]
func (h *VotingPointHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	if err := h.votingPointService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Punto de votación eliminado")
}

// @Summary Available Delegates
// @Description Delegates not assigned to any voting point
// @Tags VotingPoints
// @Produce json
// @Success 200 {array} models.ProfileResponse
// @Security BearerAuth
// @Router /delegates/available [get]
func (h *VotingPointHandler) AvailableDelegates(c *gin.Context) {
	profiles, err := h.votingPointService.AvailableDelegates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, profiles[i].ToResponse())
	}
	respondOK(c, http.StatusOK, items, "")
}
