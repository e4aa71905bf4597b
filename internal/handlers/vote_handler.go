package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type VoteHandler struct {
	voteService       *services.VoteService
	statisticsService *services.StatisticsService
}

func NewVoteHandler(voteService *services.VoteService, statisticsService *services.StatisticsService) *VoteHandler {
	return &VoteHandler{voteService: voteService, statisticsService: statisticsService}
}

type CastVoteRequest struct {
	SlateID uuid.UUID `json:"slate_id" binding:"required"`
}

// @Summary Voter Ballot
// @Description Voting point, election status and slates of the caller
// @Tags Vote
// @Produce json
// @Success 200 {object} models.VoterBallot
// @Security BearerAuth
// @Router /vote/ballot [get]
func (h *VoteHandler) Ballot(c *gin.Context) {
	ballot, err := h.statisticsService.VoterBallot(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, ballot, "")
}

// @Summary Cast Vote
// @Description Records the caller's single vote
// @Tags Vote
// @Accept json
// @Produce json
// @Param request body CastVoteRequest true "Slate"
// @Success 201 {object} services.CastVoteResult
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 409 {object} Response
// @Failure 429 {object} Response
// @Security BearerAuth
// @Router /vote [post]
func (h *VoteHandler) Cast(c *gin.Context) {
	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "slate_id es requerido")
		return
	}

	result, err := h.voteService.Cast(c.Request.Context(), actorFrom(c), req.SlateID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result, "Voto registrado exitosamente")
}
