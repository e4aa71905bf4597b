package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type CandidateHandler struct {
	candidateService *services.CandidateService
}

func NewCandidateHandler(candidateService *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

// @Summary List Candidates
// @Tags Candidates
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Success 200 {array} models.CandidateResponse
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/candidates [get]
func (h *CandidateHandler) Index(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	candidates, err := h.candidateService.ListByVotingPoint(c.Request.Context(), pointID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.CandidateResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, candidates[i].ToResponse())
	}
	respondOK(c, http.StatusOK, items, "")
}

// @Summary Create Candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param request body services.CandidateInput true "Candidate"
// @Success 201 {object} models.CandidateResponse
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	var in services.CandidateInput
	if err := BindNestedOrFlat(c, "candidate", &in); err != nil {
		respondBadRequest(c, "datos del candidato inválidos: "+err.Error())
		return
	}
	in.VotingPointID = pointID

	candidate, err := h.candidateService.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, candidate.ToResponse(), "Candidato creado")
}

// @Summary Update Candidate
// @Description The blank vote candidate cannot be renamed
// @Tags Candidates
// @Accept json
// @Produce json
// @Param candidate_id path string true "Candidate ID"
// @Param request body services.CandidateInput true "Candidate"
// @Success 200 {object} models.CandidateResponse
// @Security BearerAuth
// @Router /candidates/{candidate_id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "candidate_id")
	if !ok {
		return
	}
	var in services.CandidateInput
	if err := BindNestedOrFlat(c, "candidate", &in); err != nil {
		respondBadRequest(c, "datos del candidato inválidos: "+err.Error())
		return
	}

	candidate, err := h.candidateService.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, candidate.ToResponse(), "Candidato actualizado")
}

// @Summary Delete Candidate
// @Tags Candidates
// @Produce json
// @Param candidate_id path string true "Candidate ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /candidates/{candidate_id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "candidate_id")
	if !ok {
		return
	}
	if err := h.candidateService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Candidato eliminado")
}
