package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type VoterHandler struct {
	voterService  *services.VoterService
	reportService *services.ReportService
}

func NewVoterHandler(voterService *services.VoterService, reportService *services.ReportService) *VoterHandler {
	return &VoterHandler{voterService: voterService, reportService: reportService}
}

// @Summary List Voters
// @Description Voters of a voting point. Delegates only see their own point.
// @Tags Voters
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param search query string false "Name or document"
// @Param has_voted query bool false "Filter by voting status"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/voters [get]
func (h *VoterHandler) Index(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	query := listQueryFrom(c)
	query.Filters["has_voted"] = c.Query("has_voted")

	voters, total, err := h.voterService.ListByVotingPoint(c.Request.Context(), actorFrom(c), pointID, query)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.VoterResponse, 0, len(voters))
	for i := range voters {
		items = append(items, voters[i].ToResponse())
	}
	respondList(c, items, query, total)
}

type AssignVoterRequest struct {
	ProfileID uuid.UUID `json:"profile_id" binding:"required"`
}

// @Summary Assign Voter
// @Description Links an existing voter profile to a voting point
// @Tags Voters
// @Accept json
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param request body AssignVoterRequest true "Profile"
// @Success 201 {object} models.VoterResponse
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/voters [post]
func (h *VoterHandler) Assign(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	var req AssignVoterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "profile_id es requerido")
		return
	}

	voter, err := h.voterService.Assign(c.Request.Context(), actorFrom(c), pointID, req.ProfileID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, voter.ToResponse(), "Votante asignado")
}

// @Summary Remove Voter
// @Description Removes a voter link that has not voted
// @Tags Voters
// @Produce json
// @Param voter_id path string true "Voter ID"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Security BearerAuth
// @Router /voters/{voter_id} [delete]
func (h *VoterHandler) Remove(c *gin.Context) {
	id, ok := uuidParam(c, "voter_id")
	if !ok {
		return
	}
	if err := h.voterService.Remove(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Votante eliminado")
}

type ImportVotersRequest struct {
	Voters []services.ImportRow `json:"voters" binding:"required"`
}

// @Summary Import Voters
// @Description Bulk import as JSON {"voters": [...]} or a CSV file in the "file" field
// @Tags Voters
// @Accept json,mpfd
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param request body ImportVotersRequest false "Rows"
// @Param file formData file false "CSV with full_name, document, email"
// @Success 200 {object} services.ImportResult
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/voters/import [post]
func (h *VoterHandler) Import(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}

	// Rows come from a CSV upload or a JSON body
	var rows []services.ImportRow
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondBadRequest(c, "El archivo CSV es requerido")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()

		rows, err = services.ParseVoterCSV(file)
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		var req ImportVotersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Se requiere la lista de votantes")
			return
		}
		rows = req.Voters
	}

	result, err := h.voterService.Import(c.Request.Context(), actorFrom(c), pointID, rows)
	if err != nil {
		respondError(c, err)
		return
	}

	// Row errors are part of the result, not a failure of the request
	msg := fmt.Sprintf("%d creados, %d existentes, %d con error", result.Summary.Created, result.Summary.Skipped, result.Summary.Failed)
	respondOK(c, http.StatusOK, result, msg)
}

// @Summary Export Voters CSV
// @Description Voter list of a voting point with voting status
// @Tags Voters
// @Produce text/csv
// @Param voting_point_id path string true "Voting point ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/voters/export [get]
func (h *VoterHandler) ExportCSV(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	buf, err := h.reportService.GenerateVotersCSV(c.Request.Context(), actorFrom(c), pointID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set headers for file download
	filename := fmt.Sprintf("votantes_%s_%s.csv", pointID.String()[:8], time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
