package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
	"github.com/voxpopuly/voxpopuly-api/internal/storage"
)

type SlateHandler struct {
	slateService *services.SlateService
}

func NewSlateHandler(slateService *services.SlateService) *SlateHandler {
	return &SlateHandler{slateService: slateService}
}

// @Summary List Slates
// @Description Slates of a voting point with members and vote counts
// @Tags Slates
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Success 200 {array} models.SlateResponse
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/slates [get]
func (h *SlateHandler) Index(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	slates, err := h.slateService.ListByVotingPoint(c.Request.Context(), pointID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]models.SlateResponse, 0, len(slates))
	for i := range slates {
		items = append(items, slates[i].ToResponse())
	}
	respondOK(c, http.StatusOK, items, "")
}

// @Summary Get Slate
// @Tags Slates
// @Produce json
// @Param slate_id path string true "Slate ID"
// @Success 200 {object} models.SlateResponse
// @Security BearerAuth
// @Router /slates/{slate_id} [get]
func (h *SlateHandler) Show(c *gin.Context) {
	id, ok := uuidParam(c, "slate_id")
	if !ok {
		return
	}
	slate, err := h.slateService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, slate.ToResponse(), "")
}

// @Summary Create Slate
// @Description Members must be candidates of the same voting point
// @Tags Slates
// @Accept json
// @Produce json
// @Param voting_point_id path string true "Voting point ID"
// @Param request body services.SlateInput true "Slate"
// @Success 201 {object} models.SlateResponse
// @Security BearerAuth
// @Router /voting_points/{voting_point_id}/slates [post]
func (h *SlateHandler) Create(c *gin.Context) {
	pointID, ok := uuidParam(c, "voting_point_id")
	if !ok {
		return
	}
	var in services.SlateInput
	if err := BindNestedOrFlat(c, "slate", &in); err != nil {
		respondBadRequest(c, "datos de la plancha inválidos: "+err.Error())
		return
	}
	in.VotingPointID = pointID

	slate, err := h.slateService.Create(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, slate.ToResponse(), "Plancha creada")
}

// @Summary Update Slate
// @Description Replaces name, description and members
// @Tags Slates
// @Accept json
// @Produce json
// @Param slate_id path string true "Slate ID"
// @Param request body services.SlateInput true "Slate"
// @Success 200 {object} models.SlateResponse
// @Security BearerAuth
// @Router /slates/{slate_id} [put]
func (h *SlateHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "slate_id")
	if !ok {
		return
	}
	var in services.SlateInput
	if err := BindNestedOrFlat(c, "slate", &in); err != nil {
		respondBadRequest(c, "datos de la plancha inválidos: "+err.Error())
		return
	}

	slate, err := h.slateService.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, slate.ToResponse(), "Plancha actualizada")
}

// @Summary Delete Slate
// @Tags Slates
// @Produce json
// @Param slate_id path string true "Slate ID"
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /slates/{slate_id} [delete]
func (h *SlateHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "slate_id")
	if !ok {
		return
	}
	if err := h.slateService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Plancha eliminada")
}

// @Summary Upload Slate Logo
// @Description PNG or JPEG, up to 10MB
// @Tags Slates
// @Accept multipart/form-data
// @Produce json
// @Param slate_id path string true "Slate ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} models.SlateResponse
// @Security BearerAuth
// @Router /slates/{slate_id}/logo [post]
func (h *SlateHandler) UploadLogo(c *gin.Context) {
	id, ok := uuidParam(c, "slate_id")
	if !ok {
		return
	}

	// Get file from form
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		respondBadRequest(c, "El archivo del logo es requerido")
		return
	}
	// Validate size and type before reading the body
	if fileHeader.Size > storage.MaxLogoSize {
		respondBadRequest(c, "El logo no puede superar 10MB")
		return
	}
	if !storage.IsLogoContentType(fileHeader.Header.Get("Content-Type")) {
		respondBadRequest(c, "El logo debe ser PNG o JPEG")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	slate, err := h.slateService.UploadLogo(c.Request.Context(), actorFrom(c), id, file, fileHeader.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, slate.ToResponse(), "Logo actualizado")
}
