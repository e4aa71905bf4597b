package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type StatisticsHandler struct {
	statisticsSvc *services.StatisticsService
	exportSvc     *services.ExportService
	reportSvc     *services.ReportService
}

func NewStatisticsHandler(statisticsSvc *services.StatisticsService, exportSvc *services.ExportService, reportSvc *services.ReportService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsSvc: statisticsSvc,
		exportSvc:     exportSvc,
		reportSvc:     reportSvc,
	}
}

// @Summary Admin Dashboard
// @Description Election, voting point and turnout counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.AdminDashboard
// @Security BearerAuth
// @Router /dashboard/admin [get]
func (h *StatisticsHandler) AdminDashboard(c *gin.Context) {
	dashboard, err := h.statisticsSvc.AdminDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, dashboard, "")
}

// @Summary Delegate Dashboard
// @Description The caller's voting point with slates and turnout
// @Tags Dashboard
// @Produce json
// @Success 200 {object} models.DelegateDashboard
// @Security BearerAuth
// @Router /dashboard/delegate [get]
func (h *StatisticsHandler) DelegateDashboard(c *gin.Context) {
	dashboard, err := h.statisticsSvc.DelegateDashboard(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, dashboard, "")
}

// @Summary Election Statistics
// @Description Turnout and results per voting point and slate
// @Tags Statistics
// @Produce json
// @Param election_id path string true "Election ID"
// @Success 200 {object} models.ElectionStatistics
// @Security BearerAuth
// @Router /elections/{election_id}/statistics [get]
func (h *StatisticsHandler) Election(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	stats, err := h.statisticsSvc.ElectionStatistics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats, "")
}

// @Summary Export Statistics
// @Description Downloads election statistics as json, csv, xlsx or pdf
// @Tags Statistics
// @Produce octet-stream
// @Param election_id path string true "Election ID"
// @Param format query string false "json, csv, xlsx or pdf" default(json)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /elections/{election_id}/statistics/export [get]
func (h *StatisticsHandler) Export(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}
	file, err := h.exportSvc.Export(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Set headers for file download
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// @Summary Results Certificate
// @Description Printable results certificate, HTML by default or PDF with format=pdf
// @Tags Statistics
// @Produce html
// @Produce application/pdf
// @Param election_id path string true "Election ID"
// @Param format query string false "html or pdf" default(html)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /elections/{election_id}/certificate [get]
func (h *StatisticsHandler) Certificate(c *gin.Context) {
	id, ok := uuidParam(c, "election_id")
	if !ok {
		return
	}

	// HTML for printing from the browser
	if c.Query("format") != "pdf" {
		html, err := h.reportSvc.RenderResultsCertificate(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
		return
	}

	pdf, err := h.reportSvc.GenerateResultsCertificatePDF(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("acta_resultados_%s.pdf", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
