package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Worker pool counters and the state of each scheduled job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	respondOK(c, http.StatusOK, h.jobService.GetStatus(), "")
}

type MaintenanceHandler struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// @Summary Clean Duplicate Profiles
// @Description Merges profiles whose documents only differ in formatting
// @Tags Maintenance
// @Produce json
// @Success 200 {object} services.DuplicateCleanupReport
// @Security BearerAuth
// @Router /maintenance/duplicates [post]
func (h *MaintenanceHandler) CleanupDuplicates(c *gin.Context) {
	report, err := h.maintenanceService.CleanupDuplicateProfiles(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	msg := fmt.Sprintf("%d perfiles fusionados, %d omitidos", len(report.Merged), len(report.Skipped))
	respondOK(c, http.StatusOK, report, msg)
}

// @Summary Clean Orphaned Users
// @Description Deletes identities without a profile older than one hour
// @Tags Maintenance
// @Produce json
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /maintenance/orphans [post]
func (h *MaintenanceHandler) CleanupOrphans(c *gin.Context) {
	deleted, err := h.maintenanceService.CleanupOrphanedUsers(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": deleted}, fmt.Sprintf("%d usuarios huérfanos eliminados", deleted))
}
