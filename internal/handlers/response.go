package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/middleware"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
	"gorm.io/gorm"
)

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination accompanies paginated list payloads
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func respondOK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Response{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, items interface{}, query *repository.ListQuery, total int64) {
	respondOK(c, http.StatusOK, gin.H{
		"items":      items,
		"pagination": Pagination{Page: query.Page, PerPage: query.PerPage, Total: total},
	}, "")
}

func respondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: msg})
}

// respondError maps service errors to HTTP statuses. Unexpected errors are
// logged and reported to Sentry, and the client gets a generic message.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"user_id", middleware.GetUserID(c).String(),
			"error", err,
		)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		_ = c.Error(err)
		msg = "error interno del servidor"
	}

	c.AbortWithStatusJSON(status, Response{Error: msg})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrElectionStarted),
		errors.Is(err, services.ErrProtectedEntity):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrAlreadyVoted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// actorFrom builds the service actor for the authenticated caller
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:    middleware.GetUserID(c),
		Role:      middleware.GetUserRole(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// uuidParam parses a path parameter, answering 400 when it is not a UUID
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "identificador inválido: "+name)
		return uuid.Nil, false
	}
	return id, true
}

// listQueryFrom reads pagination, search and sort parameters
func listQueryFrom(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		query.Page = page
	}
	if perPage, err := strconv.Atoi(c.Query("per_page")); err == nil && perPage > 0 {
		if perPage > 100 {
			perPage = 100
		}
		query.PerPage = perPage
	}
	query.Search = c.Query("search")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_dir", "asc")
	return query
}
