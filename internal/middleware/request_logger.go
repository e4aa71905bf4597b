package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// quietPaths are not logged on success
var quietPaths = map[string]bool{
	"/api/v1/health": true,
}

// RequestLogger logs every request with its route, status and caller.
// Query strings are left out because download links carry the JWT there.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if quietPaths[path] && status < 400 {
			return
		}

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Request.UserAgent()),
		}

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			attrs = append(attrs, slog.String("error", errorMessage))
		}

		if userID := GetUserID(c); userID != uuid.Nil {
			attrs = append(attrs, slog.String("user_id", userID.String()), slog.String("role", GetUserRole(c)))
		}

		msg := "Incoming request"
		switch {
		case status >= 500:
			logger.Log.Error(msg, attrs...)
		case status >= 400:
			logger.Log.Warn(msg, attrs...)
		default:
			logger.Log.Info(msg, attrs...)
		}
	}
}
