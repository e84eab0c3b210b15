// internal/server/middleware.go
package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/common/metrics"
	"jobtrail/internal/common/observability"
)

const (
	ctxUserID    = "userID"
	ctxSessionID = "sessionToken"
)

// RequestLogger emits one structured line per request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request handled", map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
			"clientIp":   c.ClientIP(),
		})
	}
}

// Instrument records the Prometheus counters and the OTel request metrics.
func Instrument(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		if obs != nil {
			obs.RecordRequest(c.Request.Context(), route, status)
			obs.RecordRequestDuration(c.Request.Context(), elapsed, route)
		}
	}
}

// RequireSession guards a route group behind session auth.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			s.respond.Write(c, errors.NewAuthenticationError("missing session token"))
			return
		}

		user, err := s.auth.CurrentUser(c.Request.Context(), token)
		if err != nil {
			s.respond.Write(c, err)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxSessionID, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// cookie fallback for browser clients
	if cookie, err := c.Cookie("session"); err == nil {
		return cookie
	}
	return ""
}
