package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/internal/models"
)

// Audit writes one structured audit line after a successful mutating request.
// The acting user is read after the handler ran, so login is attributed to
// the user it signed in. resourceParam names the path parameter identifying
// the resource, if any.
func Audit(logger *zap.Logger, action, resource, resourceParam string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		entry := models.AuditEntry{
			Action:    action,
			Resource:  resource,
			Status:    c.Writer.Status(),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if resourceParam != "" {
			entry.ResourceID = c.Param(resourceParam)
		}
		if browser := BrowserFrom(c); browser != nil {
			entry.ContextID = browser.ID
			if user := browser.Session.State().User; user != nil {
				entry.UserID = user.ID
			}
		}

		logger.Info("audit",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.String("resource_id", entry.ResourceID),
			zap.String("user_id", entry.UserID),
			zap.String("context_id", entry.ContextID),
			zap.Int("status", entry.Status),
			zap.String("ip", entry.IPAddress),
			zap.String("user_agent", entry.UserAgent),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}
