package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/newsroom-console/pkg/response"
)

// RecoveryView is served in place of a view whose handler panicked.
type RecoveryView struct {
	View    string         `json:"view"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Action  RecoveryAction `json:"action"`
}

// RecoveryAction is the single way out of the recovery view.
type RecoveryAction struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Recovery logs panics with their stack and answers with the recovery view.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.JSON(c, http.StatusInternalServerError, RecoveryView{
			View:    "error",
			Title:   "Something went wrong",
			Message: "An unexpected error occurred. Please try refreshing the page.",
			Action:  RecoveryAction{Label: "Go to Homepage", Href: "/"},
		})
		c.Abort()
	})
}
