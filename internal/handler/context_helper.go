package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/middleware"
	"github.com/noah-isme/newsroom-console/internal/service"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/response"
)

// browserFromContext returns the request's browser or writes an error.
func browserFromContext(c *gin.Context) (*service.Browser, bool) {
	browser := middleware.BrowserFrom(c)
	if browser == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "browser session not loaded"))
		return nil, false
	}
	return browser, true
}

func respond(c *gin.Context, status int, data interface{}) {
	middleware.AttachNotices(c)
	response.JSON(c, status, data)
}

func fail(c *gin.Context, err error) {
	middleware.AttachNotices(c)
	response.Error(c, err)
}
