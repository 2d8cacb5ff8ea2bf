package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/service"
	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
	"github.com/noah-isme/newsroom-console/pkg/middleware/browsercontext"
	"github.com/noah-isme/newsroom-console/pkg/response"
)

// ContextBrowserKey is the gin context key holding the request's *service.Browser.
const ContextBrowserKey = "browser"

// BrowserOpener opens the browser of a context id.
type BrowserOpener interface {
	Open(ctx context.Context, contextID string) *service.Browser
}

// LoadSession opens the browser of the request's context and restores its
// session. It must run after the browsercontext middleware.
func LoadSession(opener BrowserOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := browsercontext.Value(c)
		if id == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrInternal, "browser context missing"))
			c.Abort()
			return
		}
		c.Set(ContextBrowserKey, opener.Open(c.Request.Context(), id))
		c.Next()
	}
}

// BrowserFrom returns the browser stored by LoadSession, or nil.
func BrowserFrom(c *gin.Context) *service.Browser {
	value, ok := c.Get(ContextBrowserKey)
	if !ok {
		return nil
	}
	browser, _ := value.(*service.Browser)
	return browser
}
