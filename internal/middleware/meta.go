package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/newsroom-console/internal/models"
)

const (
	responseMetaKey = "response_meta"
	noticesKey      = "notices"
	redirectKey     = "redirect"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
		meta := ensureMeta(c)
		if _, exists := meta["processing_time_ms"]; !exists {
			meta["processing_time_ms"] = time.Since(start).Milliseconds()
		}
	}
}

// SetRedirect tells the browser shell where to navigate next.
func SetRedirect(c *gin.Context, target string) {
	ensureMeta(c)[redirectKey] = target
}

type noticeDrainer interface {
	Drain() []models.Notice
}

// AttachNotices moves the notices emitted so far into the response metadata.
// Call it right before writing the response.
func AttachNotices(c *gin.Context) {
	browser := BrowserFrom(c)
	if browser == nil {
		return
	}
	drainer, ok := browser.Notices.(noticeDrainer)
	if !ok {
		return
	}
	notices := drainer.Drain()
	if len(notices) == 0 {
		return
	}
	meta := ensureMeta(c)
	if existing, ok := meta[noticesKey].([]models.Notice); ok {
		notices = append(existing, notices...)
	}
	meta[noticesKey] = notices
}

// ExtractMeta returns the metadata map stored on the context.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	return nil
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta := ExtractMeta(c); meta != nil {
		return meta
	}
	meta := make(map[string]interface{})
	c.Set(responseMetaKey, meta)
	return meta
}
