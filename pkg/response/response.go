package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// metaKey matches the gin context key used by middleware.WithResponseMeta.
const metaKey = "response_meta"

// Envelope represents the common response contract.
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response merging any metadata collected on the context.
func JSON(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data, Meta: collectMeta(c, meta...)})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error, meta ...map[string]interface{}) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr, Meta: collectMeta(c, meta...)})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

func collectMeta(c *gin.Context, extra ...map[string]interface{}) map[string]interface{} {
	var merged map[string]interface{}
	if value, ok := c.Get(metaKey); ok {
		if typed, ok := value.(map[string]interface{}); ok && len(typed) > 0 {
			merged = make(map[string]interface{}, len(typed))
			for k, v := range typed {
				merged[k] = v
			}
		}
	}
	for _, m := range extra {
		for k, v := range m {
			if merged == nil {
				merged = make(map[string]interface{})
			}
			merged[k] = v
		}
	}
	return merged
}
