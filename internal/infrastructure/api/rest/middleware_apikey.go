package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smilemakc/mbflow/internal/infrastructure/logger"
)

// APIKeyMiddleware guards the service-to-service API surface with a static
// shared-secret key list, the way the control-plane REST handlers are
// guarded by session auth in the teacher's stack.
type APIKeyMiddleware struct {
	keys   map[string]bool
	logger *logger.Logger
}

func NewAPIKeyMiddleware(keys []string, log *logger.Logger) *APIKeyMiddleware {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = true
		}
	}
	return &APIKeyMiddleware{keys: set, logger: log}
}

func (m *APIKeyMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(m.keys) == 0 {
			m.logger.Warn("service API key list is empty, rejecting all requests",
				"path", c.Request.URL.Path, "request_id", GetRequestID(c))
			apiErr := NewAPIError("UNAUTHORIZED", "service API is not configured", http.StatusUnauthorized)
			c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" || !m.keys[key] {
			apiErr := NewAPIError("UNAUTHORIZED", "missing or invalid API key", http.StatusUnauthorized)
			c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
			return
		}

		c.Next()
	}
}
