package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetUserID returns the identity of the caller, if one was attached to the
// request context upstream (for example by a gateway sitting in front of
// this service). No component in this module sets it, so it always reports
// "no identity" — workflow ownership attribution degrades gracefully rather
// than failing closed.
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetUserIDAsUUID is GetUserID parsed as a UUID.
func GetUserIDAsUUID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}
