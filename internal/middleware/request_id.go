package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/task-service/internal/constants"
)

// RequestID tags each request with a correlation id, reusing the caller's X-Request-ID when present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request's correlation id, or "-" when none was assigned
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(constants.ContextKeyRequestID); id != "" {
		return id
	}
	return "-"
}
