package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/burakzaferozcan/Vaultify/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied correlation ids so arbitrary
// header payloads never reach the logs.
const maxRequestIDLength = 64

// RequestID propagates a correlation identifier for log lines. A
// client-supplied id is kept unless it is oversized; a fresh UUID is
// issued otherwise.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
