package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/burakzaferozcan/Vaultify/internal/core/domain"
)

const (
	// TraceIDHeader is the HTTP header name for the trace ID.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the context key for the trace ID.
	TraceIDKey = "trace_id"
	// AccountIDKey is the context key for the authenticated account ID.
	AccountIDKey = "account_id"
)

// RequestContext holds request-scoped information.
type RequestContext struct {
	TraceID   string
	AccountID string
	IP        string
	UserAgent string
}

// EnrichContext attaches a trace ID and request metadata to each request.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Set("request_context", &RequestContext{
			TraceID:   traceID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		c.Next()
	}
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(c *gin.Context) string {
	if traceID, exists := c.Get(TraceIDKey); exists {
		if id, ok := traceID.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestContext retrieves the full request context.
func GetRequestContext(c *gin.Context) *RequestContext {
	if ctx, exists := c.Get("request_context"); exists {
		if reqCtx, ok := ctx.(*RequestContext); ok {
			return reqCtx
		}
	}
	return &RequestContext{}
}

// GetRequestMetadata builds the audit metadata recorded alongside
// operations performed in this request.
func GetRequestMetadata(c *gin.Context) *domain.RequestMetadata {
	reqCtx := GetRequestContext(c)
	return &domain.RequestMetadata{
		IPAddress: reqCtx.IP,
		UserAgent: reqCtx.UserAgent,
	}
}
