package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/tenant"
)

// HTTP headers consumed and produced by the request-context layer.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderTenantID  = "X-Tenant-ID"
	HeaderUserID    = "X-User-ID"
)

// Gin context keys mirroring the RequestContext for handlers that work with
// *gin.Context directly.
const (
	GinKeyRequestID = "request_id"
	GinKeyTenantID  = "tenant_id"
	GinKeyUserID    = "user_id"
)

// RequestContext seeds a tenant.RequestContext from the inbound headers before
// any other handler runs, and echoes the request id on the response. The
// tenant value attached here is still the raw header value; resolution and
// enforcement happen in TenantGuard, so a missing header is only a debug-level
// event at this layer.
func RequestContext(logger *zap.Logger) gin.HandlerFunc {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		rawTenant := c.GetHeader(HeaderTenantID)
		rawUser := c.GetHeader(HeaderUserID)
		if rawTenant == "" {
			log.Debug("request without tenant header",
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
			)
		}

		rc := tenant.NewRequestContext(requestID, rawTenant, rawUser)

		c.Set(GinKeyRequestID, requestID)
		c.Set(GinKeyTenantID, rawTenant)
		c.Set(GinKeyUserID, rawUser)

		c.Header(HeaderRequestID, requestID)

		ctx := tenant.WithRequestContext(c.Request.Context(), rc)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID returns the request id established for this request, or "".
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(GinKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
