package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"backend/internal/metrics"
	"backend/internal/tenant"
)

// tenantRejectionMessage is deliberately identical for "no identifier" and
// "unknown identifier" so the response does not leak which tenants exist.
const tenantRejectionMessage = "tenant not resolved"

// TenantGuard enforces that every route behind it executes with a verified
// tenant. It takes the raw identifier seeded by RequestContext (id or slug),
// resolves it against the tenant directory and rewrites the RequestContext
// with the canonical tenant id, so downstream consumers never see a slug.
// Missing or unknown identifiers abort the request with 401 before any
// handler or data access runs.
func TenantGuard(resolver tenant.Resolver, logger *zap.Logger) gin.HandlerFunc {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rc, ok := tenant.FromContext(ctx)
		if !ok {
			log.Error("tenant guard without request context middleware", zap.String("path", c.FullPath()))
			reject(c)
			return
		}

		raw := strings.TrimSpace(rc.TenantID())
		if raw == "" {
			reject(c)
			return
		}

		t, err := resolver.Resolve(ctx, raw)
		if err != nil {
			if err != tenant.ErrNotFound {
				log.Warn("tenant resolution failed",
					zap.String("request_id", rc.RequestID()),
					zap.Error(err),
				)
			}
			reject(c)
			return
		}
		if t.Status != tenant.StatusActive {
			reject(c)
			return
		}

		// Canonicalize: all downstream consumers observe the internal id even
		// when the caller supplied the slug.
		tenant.SetTenantID(ctx, t.ID)
		c.Set(GinKeyTenantID, t.ID)

		c.Next()
	}
}

func reject(c *gin.Context) {
	metrics.TenantRejectionsTotal.Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tenantRejectionMessage})
}
