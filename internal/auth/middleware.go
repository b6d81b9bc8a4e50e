package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/tenant"
)

// Middleware validates the bearer token and attaches the verified user id and
// roles to the RequestContext. This is the second permitted RequestContext
// mutation after the tenant guard's canonicalization.
//
// The token's tenant claim must match the tenant the guard resolved for this
// request: a token issued under one tenant is worthless under any other, no
// matter which X-Tenant-ID the caller sends.
func Middleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := jwtService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		currentTenant, _ := tenant.TenantID(c.Request.Context())
		if claims.TenantID == "" || claims.TenantID != currentTenant {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		tenant.SetUser(c.Request.Context(), claims.UserID, claims.Roles)
		c.Set("user_id", claims.UserID)

		c.Next()
	}
}

// RequireRole gates a route group on one of the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := tenant.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		held := rc.Roles()
		for _, want := range roles {
			for _, have := range held {
				if strings.EqualFold(want, have) {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// ExtractBearer returns the token portion of an Authorization header, or "".
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
