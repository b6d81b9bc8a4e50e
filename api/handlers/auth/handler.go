package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/auth"
	"backend/internal/common"
	"backend/internal/tenant"
	"backend/internal/user"
)

// Handler serves login and token management. Routes live behind the tenant
// guard but in front of the auth middleware: callers prove their tenant with
// the X-Tenant-ID header and their identity with credentials.
type Handler struct {
	users *user.Service
	jwt   *auth.JWTService
}

func NewHandler(users *user.Service, jwt *auth.JWTService) *Handler {
	return &Handler{users: users, jwt: jwt}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			common.ResponseError(c, common.CodeUnauthorized, "invalid credentials")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}

	tenantID, err := tenant.RequireTenantID(ctx)
	if err != nil {
		common.ResponseError(c, common.CodeUnauthorized, "tenant not resolved")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, tenantID, []string{u.Role})
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}

	common.ResponseSuccess(c, loginResponse{Token: token, User: u})
}

// Logout revokes the presented token.
func (h *Handler) Logout(c *gin.Context) {
	token := auth.ExtractBearer(c.GetHeader("Authorization"))
	if token == "" {
		common.ResponseError(c, common.CodeInvalidRequest, "missing bearer token")
		return
	}
	if err := h.jwt.RevokeToken(c.Request.Context(), token); err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}

// Me returns the authenticated user's account.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := tenant.UserID(c.Request.Context())
	if !ok {
		common.ResponseError(c, common.CodeUnauthorized, "not authenticated")
		return
	}
	u, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		common.ResponseError(c, common.CodeNotFound, "user not found")
		return
	}
	common.ResponseSuccess(c, u)
}
