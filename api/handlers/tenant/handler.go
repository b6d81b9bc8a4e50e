package tenant

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/tenant"
)

// Handler serves the tenant directory admin API. These routes are mounted
// outside the tenant guard: they manage tenants, they do not run within one.
type Handler struct {
	service tenant.Service
}

func NewHandler(service tenant.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name" binding:"required"`
	Slug          string `json:"slug" binding:"required"`
	Tier          string `json:"tier"`
	ContactEmail  string `json:"contactEmail"`
	ContactPhone  string `json:"contactPhone"`
	ContactPerson string `json:"contactPerson"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	t, err := h.service.Create(c.Request.Context(), tenant.CreateParams{
		Name:          req.Name,
		Slug:          req.Slug,
		Tier:          req.Tier,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		ContactPerson: req.ContactPerson,
	})
	if err != nil {
		if errors.Is(err, tenant.ErrSlugTaken) {
			common.ResponseError(c, common.CodeConflict, err.Error())
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, t)
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "tenant not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, t)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	tenants, total, err := h.service.List(c.Request.Context(), page.GetPageSize(), page.Offset())
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, tenants, total, page)
}

type updateRequest struct {
	Name         *string `json:"name"`
	Status       *string `json:"status"`
	Tier         *string `json:"tier"`
	ContactEmail *string `json:"contactEmail"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	t, err := h.service.Update(c.Request.Context(), c.Param("id"), tenant.UpdateParams{
		Name:         req.Name,
		Status:       req.Status,
		Tier:         req.Tier,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "tenant not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseSuccess(c, t)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "tenant not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}
