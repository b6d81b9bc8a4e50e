package material

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/material"
)

// Handler serves the material catalog and per-job usage endpoints.
type Handler struct {
	service *material.Service
}

func NewHandler(service *material.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name          string `json:"name" binding:"required"`
	SKU           string `json:"sku"`
	Unit          string `json:"unit"`
	UnitCostCents int64  `json:"unitCostCents"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	m, err := h.service.Create(c.Request.Context(), material.CreateParams{
		Name:          req.Name,
		SKU:           req.SKU,
		Unit:          req.Unit,
		UnitCostCents: req.UnitCostCents,
	})
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, m)
}

func (h *Handler) Get(c *gin.Context) {
	m, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, material.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "material not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, m)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	activeOnly := c.DefaultQuery("active", "true") == "true"
	materials, total, err := h.service.List(c.Request.Context(), c.Query("keyword"), activeOnly, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, materials, total, page)
}

type updateRequest struct {
	Name          *string `json:"name"`
	SKU           *string `json:"sku"`
	Unit          *string `json:"unit"`
	UnitCostCents *int64  `json:"unitCostCents"`
	Active        *bool   `json:"active"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	m, err := h.service.Update(c.Request.Context(), c.Param("id"), material.UpdateParams{
		Name:          req.Name,
		SKU:           req.SKU,
		Unit:          req.Unit,
		UnitCostCents: req.UnitCostCents,
		Active:        req.Active,
	})
	if err != nil {
		if errors.Is(err, material.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "material not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseSuccess(c, m)
}

type usageRequest struct {
	MaterialID string `json:"materialId" binding:"required"`
	Quantity   int64  `json:"quantity" binding:"required"`
}

// RecordUsage logs catalog items against the job in the path.
func (h *Handler) RecordUsage(c *gin.Context) {
	var req usageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	jm, err := h.service.RecordUsage(c.Request.Context(), c.Param("id"), req.MaterialID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, material.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "material not found")
		case errors.Is(err, material.ErrInactive):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		}
		return
	}
	common.ResponseCreated(c, jm)
}

func (h *Handler) ListUsage(c *gin.Context) {
	usage, err := h.service.ListUsage(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, usage)
}

func (h *Handler) RemoveUsage(c *gin.Context) {
	if err := h.service.RemoveUsage(c.Request.Context(), c.Param("usageId")); err != nil {
		if errors.Is(err, material.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "usage entry not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}
