package estimate

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/estimate"
)

// Handler serves estimate endpoints.
type Handler struct {
	service *estimate.Service
}

func NewHandler(service *estimate.Service) *Handler {
	return &Handler{service: service}
}

type lineItemDTO struct {
	Description    string `json:"description" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

func toItems(dtos []lineItemDTO) []estimate.LineItem {
	items := make([]estimate.LineItem, len(dtos))
	for i, d := range dtos {
		items[i] = estimate.LineItem{
			Description:    d.Description,
			Quantity:       d.Quantity,
			UnitPriceCents: d.UnitPriceCents,
		}
	}
	return items
}

type createRequest struct {
	CustomerID string        `json:"customerId" binding:"required"`
	LeadID     string        `json:"leadId"`
	Title      string        `json:"title" binding:"required"`
	Items      []lineItemDTO `json:"items"`
	Notes      string        `json:"notes"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	e, err := h.service.Create(c.Request.Context(), estimate.CreateParams{
		CustomerID: req.CustomerID,
		LeadID:     req.LeadID,
		Title:      req.Title,
		Items:      toItems(req.Items),
		Notes:      req.Notes,
	})
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, e)
}

func (h *Handler) Get(c *gin.Context) {
	e, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, estimate.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "estimate not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, e)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	filter := estimate.ListFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Keyword:    c.Query("keyword"),
	}
	estimates, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, estimates, total, page)
}

type updateRequest struct {
	Title *string        `json:"title"`
	Items *[]lineItemDTO `json:"items"`
	Notes *string        `json:"notes"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	params := estimate.UpdateParams{Title: req.Title, Notes: req.Notes}
	if req.Items != nil {
		items := toItems(*req.Items)
		params.Items = &items
	}

	e, err := h.service.Update(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		switch {
		case errors.Is(err, estimate.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "estimate not found")
		case errors.Is(err, estimate.ErrNotEditable):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, e)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	e, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, estimate.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "estimate not found")
		case errors.Is(err, estimate.ErrInvalidTransition):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, e)
}

type convertRequest struct {
	HourlyRateCents int64      `json:"hourlyRateCents"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

type convertResponse struct {
	Estimate any `json:"estimate"`
	Job      any `json:"job"`
}

func (h *Handler) ConvertToJob(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	e, j, err := h.service.ConvertToJob(c.Request.Context(), c.Param("id"), req.HourlyRateCents, req.ScheduledAt)
	if err != nil {
		switch {
		case errors.Is(err, estimate.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "estimate not found")
		case errors.Is(err, estimate.ErrNotApproved), errors.Is(err, estimate.ErrAlreadyConverted):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, convertResponse{Estimate: e, Job: j})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, estimate.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "estimate not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}
