package job

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/job"
)

// Handler serves job endpoints including the dashboard stats.
type Handler struct {
	service *job.Service
}

func NewHandler(service *job.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	CustomerID      string     `json:"customerId" binding:"required"`
	AddressID       string     `json:"addressId"`
	Title           string     `json:"title" binding:"required"`
	Description     string     `json:"description"`
	AssignedTo      string     `json:"assignedTo"`
	HourlyRateCents int64      `json:"hourlyRateCents"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	j, err := h.service.Create(c.Request.Context(), job.CreateParams{
		CustomerID:      req.CustomerID,
		AddressID:       req.AddressID,
		Title:           req.Title,
		Description:     req.Description,
		AssignedTo:      req.AssignedTo,
		HourlyRateCents: req.HourlyRateCents,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, j)
}

func (h *Handler) Get(c *gin.Context) {
	j, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "job not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, j)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	filter := job.ListFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		AssignedTo: c.Query("assigned_to"),
		Keyword:    c.Query("keyword"),
	}
	jobs, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, jobs, total, page)
}

type updateRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	AddressID       *string    `json:"addressId"`
	HourlyRateCents *int64     `json:"hourlyRateCents"`
	ScheduledAt     *time.Time `json:"scheduledAt"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	j, err := h.service.Update(c.Request.Context(), c.Param("id"), job.UpdateParams{
		Title:           req.Title,
		Description:     req.Description,
		AddressID:       req.AddressID,
		HourlyRateCents: req.HourlyRateCents,
		ScheduledAt:     req.ScheduledAt,
	})
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "job not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseSuccess(c, j)
}

type assignRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	j, err := h.service.Assign(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "job not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, j)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) Transition(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	j, err := h.service.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "job not found")
		case errors.Is(err, job.ErrInvalidTransition):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, j)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, stats)
}
