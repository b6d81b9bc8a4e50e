package timesheet

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/tenant"
	"backend/internal/timesheet"
)

// Handler serves time-tracking endpoints. Clock-in/out operate on the
// authenticated user; listing accepts filters for office views.
type Handler struct {
	service *timesheet.Service
}

func NewHandler(service *timesheet.Service) *Handler {
	return &Handler{service: service}
}

type clockInRequest struct {
	JobID string `json:"jobId" binding:"required"`
	Notes string `json:"notes"`
}

func (h *Handler) ClockIn(c *gin.Context) {
	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	userID, ok := tenant.UserID(c.Request.Context())
	if !ok {
		common.ResponseError(c, common.CodeUnauthorized, "not authenticated")
		return
	}

	e, err := h.service.ClockIn(c.Request.Context(), req.JobID, userID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, timesheet.ErrAlreadyOpen), errors.Is(err, timesheet.ErrJobNotActive):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		}
		return
	}
	common.ResponseCreated(c, e)
}

func (h *Handler) ClockOut(c *gin.Context) {
	e, err := h.service.ClockOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, timesheet.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "time entry not found")
		case errors.Is(err, timesheet.ErrNotOpen):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, e)
}

// Open returns the caller's open entry, if any.
func (h *Handler) Open(c *gin.Context) {
	userID, ok := tenant.UserID(c.Request.Context())
	if !ok {
		common.ResponseError(c, common.CodeUnauthorized, "not authenticated")
		return
	}

	e, err := h.service.OpenEntry(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, timesheet.ErrNotFound) {
			common.ResponseSuccess(c, nil)
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

	filter := timesheet.ListFilter{
		JobID:  c.Query("job_id"),
		UserID: c.Query("user_id"),
	}
	entries, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, entries, total, page)
}

// WeekTotal reports the tenant's closed minutes for the current week.
func (h *Handler) WeekTotal(c *gin.Context) {
	total, err := h.service.MinutesThisWeek(c.Request.Context())
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, gin.H{"minutesThisWeek": total})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, timesheet.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "time entry not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}
