package billing

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/billing"
	"backend/internal/common"
)

// Handler serves invoice endpoints.
type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

type generateRequest struct {
	JobID string `json:"jobId" binding:"required"`
}

func (h *Handler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	inv, err := h.service.Generate(c.Request.Context(), req.JobID)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrJobNotCompleted), errors.Is(err, billing.ErrAlreadyInvoiced):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		}
		return
	}
	common.ResponseCreated(c, inv)
}

func (h *Handler) Get(c *gin.Context) {
	inv, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "invoice not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, inv)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	filter := billing.ListFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
	}
	invoices, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, invoices, total, page)
}

func (h *Handler) Issue(c *gin.Context) {
	inv, err := h.service.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "invoice not found")
		case errors.Is(err, billing.ErrNotDraft):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, inv)
}

func (h *Handler) MarkPaid(c *gin.Context) {
	inv, err := h.service.MarkPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "invoice not found")
		case errors.Is(err, billing.ErrNotIssued):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, inv)
}

func (h *Handler) Void(c *gin.Context) {
	inv, err := h.service.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "invoice not found")
			return
		}
		common.ResponseError(c, common.CodeConflict, err.Error())
		return
	}
	common.ResponseSuccess(c, inv)
}

// UnpaidTotal feeds the dashboard's receivables number.
func (h *Handler) UnpaidTotal(c *gin.Context) {
	total, err := h.service.UnpaidTotal(c.Request.Context())
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, gin.H{"unpaidTotalCents": total})
}
