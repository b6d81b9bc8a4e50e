package lead

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/lead"
)

// Handler serves the lead pipeline endpoints.
type Handler struct {
	service *lead.Service
}

func NewHandler(service *lead.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Source     string `json:"source"`
	Notes      string `json:"notes"`
	AssignedTo string `json:"assignedTo"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	l, err := h.service.Create(c.Request.Context(), lead.CreateParams{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     req.Source,
		Notes:      req.Notes,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, l)
}

func (h *Handler) Get(c *gin.Context) {
	l, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "lead not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, l)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	filter := lead.ListFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Keyword:    c.Query("keyword"),
	}
	leads, total, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, leads, total, page)
}

type updateRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Notes      *string `json:"notes"`
	AssignedTo *string `json:"assignedTo"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	l, err := h.service.Update(c.Request.Context(), c.Param("id"), lead.UpdateParams{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "lead not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseSuccess(c, l)
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

	l, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, lead.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "lead not found")
		case errors.Is(err, lead.ErrInvalidTransition):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, l)
}

type convertResponse struct {
	Lead     any `json:"lead"`
	Customer any `json:"customer"`
}

func (h *Handler) Convert(c *gin.Context) {
	l, cust, err := h.service.Convert(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lead.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "lead not found")
		case errors.Is(err, lead.ErrAlreadyConverted), errors.Is(err, lead.ErrInvalidTransition):
			common.ResponseError(c, common.CodeConflict, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, convertResponse{Lead: l, Customer: cust})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, lead.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "lead not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}
