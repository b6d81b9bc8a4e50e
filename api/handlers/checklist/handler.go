package checklist

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend/internal/checklist"
	"backend/internal/common"
)

// Handler serves checklist template and job checklist endpoints.
type Handler struct {
	service *checklist.Service
}

func NewHandler(service *checklist.Service) *Handler {
	return &Handler{service: service}
}

type templateRequest struct {
	Name  string   `json:"name" binding:"required"`
	Items []string `json:"items" binding:"required"`
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	t, err := h.service.CreateTemplate(c.Request.Context(), req.Name, req.Items)
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, t)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	templates, total, err := h.service.ListTemplates(c.Request.Context(), page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, templates, total, page)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	if err := h.service.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, checklist.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "template not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}

type attachRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

// Attach instantiates a template onto the job in the path.
func (h *Handler) Attach(c *gin.Context) {
	var req attachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	cl, err := h.service.AttachToJob(c.Request.Context(), c.Param("id"), req.TemplateID)
	if err != nil {
		if errors.Is(err, checklist.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "template not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseCreated(c, cl)
}

// checklistView pairs a checklist with its derived progress.
type checklistView struct {
	Checklist any                `json:"checklist"`
	Progress  checklist.Progress `json:"progress"`
}

func (h *Handler) ListForJob(c *gin.Context) {
	lists, err := h.service.ListForJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}

	views := make([]checklistView, 0, len(lists))
	for _, cl := range lists {
		p, err := h.service.ProgressOf(cl)
		if err != nil {
			common.ResponseError(c, common.CodeInternalError, err.Error())
			return
		}
		views = append(views, checklistView{Checklist: cl, Progress: p})
	}
	common.ResponseSuccess(c, views)
}

func (h *Handler) ToggleItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, "invalid item index")
		return
	}

	cl, err := h.service.ToggleItem(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		switch {
		case errors.Is(err, checklist.ErrNotFound):
			common.ResponseError(c, common.CodeNotFound, "checklist not found")
		case errors.Is(err, checklist.ErrItemOutOfRange):
			common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		default:
			common.ResponseError(c, common.CodeInternalError, err.Error())
		}
		return
	}
	common.ResponseSuccess(c, cl)
}
