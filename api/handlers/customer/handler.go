package customer

import (
	"errors"

	"github.com/gin-gonic/gin"

	"backend/internal/common"
	"backend/internal/customer"
)

// Handler serves customer and service-address endpoints.
type Handler struct {
	service *customer.Service
}

func NewHandler(service *customer.Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	cust, err := h.service.Create(c.Request.Context(), customer.CreateParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, cust)
}

func (h *Handler) Get(c *gin.Context) {
	cust, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "customer not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, cust)
}

func (h *Handler) List(c *gin.Context) {
	var page common.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	customers, total, err := h.service.List(c.Request.Context(), c.Query("keyword"), page)
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseList(c, customers, total, page)
}

type updateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	cust, err := h.service.Update(c.Request.Context(), c.Param("id"), customer.UpdateParams{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "customer not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseSuccess(c, cust)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "customer not found")
			return
		}
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, nil)
}

type addressRequest struct {
	Label      string `json:"label"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

func (h *Handler) AddAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}

	addr, err := h.service.AddAddress(c.Request.Context(), c.Param("id"), customer.ServiceAddress{
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			common.ResponseError(c, common.CodeNotFound, "customer not found")
			return
		}
		common.ResponseError(c, common.CodeInvalidRequest, err.Error())
		return
	}
	common.ResponseCreated(c, addr)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	addrs, err := h.service.ListAddresses(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseError(c, common.CodeInternalError, err.Error())
		return
	}
	common.ResponseSuccess(c, addrs)
}
