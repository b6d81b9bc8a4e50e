package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseSuccess writes a 200 envelope around data.
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// ResponseCreated writes a 201 envelope around data.
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// ResponseList writes a paginated list envelope.
func ResponseList(c *gin.Context, items any, total int64, req PaginationRequest) {
	pageSize := req.GetPageSize()
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data: ListResponse{
			Items: items,
			Pagination: PaginationMeta{
				Page:       req.GetPage(),
				PageSize:   pageSize,
				Total:      total,
				TotalPages: totalPages,
			},
		},
	})
}

// ResponseError maps a business code to an HTTP status and writes the error
// envelope.
func ResponseError(c *gin.Context, code int, message string) {
	httpStatus := http.StatusInternalServerError
	switch code {
	case CodeInvalidRequest:
		httpStatus = http.StatusBadRequest
	case CodeUnauthorized:
		httpStatus = http.StatusUnauthorized
	case CodeForbidden:
		httpStatus = http.StatusForbidden
	case CodeNotFound:
		httpStatus = http.StatusNotFound
	case CodeConflict:
		httpStatus = http.StatusConflict
	}
	c.JSON(httpStatus, APIResponse{Success: false, Error: message})
}
