package api

import (
	"errors"
	"net/http"

	"coachapp/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// listEnvelope is the wire shape of every paginated listing.
type listEnvelope struct {
	Success  bool `json:"success"`
	Data     any  `json:"data"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	Pages    int  `json:"pages"`
	Stats    any  `json:"stats,omitempty"`
}

func respondList[T any](c *gin.Context, result *service.ListResult[T]) {
	items := result.Items
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, listEnvelope{
		Success:  true,
		Data:     items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
		Pages:    result.Pages,
		Stats:    result.Stats,
	})
}

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// abortWithError returns the JSON error envelope and aborts the request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "error": message})
}

// respondServiceError maps a service error onto an HTTP status via the
// error taxonomy sentinels.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "internal server error")
	}
}
