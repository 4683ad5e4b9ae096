package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lmasson/course-management/internal/application/port"
	"github.com/lmasson/course-management/internal/application/service"
	"github.com/lmasson/course-management/internal/domain/entity"
)

// Response represents a standard JSON response. Warning is set when the
// operation succeeded but some notification emails could not be sent.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}, delivery port.Delivery) {
	resp := Response{Success: true, Data: data}
	if delivery.Degraded() {
		resp.Warning = "the operation succeeded but some notifications could not be delivered"
	}
	c.JSON(status, resp)
}

// respondError maps service errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrPermissionMismatch):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotActivated):
		status = http.StatusForbidden
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, Response{Success: false, Error: message})
}

// pathID parses the numeric :id (or other named) path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}
