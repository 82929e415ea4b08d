package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/core/service"
)

type Response struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
	Data    any    `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// errorStatus maps service errors onto HTTP statuses. The bool reports
// whether the error text is safe to show to the client.
func errorStatus(err error) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password", false
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate request", false
	case errors.Is(err, service.ErrShuttingDown):
		return http.StatusServiceUnavailable, "service is shutting down", false
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusGone, "sold out", false
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "", true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "", true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "", true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out", false
	}
	return http.StatusInternalServerError, "internal error", false
}

// fail writes err as a Fail envelope. Unexpected errors are logged and only
// described to the client when debug output is on.
func (h *HTTPHandler) fail(c *gin.Context, action string, err error) {
	status, message, public := errorStatus(err)
	if public {
		message = err.Error()
	}

	entry := h.log.WithError(err).WithField("path", c.FullPath())
	if status >= http.StatusInternalServerError {
		entry.Errorf("Failed to %s", action)
		if h.debug {
			message += ": " + err.Error()
		}
	} else {
		entry.Warnf("Failed to %s", action)
	}
	ErrorResponse(c, status, message)
}

func (h *HTTPHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Warnf("Failed to bind JSON for %s: %v", c.FullPath(), err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func idParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid id format: "+raw)
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}
