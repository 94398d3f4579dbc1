package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hive-hotwater/pkg/api/types"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/hive"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// abortWithError maps err onto a status code and writes an ErrorResponse.
// fallback names the error code used when err matches no known sentinel.
func abortWithError(c *gin.Context, err error, fallback string) {
	status, code, msg := http.StatusInternalServerError, fallback, err.Error()

	switch {
	case errors.Is(err, device.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "Device not found"
	case errors.Is(err, device.ErrValidation), errors.Is(err, device.ErrUnmappedMode):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, device.ErrTimeout), errors.Is(err, hive.ErrTimeout):
		status, code, msg = http.StatusGatewayTimeout, "timeout", "Request timed out waiting for Hive"
	case errors.Is(err, device.ErrNotConnected), errors.Is(err, hive.ErrUnauthorized):
		status, code = http.StatusServiceUnavailable, "controller_disconnected"
	case errors.Is(err, device.ErrUnsupported):
		status, code = http.StatusBadRequest, "unsupported"
	}

	c.AbortWithStatusJSON(status, types.ErrorResponse{
		Error:     code,
		Message:   msg,
		RequestID: c.GetString(RequestIDKey),
	})
}
