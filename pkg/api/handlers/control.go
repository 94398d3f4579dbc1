package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hive-hotwater/pkg/api/types"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/device/schema"
)

// ControlHandler handles device state control endpoints
type ControlHandler struct {
	controller device.Controller
	validator  *schema.Validator
}

// NewControlHandler creates a new control handler
func NewControlHandler(controller device.Controller, validator *schema.Validator) *ControlHandler {
	return &ControlHandler{controller: controller, validator: validator}
}

// GetState handles GET /devices/:id/state
// @Summary      Get device state
// @Description  Returns the operation mode, availability and capabilities of a water heater
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Unique id or display name"
// @Success      200  {object}  types.StateResponse
// @Failure      400  {object}  types.ErrorResponse  "Hive reported an unknown mode"
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      500  {object}  types.ErrorResponse  "Device error"
// @Router       /devices/{id}/state [get]
func (h *ControlHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err, "controller_error")
		return
	}

	state, err := h.controller.GetDeviceState(ctx, d.ID)
	if err != nil {
		abortWithError(c, err, "device_error")
		return
	}

	c.JSON(http.StatusOK, types.StateResponse{
		Device:    d.Name,
		State:     state,
		Timestamp: time.Now(),
	})
}

// SetState handles POST /devices/:id/state
// @Summary      Set operation mode
// @Description  Switches a water heater between eco (scheduled), on and off. The body is validated against the device's state schema.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Unique id or display name"
// @Param        request  body      types.SetOperationModeRequest  true  "Mode to set"
// @Success      200      {object}  types.StateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "Device not found"
// @Failure      503      {object}  types.ErrorResponse  "Hive session rejected"
// @Failure      500      {object}  types.ErrorResponse  "Device error"
// @Router       /devices/{id}/state [post]
func (h *ControlHandler) SetState(c *gin.Context) {
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:     "invalid_request",
			Message:   "Invalid request body",
			RequestID: c.GetString(RequestIDKey),
		})
		return
	}

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err, "controller_error")
		return
	}

	if err := h.validator.Validate(d.StateSchema, req); err != nil {
		abortWithError(c, err, "validation_error")
		return
	}

	state, err := h.controller.SetDeviceState(ctx, d.ID, req)
	if err != nil {
		abortWithError(c, err, "device_error")
		return
	}

	c.JSON(http.StatusOK, types.StateResponse{
		Device:    d.Name,
		State:     state,
		Timestamp: time.Now(),
	})
}
