package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/hive-hotwater/pkg/api/types"
	"github.com/urmzd/hive-hotwater/pkg/device"
)

// DevicesHandler handles device listing endpoints
type DevicesHandler struct {
	controller device.Controller
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(controller device.Controller) *DevicesHandler {
	return &DevicesHandler{controller: controller}
}

func (h *DevicesHandler) withState(ctx context.Context, d device.Device) types.DeviceWithState {
	dws := types.DeviceWithState{
		ID:           d.ID,
		Name:         d.Name,
		Type:         d.Type,
		Protocol:     d.Protocol,
		Model:        d.Model,
		Manufacturer: d.Manufacturer,
		StateSchema:  d.StateSchema,
	}
	state, err := h.controller.GetDeviceState(ctx, d.ID)
	if err != nil {
		dws.StateError = err.Error()
		return dws
	}
	dws.State = state
	return dws
}

// ListDevices handles GET /devices
// @Summary      List water heaters
// @Description  Returns every Hive water heater with its current state
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	ctx := c.Request.Context()

	devices, err := h.controller.ListDevices(ctx)
	if err != nil {
		abortWithError(c, err, "controller_error")
		return
	}

	result := make([]types.DeviceWithState, 0, len(devices))
	for _, d := range devices {
		result = append(result, h.withState(ctx, d))
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: result,
		Count:   len(result),
	})
}

// GetDevice handles GET /devices/:id
// @Summary      Get device details
// @Description  Returns a water heater by unique id or display name
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Unique id (<hive_id>-hotwater) or display name"
// @Success      200  {object}  types.DeviceResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		abortWithError(c, err, "controller_error")
		return
	}

	c.JSON(http.StatusOK, types.DeviceResponse{Device: h.withState(ctx, *d)})
}
