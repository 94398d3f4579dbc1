package device

import (
	"context"
	"errors"
	"testing"
)

func TestNullController_Limited(t *testing.T) {
	c := NewNullController()
	ctx := context.Background()

	devices, err := c.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("expected no devices, got %d", len(devices))
	}

	if _, err := c.GetDevice(ctx, "any"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.SetDeviceState(ctx, "any", map[string]any{"operation_mode": "on"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if c.IsConnected() {
		t.Error("null controller must report disconnected")
	}
}
