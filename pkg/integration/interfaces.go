package integration

//go:generate mockgen -destination=mock_integration.go -package=integration github.com/urmzd/hive-hotwater/pkg/integration HotwaterAPI,SessionAPI,Dispatcher

import (
	"context"

	"github.com/urmzd/hive-hotwater/pkg/hive"
)

// HotwaterAPI is the part of the vendor client entities call for hot water.
type HotwaterAPI interface {
	SetMode(ctx context.Context, rec hive.DeviceRecord, mode string) error
	GetHotwater(ctx context.Context, rec hive.DeviceRecord) (hive.DeviceRecord, error)
}

// SessionAPI is the shared vendor session's generic update step.
type SessionAPI interface {
	UpdateData(ctx context.Context, rec hive.DeviceRecord) error
}

// Dispatcher delivers a named signal to every entity listening for it.
// Send must not block.
type Dispatcher interface {
	Send(signal string)
}
