package waterheater

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/hive"
	"github.com/urmzd/hive-hotwater/pkg/integration"
	"github.com/urmzd/hive-hotwater/pkg/platform"
	"go.uber.org/mock/gomock"
)

func setupRegistry(t *testing.T, records []hive.DeviceRecord) (*integration.Registry, mocks, *http.Client) {
	t.Helper()
	integ, m := newIntegration(t)
	integ.Hotwater = nil
	integ.Devices = map[string][]hive.DeviceRecord{hive.PlatformWaterHeater: records}

	var bound *http.Client
	integ.NewHotwater = func(hc *http.Client) integration.HotwaterAPI {
		bound = hc
		return m.hotwater
	}

	reg := integration.NewRegistry()
	reg.Add(integ)

	hc := &http.Client{}
	t.Cleanup(func() {
		if integ.Hotwater != nil {
			assert.Same(t, hc, bound, "hot water client must be bound to the host HTTP client")
		}
	})
	return reg, m, hc
}

func TestSetupEntry_AddsEntities(t *testing.T) {
	second := record("SCHEDULE")
	second.HiveID = "def"
	reg, _, hc := setupRegistry(t, []hive.DeviceRecord{record("ON"), second})

	var (
		calls           int
		added           []platform.Entity
		updateBeforeAdd bool
	)
	add := func(_ context.Context, entities []platform.Entity, update bool) error {
		calls++
		added = entities
		updateBeforeAdd = update
		return nil
	}

	require.NoError(t, SetupEntry(context.Background(), reg, "entry-1", hc, add))

	assert.Equal(t, 1, calls)
	assert.True(t, updateBeforeAdd)
	require.Len(t, added, 2)
	assert.Equal(t, "abc-hotwater", added[0].UniqueID())
	assert.Equal(t, "def-hotwater", added[1].UniqueID())

	integ, err := reg.Get("entry-1")
	require.NoError(t, err)
	assert.NotNil(t, integ.Hotwater)
}

func TestSetupEntry_NoDevices(t *testing.T) {
	reg, _, hc := setupRegistry(t, nil)

	called := false
	add := func(context.Context, []platform.Entity, bool) error {
		called = true
		return nil
	}

	require.NoError(t, SetupEntry(context.Background(), reg, "entry-1", hc, add))
	assert.False(t, called)
}

func TestSetupEntry_UnknownEntry(t *testing.T) {
	reg := integration.NewRegistry()
	err := SetupEntry(context.Background(), reg, "missing", http.DefaultClient, nil)
	assert.ErrorIs(t, err, integration.ErrEntryNotFound)
}

func TestSetupEntry_InitialUpdateThroughPlatform(t *testing.T) {
	rec := record("OFF")
	reg, m, hc := setupRegistry(t, []hive.DeviceRecord{rec})

	m.session.EXPECT().UpdateData(gomock.Any(), rec).Return(nil)
	m.hotwater.EXPECT().GetHotwater(gomock.Any(), rec).Return(rec, nil)

	p := platform.New(time.Minute)
	require.NoError(t, SetupEntry(context.Background(), reg, "entry-1", hc, p.AddEntities))

	pe, ok := p.Entity("abc-hotwater")
	require.True(t, ok)
	available, err := pe.(*Entity).Available()
	require.NoError(t, err)
	assert.True(t, available)
}

func TestSetupPlatform_NoOp(t *testing.T) {
	add := func(context.Context, []platform.Entity, bool) error {
		t.Fatal("legacy setup must not add entities")
		return nil
	}
	assert.NoError(t, SetupPlatform(context.Background(), add))
}
