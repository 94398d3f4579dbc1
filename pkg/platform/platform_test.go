package platform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hive-hotwater/pkg/device"
)

type fakeEntity struct {
	id  string
	err error

	mu      sync.Mutex
	updates int
}

func (f *fakeEntity) UniqueID() string { return f.id }
func (f *fakeEntity) Name() string     { return "Fake " + f.id }

func (f *fakeEntity) Update(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return f.err
}

func (f *fakeEntity) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

func TestAddEntities_UpdateBeforeAdd(t *testing.T) {
	p := New(time.Minute)
	events := p.Subscribe()
	defer p.Unsubscribe(events)

	e := &fakeEntity{id: "a"}
	require.NoError(t, p.AddEntities(context.Background(), []Entity{e}, true))

	assert.Equal(t, 1, e.count())
	got, ok := p.Entity("a")
	require.True(t, ok)
	assert.Same(t, e, got)

	evt := <-events
	assert.Equal(t, device.EventEntityAdded, evt.Type)
	assert.Equal(t, "a", evt.Device.ID)
}

func TestAddEntities_NoInitialUpdate(t *testing.T) {
	p := New(time.Minute)
	e := &fakeEntity{id: "a"}
	require.NoError(t, p.AddEntities(context.Background(), []Entity{e}, false))
	assert.Equal(t, 0, e.count())
}

func TestAddEntities_FailedUpdateStillAdds(t *testing.T) {
	p := New(time.Minute)
	events := p.Subscribe()
	defer p.Unsubscribe(events)

	e := &fakeEntity{id: "a", err: errors.New("cloud down")}
	require.NoError(t, p.AddEntities(context.Background(), []Entity{e}, true))

	_, ok := p.Entity("a")
	assert.True(t, ok)

	first := <-events
	assert.Equal(t, device.EventUpdateFailed, first.Type)
	assert.Equal(t, "cloud down", first.Error)
	second := <-events
	assert.Equal(t, device.EventEntityAdded, second.Type)
}

func TestAddEntities_DuplicateSkipped(t *testing.T) {
	p := New(time.Minute)
	first := &fakeEntity{id: "a"}
	second := &fakeEntity{id: "a"}

	require.NoError(t, p.AddEntities(context.Background(), []Entity{first, second}, true))

	assert.Len(t, p.Entities(), 1)
	assert.Equal(t, 0, second.count())
}

func TestCall_NotFound(t *testing.T) {
	p := New(time.Minute)
	err := p.Call("missing", func(Entity) error { return nil })
	assert.ErrorIs(t, err, device.ErrNotFound)
}

func TestSend_Coalesces(t *testing.T) {
	p := New(time.Minute)
	p.Send("hive")
	p.Send("hive")
	p.Send("hive")
	assert.Len(t, p.refresh, 1)
}

func TestRun_RefreshSignal(t *testing.T) {
	p := New(time.Hour)
	e := &fakeEntity{id: "a"}
	require.NoError(t, p.AddEntities(context.Background(), []Entity{e}, false))

	events := p.Subscribe()
	defer p.Unsubscribe(events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Send("hive")

	select {
	case evt := <-events:
		assert.Equal(t, device.EventStateChanged, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh signal did not trigger an update")
	}
	assert.Equal(t, 1, e.count())
}

func TestUpdateAll_PublishesFailures(t *testing.T) {
	p := New(time.Minute)
	ok := &fakeEntity{id: "ok"}
	bad := &fakeEntity{id: "bad", err: errors.New("timeout")}
	require.NoError(t, p.AddEntities(context.Background(), []Entity{ok, bad}, false))

	events := p.Subscribe()
	defer p.Unsubscribe(events)

	p.UpdateAll(context.Background())

	assert.Equal(t, device.EventStateChanged, (<-events).Type)
	failed := <-events
	assert.Equal(t, device.EventUpdateFailed, failed.Type)
	assert.Equal(t, "bad", failed.Device.ID)
}
