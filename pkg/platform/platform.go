package platform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/device"
)

// Entity is the host's unit of exposed device state.
type Entity interface {
	UniqueID() string
	Name() string
	Update(ctx context.Context) error
}

// AddEntitiesFunc registers entities with the host. With updateBeforeAdd the
// host polls each entity once before exposing it.
type AddEntitiesFunc func(ctx context.Context, entities []Entity, updateBeforeAdd bool) error

// Platform owns the registered entities, polls them on a fixed interval and
// re-polls them when a refresh signal arrives. Every entity call goes through
// one mutex so an entity never sees concurrent update/set cycles.
type Platform struct {
	scanInterval time.Duration

	mu       sync.Mutex
	entities map[string]Entity
	order    []string

	refresh chan string

	subscribers   []chan device.Event
	subscribersMu sync.Mutex
}

// New creates a platform polling every scanInterval.
func New(scanInterval time.Duration) *Platform {
	return &Platform{
		scanInterval: scanInterval,
		entities:     make(map[string]Entity),
		refresh:      make(chan string, 1),
	}
}

// AddEntities implements AddEntitiesFunc. A failed initial update is logged
// and the entity is still added; duplicate unique ids are skipped.
func (p *Platform) AddEntities(ctx context.Context, entities []Entity, updateBeforeAdd bool) error {
	for _, e := range entities {
		id := e.UniqueID()

		p.mu.Lock()
		if _, exists := p.entities[id]; exists {
			p.mu.Unlock()
			log.Error().Str("entity", id).Msg("Entity with this unique id already exists, skipping")
			continue
		}

		var updateErr error
		if updateBeforeAdd {
			updateErr = e.Update(ctx)
		}
		name := e.Name()
		p.entities[id] = e
		p.order = append(p.order, id)
		p.mu.Unlock()

		if updateErr != nil {
			log.Warn().Err(updateErr).Str("entity", id).Msg("Initial entity update failed")
			p.publish(device.EventUpdateFailed, id, name, updateErr)
		}

		log.Info().Str("entity", id).Str("name", name).Msg("Entity added")
		p.publish(device.EventEntityAdded, id, name, nil)
	}
	return nil
}

// Entities returns the registered entities in insertion order.
func (p *Platform) Entities() []Entity {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Entity, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entities[id])
	}
	return out
}

// Entity returns the entity registered under id.
func (p *Platform) Entity(id string) (Entity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entities[id]
	return e, ok
}

// Call runs fn against the entity registered under id while holding the
// entity lock.
func (p *Platform) Call(id string, fn func(Entity) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entities[id]
	if !ok {
		return fmt.Errorf("%w: %s", device.ErrNotFound, id)
	}
	return fn(e)
}

// Send requests a refresh of every entity. Pending requests coalesce; Send
// never blocks.
func (p *Platform) Send(signal string) {
	select {
	case p.refresh <- signal:
	default:
		log.Debug().Str("signal", signal).Msg("Refresh already pending")
	}
}

// UpdateAll polls every entity once. Failures are logged and published, never
// returned: the host owns error reporting for entity updates.
func (p *Platform) UpdateAll(ctx context.Context) {
	for _, e := range p.Entities() {
		if ctx.Err() != nil {
			return
		}

		id := e.UniqueID()

		p.mu.Lock()
		err := e.Update(ctx)
		name := e.Name()
		p.mu.Unlock()

		if err != nil {
			log.Warn().Err(err).Str("entity", id).Msg("Entity update failed")
			p.publish(device.EventUpdateFailed, id, name, err)
			continue
		}
		p.publish(device.EventStateChanged, id, name, nil)
	}
}

// Run polls entities on the scan interval and on refresh signals until ctx is
// cancelled.
func (p *Platform) Run(ctx context.Context) {
	ticker := time.NewTicker(p.scanInterval)
	defer ticker.Stop()

	log.Info().Dur("scan_interval", p.scanInterval).Msg("Platform polling started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Platform polling stopped")
			return
		case <-ticker.C:
			p.UpdateAll(ctx)
		case signal := <-p.refresh:
			log.Debug().Str("signal", signal).Msg("Refresh requested")
			p.UpdateAll(ctx)
		}
	}
}

// publish sends an event to all subscribers without blocking.
func (p *Platform) publish(eventType, id, name string, err error) {
	evt := device.Event{
		Type:      eventType,
		Device:    &device.Device{ID: id, Name: name},
		Timestamp: time.Now(),
	}
	if err != nil {
		evt.Error = err.Error()
	}

	p.subscribersMu.Lock()
	defer p.subscribersMu.Unlock()

	for _, ch := range p.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// --- device.EventSubscriber interface ---

func (p *Platform) Subscribe() chan device.Event {
	ch := make(chan device.Event, 16)
	p.subscribersMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.subscribersMu.Unlock()
	return ch
}

func (p *Platform) Unsubscribe(ch chan device.Event) {
	p.subscribersMu.Lock()
	defer p.subscribersMu.Unlock()

	for i, sub := range p.subscribers {
		if sub == ch {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}
