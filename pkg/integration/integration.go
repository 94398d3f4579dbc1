package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/config"
	"github.com/urmzd/hive-hotwater/pkg/hive"
)

// Domain names the integration; it is also the refresh signal name.
const Domain = "hive"

// ErrEntryNotFound indicates no integration is set up for a config entry
var ErrEntryNotFound = errors.New("integration entry not found")

// Integration is the per-account state shared by every entity of one config
// entry. It is owned by the Registry; entities hold a non-owning pointer.
type Integration struct {
	EntryID    string
	Client     *hive.Client
	Session    SessionAPI
	Hotwater   HotwaterAPI
	Devices    map[string][]hive.DeviceRecord
	Dispatcher Dispatcher

	// NewHotwater binds a hot water client to an HTTP session.
	NewHotwater func(httpClient *http.Client) HotwaterAPI
}

// RefreshSystem runs fn and then signals every entity of the domain to
// refresh, whether fn returned an error, succeeded or panicked. fn's error is
// returned unchanged.
func (i *Integration) RefreshSystem(fn func() error) error {
	defer func() {
		if i.Dispatcher != nil {
			i.Dispatcher.Send(Domain)
		}
	}()
	return fn()
}

// Registry holds the integrations set up in this process, keyed by entry id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Integration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Integration)}
}

// Add registers integ under its entry id, replacing any previous one.
func (r *Registry) Add(integ *Integration) {
	r.mu.Lock()
	r.entries[integ.EntryID] = integ
	r.mu.Unlock()
}

// Get returns the integration for entryID.
func (r *Registry) Get(entryID string) (*Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	integ, ok := r.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	return integ, nil
}

// Remove drops the integration for entryID.
func (r *Registry) Remove(entryID string) {
	r.mu.Lock()
	delete(r.entries, entryID)
	r.mu.Unlock()
}

// SetupEntry logs in to the Hive account, discovers its devices and registers
// the resulting integration.
func SetupEntry(
	ctx context.Context,
	reg *Registry,
	entryID string,
	cfg config.HiveConfig,
	httpClient *http.Client,
	dispatcher Dispatcher,
) (*Integration, error) {
	client := hive.NewClient(httpClient, hive.WithBaseURL(cfg.BaseURL))
	session := hive.NewSession(client, cfg.UpdateInterval)

	devices, err := session.Start(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("start hive session: %w", err)
	}

	integ := &Integration{
		EntryID:    entryID,
		Client:     client,
		Session:    session,
		Devices:    devices,
		Dispatcher: dispatcher,
		NewHotwater: func(hc *http.Client) HotwaterAPI {
			return hive.NewHotwater(hc, session)
		},
	}
	reg.Add(integ)

	log.Info().
		Str("entry", entryID).
		Int("water_heaters", len(devices[hive.PlatformWaterHeater])).
		Msg("Hive integration set up")

	return integ, nil
}
