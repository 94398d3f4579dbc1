package hive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultUpdateInterval is the minimum age of the node snapshot before
// UpdateData fetches it again.
const DefaultUpdateInterval = 2 * time.Minute

// Session keeps the account's node snapshot shared by all device wrappers.
type Session struct {
	client   *Client
	interval time.Duration
	now      func() time.Time

	fetchMu sync.Mutex

	mu         sync.RWMutex
	username   string
	password   string
	nodes      map[string]Node
	lastUpdate time.Time
	stale      bool
}

// NewSession creates a session over client. A non-positive interval selects
// DefaultUpdateInterval.
func NewSession(client *Client, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	return &Session{
		client:   client,
		interval: interval,
		now:      time.Now,
		nodes:    make(map[string]Node),
	}
}

// Client returns the API client the session fetches through.
func (s *Session) Client() *Client {
	return s.client
}

// Start logs in, loads the node snapshot and returns discovered records
// grouped by platform. The credentials are kept to log in again when the
// token expires.
func (s *Session) Start(ctx context.Context, username, password string) (map[string][]DeviceRecord, error) {
	s.mu.Lock()
	s.username, s.password = username, password
	s.mu.Unlock()

	if err := s.client.Login(ctx, username, password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.fetch(ctx); err != nil {
		return nil, err
	}
	return s.Devices(), nil
}

// UpdateData refreshes the node snapshot when it is older than the update
// interval or has been invalidated. rec identifies the caller for logging.
func (s *Session) UpdateData(ctx context.Context, rec DeviceRecord) error {
	s.mu.RLock()
	due := s.stale || s.now().Sub(s.lastUpdate) >= s.interval
	s.mu.RUnlock()

	if !due {
		return nil
	}

	log.Debug().Str("hive_id", rec.HiveID).Msg("Refreshing Hive node snapshot")
	return s.fetch(ctx)
}

// Invalidate forces the next UpdateData to fetch.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Node returns the snapshot entry for id.
func (s *Session) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

// Devices builds records for every supported node in the snapshot.
func (s *Session) Devices() map[string][]DeviceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string][]DeviceRecord)
	for _, id := range ids {
		n := s.nodes[id]
		if !n.isHotwater() {
			continue
		}
		var parent *Node
		if p, ok := s.nodes[n.ParentNodeID]; ok {
			parent = &p
		}
		out[PlatformWaterHeater] = append(out[PlatformWaterHeater], hotwaterRecord(n, parent, ""))
	}
	return out
}

// withLogin runs fn and, if the token was rejected, logs in again once and
// retries fn once.
func (s *Session) withLogin(ctx context.Context, fn func() error) error {
	err := fn()
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	s.mu.RLock()
	username, password := s.username, s.password
	s.mu.RUnlock()
	if username == "" {
		return err
	}

	log.Warn().Err(err).Msg("Hive session token rejected, logging in again")
	if loginErr := s.client.Login(ctx, username, password); loginErr != nil {
		return fmt.Errorf("login again: %w", loginErr)
	}
	return fn()
}

func (s *Session) fetch(ctx context.Context) error {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	var nodes []Node
	err := s.withLogin(ctx, func() error {
		var err error
		nodes, err = s.client.Nodes(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("update data: %w", err)
	}

	snapshot := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		snapshot[n.ID] = n
	}

	s.mu.Lock()
	s.nodes = snapshot
	s.lastUpdate = s.now()
	s.stale = false
	s.mu.Unlock()

	log.Debug().Int("nodes", len(nodes)).Msg("Hive node snapshot updated")
	return nil
}
