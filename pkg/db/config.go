package db

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// DefaultAPIAddress is used when the active profile has no API server row.
const DefaultAPIAddress = "0.0.0.0:8080"

// Config is the runtime configuration of the active profile.
type Config struct {
	Profile   *Profile
	APIServer *APIServer
}

func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return DefaultAPIAddress
	}
	return c.APIServer.Address()
}

// ActiveConfig loads the configuration of the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("get active profile: %w", err)
	}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("get API server config: %w", err)
	}

	return &Config{Profile: profile, APIServer: apiServer}, nil
}
