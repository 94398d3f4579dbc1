// Package app wires configuration, storage, the Hive integration and the
// water heater platform together for both binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hive-hotwater/pkg/config"
	"github.com/urmzd/hive-hotwater/pkg/db"
	"github.com/urmzd/hive-hotwater/pkg/device"
	"github.com/urmzd/hive-hotwater/pkg/device/schema"
	"github.com/urmzd/hive-hotwater/pkg/integration"
	"github.com/urmzd/hive-hotwater/pkg/logger"
	"github.com/urmzd/hive-hotwater/pkg/mqtt"
	"github.com/urmzd/hive-hotwater/pkg/platform"
	"github.com/urmzd/hive-hotwater/pkg/waterheater"
)

// Options are the command line inputs shared by both binaries.
type Options struct {
	DBPath     string
	ConfigPath string
}

// App owns every long-lived resource of the process.
type App struct {
	Config     *config.Config
	DB         *db.DB
	Settings   *db.Config
	Validator  *schema.Validator
	Controller device.Controller
	Subscriber device.EventSubscriber

	httpClient *http.Client
	registry   *integration.Registry
	platform   *platform.Platform
	entryID    string
	bridge     *mqtt.Bridge
}

// New loads configuration, opens the database and sets up the Hive
// integration. When Hive cannot be reached the app falls back to a null
// controller so the outer surfaces still start.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	database, err := openDB(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}

	settings, err := database.ActiveConfig(ctx)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log.Info().
		Str("profile", settings.Profile.Name).
		Str("timezone", settings.Profile.Timezone).
		Str("api_address", settings.APIAddress()).
		Msg("Configuration loaded")

	a := &App{
		Config:     cfg,
		DB:         database,
		Settings:   settings,
		Validator:  schema.NewValidator(),
		Controller: device.NewNullController(),
		Subscriber: device.NewNullEventSubscriber(),
		httpClient: &http.Client{Timeout: cfg.Hive.Timeout},
		registry:   integration.NewRegistry(),
		platform:   platform.New(cfg.Hive.ScanInterval),
	}

	if err := a.setupHive(ctx); err != nil {
		log.Warn().Err(err).Msg("Hive unavailable, using null controller")
	}

	if cfg.MQTT.Enabled {
		a.bridge = mqtt.NewBridge(cfg.MQTT, a.Controller, a.Subscriber)
	}
	return a, nil
}

func openDB(ctx context.Context, path string) (*db.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run database migrations: %w", err)
	}
	if err := database.Bootstrap(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	return database, nil
}

var errNoCredentials = errors.New("hive.username and hive.password are not configured")

func (a *App) setupHive(ctx context.Context) error {
	hc := a.Config.Hive
	if hc.Username == "" || hc.Password == "" {
		return errNoCredentials
	}

	entry, err := a.DB.ConfigEntries().Ensure(ctx, a.Settings.Profile.ID, integration.Domain, hc.Username)
	if err != nil {
		return err
	}

	integ, err := integration.SetupEntry(ctx, a.registry, entry.ID, hc, a.httpClient, a.platform)
	if err != nil {
		return err
	}
	if err := waterheater.SetupEntry(ctx, a.registry, entry.ID, a.httpClient, a.platform.AddEntities); err != nil {
		a.registry.Remove(entry.ID)
		return err
	}

	ctrl := waterheater.NewController(a.platform, integ)
	a.Controller, a.Subscriber = ctrl, ctrl
	a.entryID = entry.ID
	return nil
}

// EntryID is the config entry of the Hive account, empty without one.
func (a *App) EntryID() string {
	return a.entryID
}

// Run drives the polling loop and, when enabled, the MQTT bridge until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) {
	if a.entryID != "" {
		go a.platform.Run(ctx)
	}

	if a.bridge == nil {
		return
	}
	go func() {
		if err := a.bridge.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("MQTT bridge not started")
			return
		}
		if err := a.bridge.Run(ctx); err != nil {
			log.Error().Err(err).Msg("MQTT bridge stopped")
		}
	}()
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() {
	if a.bridge != nil {
		a.bridge.Close()
	}
	a.Controller.Close()
	if a.entryID != "" {
		a.registry.Remove(a.entryID)
	}
	a.httpClient.CloseIdleConnections()
	if err := a.DB.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}
