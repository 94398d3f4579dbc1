package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urmzd/hive-hotwater/pkg/hive"
	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration file. Listen address and profile live in
// the database; everything needed to reach external services lives here.
type Config struct {
	Log  LogConfig  `yaml:"log"`
	Hive HiveConfig `yaml:"hive"`
	MQTT MQTTConfig `yaml:"mqtt"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"` // stderr or stdout
	JSON   bool   `yaml:"json"`
}

// HiveConfig contains the Hive account and polling cadence
type HiveConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ScanInterval   time.Duration `yaml:"scan_interval"`   // entity poll period
	UpdateInterval time.Duration `yaml:"update_interval"` // minimum age before the node snapshot is refetched
	Timeout        time.Duration `yaml:"timeout"`         // shared HTTP client timeout
}

// MQTTConfig contains the optional Home Assistant MQTT bridge settings
type MQTTConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Broker          string `yaml:"broker"`
	Port            int    `yaml:"port"`
	ClientID        string `yaml:"client_id"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	BaseTopic       string `yaml:"base_topic"`
}

// Default returns a configuration with every optional field populated.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads and validates the configuration file at path. An empty path
// yields the defaults with credentials taken from HIVE_USERNAME and
// HIVE_PASSWORD.
func Load(path string) (*Config, error) {
	c := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read configuration file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("error parsing configuration from %s: %w", path, err)
		}
	}

	if c.Hive.Username == "" {
		c.Hive.Username = os.Getenv("HIVE_USERNAME")
	}
	if c.Hive.Password == "" {
		c.Hive.Password = os.Getenv("HIVE_PASSWORD")
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stderr"
	}
	if c.Hive.BaseURL == "" {
		c.Hive.BaseURL = hive.DefaultBaseURL
	}
	if c.Hive.ScanInterval == 0 {
		c.Hive.ScanInterval = 30 * time.Second
	}
	if c.Hive.UpdateInterval == 0 {
		c.Hive.UpdateInterval = hive.DefaultUpdateInterval
	}
	if c.Hive.Timeout == 0 {
		c.Hive.Timeout = 10 * time.Second
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = 1883
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "hive-hotwater"
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = "homeassistant"
	}
	if c.MQTT.BaseTopic == "" {
		c.MQTT.BaseTopic = "hive-hotwater"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Hive.ScanInterval < time.Second {
		errs = append(errs, fmt.Errorf("hive.scan_interval must be at least 1s, got %s", c.Hive.ScanInterval))
	}
	if c.Hive.UpdateInterval < 0 {
		errs = append(errs, errors.New("hive.update_interval cannot be negative"))
	}
	if c.Hive.Timeout < 0 {
		errs = append(errs, errors.New("hive.timeout cannot be negative"))
	}
	if c.Log.Output != "stderr" && c.Log.Output != "stdout" {
		errs = append(errs, fmt.Errorf("log.output must be stderr or stdout, got %q", c.Log.Output))
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
		}
		if c.MQTT.Port < 1 || c.MQTT.Port > 65535 {
			errs = append(errs, fmt.Errorf("mqtt.port out of range: %d", c.MQTT.Port))
		}
	}

	return errors.Join(errs...)
}
