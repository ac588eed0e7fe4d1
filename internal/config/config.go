// Package config provides YAML-based configuration loading for Carousel.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Exclusion-set scopes for the matcher. Global preserves the source
// behavior: a participant busy in any event is excluded everywhere.
const (
	ScopeGlobal = "global"
	ScopeEvent  = "event"
)

// Config is the top-level Carousel configuration, loaded from carousel.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	Rotation RotationConfig `yaml:"rotation"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Notify   NotifyConfig   `yaml:"notify"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds connection settings for the MySQL server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// HTTPConfig holds settings for the API server.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// RotationConfig tunes the matchmaking engine.
type RotationConfig struct {
	// ExclusionScope is "global" or "event". Global excludes a busy
	// participant from matching in every event, not just their own.
	ExclusionScope string `yaml:"exclusion_scope"`
	// DefaultSlotMinutes is the busy duration after which the sweep
	// completes a session when the event has no slot length of its own.
	DefaultSlotMinutes int `yaml:"default_slot_minutes"`
	// SweepSchedule is a cron expression for the stale-session sweep.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// KafkaConfig configures the session lifecycle feed. Empty brokers
// disable publishing.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// NotifyConfig selects the organizer alert backend.
type NotifyConfig struct {
	Backend string `yaml:"backend"` // "slack", "discord", or "none"
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "carousel"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Rotation.ExclusionScope == "" {
		c.Rotation.ExclusionScope = ScopeGlobal
	}
	if c.Rotation.DefaultSlotMinutes == 0 {
		c.Rotation.DefaultSlotMinutes = 5
	}
	if c.Rotation.SweepSchedule == "" {
		c.Rotation.SweepSchedule = "@every 30s"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "carousel.sessions"
	}
	if c.Notify.Backend == "" {
		c.Notify.Backend = "none"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Rotation.ExclusionScope != ScopeGlobal && c.Rotation.ExclusionScope != ScopeEvent {
		errs = append(errs, fmt.Sprintf("rotation.exclusion_scope must be %q or %q", ScopeGlobal, ScopeEvent))
	}
	if c.Rotation.DefaultSlotMinutes < 0 {
		errs = append(errs, "rotation.default_slot_minutes must not be negative")
	}
	switch c.Notify.Backend {
	case "none":
	case "slack", "discord":
		if c.Notify.Token == "" {
			errs = append(errs, fmt.Sprintf("notify.token is required for backend %q", c.Notify.Backend))
		}
		if c.Notify.Channel == "" {
			errs = append(errs, fmt.Sprintf("notify.channel is required for backend %q", c.Notify.Backend))
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.backend %q is not supported", c.Notify.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
