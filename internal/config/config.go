package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes YAML duration strings like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Nostr     NostrConfig     `yaml:"nostr"`
	Session   SessionConfig   `yaml:"session"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type NostrConfig struct {
	Enabled        bool     `yaml:"enabled"`
	SecretKey      string   `yaml:"secret_key"`
	Relays         []string `yaml:"relays"`
	PublishTimeout Duration `yaml:"publish_timeout"`
}

type SessionConfig struct {
	TickInterval     Duration `yaml:"tick_interval"`
	AutosaveInterval Duration `yaml:"autosave_interval"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_DB_PATH,
//	LIFTLOG_AUTH_API_KEY, LIFTLOG_NOSTR_SECRET_KEY,
//	LIFTLOG_NOSTR_RELAYS (comma-separated)
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTLOG_NOSTR_SECRET_KEY"); v != "" {
		cfg.Nostr.SecretKey = v
	}
	if v := os.Getenv("LIFTLOG_NOSTR_RELAYS"); v != "" {
		cfg.Nostr.Relays = strings.Split(v, ",")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Session.TickInterval == 0 {
		cfg.Session.TickInterval = Duration(time.Second)
	}
	if cfg.Session.AutosaveInterval == 0 {
		cfg.Session.AutosaveInterval = Duration(30 * time.Second)
	}
	if cfg.Nostr.PublishTimeout == 0 {
		cfg.Nostr.PublishTimeout = Duration(10 * time.Second)
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Nostr.Enabled {
		if c.Nostr.SecretKey == "" {
			return fmt.Errorf("nostr.secret_key is required when nostr is enabled")
		}
		if len(c.Nostr.Relays) == 0 {
			return fmt.Errorf("nostr.relays is required when nostr is enabled")
		}
	}
	return nil
}
