package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultCapacity is the size of the early registration window during
// which tweet verification is optional.
const DefaultCapacity = 1000

// Config holds all configuration for gmclaw-server
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Registration RegistrationConfig `toml:"registration"`
	Limits       LimitsConfig       `toml:"limits"`
	Log          LogConfig          `toml:"log"`
}

type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	ReadTimeout int    `toml:"read_timeout"`
	IdleTimeout int    `toml:"idle_timeout"`
}

// DatabaseConfig points at the SQLite file. An empty path runs the server
// without persistence; every data endpoint then reports unavailability.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

type RegistrationConfig struct {
	Capacity int `toml:"capacity"`
}

// LimitsConfig bounds write requests per client. Zero disables limiting.
// Clients are keyed by remote address unless TrustForwarded is set, in
// which case the first X-Forwarded-For hop is used instead. Only enable it
// behind a proxy that overwrites that header.
type LimitsConfig struct {
	WritesPerMinute int  `toml:"writes_per_minute"`
	TrustForwarded  bool `toml:"trust_forwarded"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads the TOML file at path, applies environment overrides and fills
// defaults. A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults sets default values for config
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Registration.Capacity <= 0 {
		c.Registration.Capacity = DefaultCapacity
	}
	if c.Limits.WritesPerMinute < 0 {
		c.Limits.WritesPerMinute = 0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GMCLAW_DB"); ok {
		c.Database.Path = strings.TrimSpace(v)
	}
	if v, ok := lookup("GMCLAW_LOG_LEVEL"); ok {
		c.Log.Level = strings.TrimSpace(v)
	}
	var errs []error
	if v, ok := lookup("GMCLAW_TRUST_FORWARDED"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("GMCLAW_TRUST_FORWARDED: %w", err))
		} else {
			c.Limits.TrustForwarded = b
		}
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"GMCLAW_PORT", &c.Server.Port},
		{"GMCLAW_CAPACITY", &c.Registration.Capacity},
		{"GMCLAW_WRITES_PER_MINUTE", &c.Limits.WritesPerMinute},
	}
	for _, item := range ints {
		v, ok := lookup(item.key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.key, err))
			continue
		}
		*item.dst = n
	}
	return errors.Join(errs...)
}

// Save writes the configuration as TOML. The output loads back through
// Load unchanged.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
