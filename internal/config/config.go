package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weft.yaml"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7343"

	// DefaultMaxRevisits is the default per-pass re-visit bound before a
	// render chain is dropped as cyclic.
	DefaultMaxRevisits = 2

	// DefaultTickInterval is the default demo tick interval.
	DefaultTickInterval = Duration(16 * time.Millisecond)
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "16ms" or "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete weft.yaml configuration.
type Config struct {
	// Engine contains reconciliation engine settings.
	Engine EngineConfig `yaml:"engine,omitempty"`

	// Inspector contains the debug inspector settings.
	Inspector InspectorConfig `yaml:"inspector,omitempty"`

	// Redis contains the optional Redis source-provider settings.
	Redis RedisConfig `yaml:"redis,omitempty"`

	// Demo contains settings for the demo host loop.
	Demo DemoConfig `yaml:"demo,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// EngineConfig contains reconciliation engine settings.
type EngineConfig struct {
	// MaxRevisits bounds how many times one invocation may render within
	// a single pass before its chain is dropped with a cycle error.
	MaxRevisits int `yaml:"maxRevisits,omitempty"`

	// MetricsNamespace is the Prometheus namespace (default: "weft").
	MetricsNamespace string `yaml:"metricsNamespace,omitempty"`
}

// InspectorConfig contains the debug inspector settings.
type InspectorConfig struct {
	// Enabled controls whether the inspector HTTP server starts.
	Enabled bool `yaml:"enabled,omitempty"`

	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`
}

// RedisConfig contains the optional Redis source-provider settings.
// When Addr is empty the in-memory source registry is used alone.
type RedisConfig struct {
	// Addr is the Redis server address, e.g. "localhost:6379".
	Addr string `yaml:"addr,omitempty"`

	// Channel is the pub/sub channel carrying source-change notifications.
	Channel string `yaml:"channel,omitempty"`

	// KeyPrefix namespaces the source value keys.
	KeyPrefix string `yaml:"keyPrefix,omitempty"`
}

// DemoConfig contains settings for the demo host loop.
type DemoConfig struct {
	// TickInterval is the delay between scheduler passes.
	TickInterval Duration `yaml:"tickInterval,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxRevisits:      DefaultMaxRevisits,
			MetricsNamespace: "weft",
		},
		Inspector: InspectorConfig{
			Enabled: false,
			Addr:    DefaultInspectorAddr,
		},
		Redis: RedisConfig{
			Channel:   "weft:sources",
			KeyPrefix: "weft:src:",
		},
		Demo: DemoConfig{
			TickInterval: DefaultTickInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory, looking for
// weft.yaml. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Engine.MaxRevisits == 0 {
		c.Engine.MaxRevisits = DefaultMaxRevisits
	}
	if c.Engine.MetricsNamespace == "" {
		c.Engine.MetricsNamespace = "weft"
	}
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = "weft:sources"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "weft:src:"
	}
	if c.Demo.TickInterval == 0 {
		c.Demo.TickInterval = DefaultTickInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Engine.MaxRevisits < 1 {
		return fmt.Errorf("config: engine.maxRevisits must be at least 1, got %d", c.Engine.MaxRevisits)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Demo.TickInterval < 0 {
		return fmt.Errorf("config: demo.tickInterval must not be negative")
	}
	return nil
}
