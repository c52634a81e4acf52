package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DirName is the per-workspace directory holding config, logs and run history.
const DirName = ".cognerd"

// Config holds all cognerd configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Attention and control-loop parameters
	Reasoner ReasonerConfig `yaml:"reasoner"`

	// Cycle driver
	Engine EngineConfig `yaml:"engine"`

	// Task documents and file watching
	Input InputConfig `yaml:"input"`

	// Run history
	Store StoreConfig `yaml:"store"`

	// Prometheus exporter
	Metrics MetricsConfig `yaml:"metrics"`

	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig configures the driver that advances the control loop.
type EngineConfig struct {
	// Cycles to run before stopping; 0 runs until cancelled.
	Cycles int `yaml:"cycles"`
	// Cycles executed per tick of the driver.
	StepsPerTick int `yaml:"steps_per_tick"`
	// Pause between ticks.
	TickInterval string `yaml:"tick_interval"`
}

// InputConfig configures how task documents are read.
type InputConfig struct {
	Watch    bool   `yaml:"watch"`
	Debounce string `yaml:"debounce"`
}

// StoreConfig configures the SQLite run history.
type StoreConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
	// Concepts to persist in the end-of-run snapshot.
	SnapshotLimit int `yaml:"snapshot_limit"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "cognerd",
		Version:  "0.3.0",
		Reasoner: DefaultReasonerConfig(),
		Engine: EngineConfig{
			Cycles:       0,
			StepsPerTick: 1,
			TickInterval: "10ms",
		},
		Input: InputConfig{
			Watch:    false,
			Debounce: "200ms",
		},
		Store: StoreConfig{
			Enabled:       true,
			DatabasePath:  filepath.Join(DirName, "runs.db"),
			SnapshotLimit: 200,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// DefaultPath is the config file location inside a workspace.
func DefaultPath(workspace string) string {
	return filepath.Join(workspace, DirName, "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("COGNERD_DB"); path != "" {
		c.Store.DatabasePath = path
	}
	if lvl := os.Getenv("COGNERD_LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	if s := os.Getenv("COGNERD_SILENCE"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			c.Reasoner.Silence = v
		}
	}
	if addr := os.Getenv("COGNERD_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
		c.Metrics.Enabled = true
	}
}

// GetTickInterval returns the engine tick interval as a duration.
func (c *Config) GetTickInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.TickInterval)
	if err != nil {
		return 10 * time.Millisecond
	}
	return d
}

// GetDebounce returns the input watcher debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Input.Debounce)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Reasoner.Validate(); err != nil {
		return fmt.Errorf("reasoner: %w", err)
	}
	if c.Engine.Cycles < 0 {
		return fmt.Errorf("engine.cycles must be >= 0, got %d", c.Engine.Cycles)
	}
	if c.Engine.StepsPerTick < 1 {
		return fmt.Errorf("engine.steps_per_tick must be >= 1, got %d", c.Engine.StepsPerTick)
	}
	if _, err := time.ParseDuration(c.Engine.TickInterval); err != nil {
		return fmt.Errorf("invalid engine.tick_interval %q: %w", c.Engine.TickInterval, err)
	}
	if c.Store.Enabled && c.Store.DatabasePath == "" {
		return fmt.Errorf("store.database_path required when store is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr required when metrics are enabled")
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	return nil
}

// FindWorkspaceRoot walks up from the working directory to the nearest
// directory holding .cognerd or go.mod. It falls back to the working directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, DirName)); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return originalDir, nil
}
