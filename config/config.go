// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	World       WorldConfig       `yaml:"world"`
	Agent       AgentConfig       `yaml:"agent"`
	Energy      EnergyConfig      `yaml:"energy"`
	Replication ReplicationConfig `yaml:"replication"`
	Food        FoodConfig        `yaml:"food"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Bookmarks   BookmarksConfig   `yaml:"bookmarks"`
	Colors      ColorsConfig      `yaml:"colors"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// AgentConfig holds agent creation and movement parameters.
type AgentConfig struct {
	InitialPopulation  int     `yaml:"initial_population"`
	WalkSpeed          float64 `yaml:"walk_speed"`          // Max random walk offset per axis per tick
	SeekSpeed          float64 `yaml:"seek_speed"`          // Step length toward the nearest food
	SeparationDistance float64 `yaml:"separation_distance"` // Neighbors closer than this repel
	SeparationSpeed    float64 `yaml:"separation_speed"`    // Length of the applied repulsion step
	Radius             float64 `yaml:"radius"`              // Draw radius in pixels
}

// EnergyConfig holds energy economics parameters.
type EnergyConfig struct {
	Max             float64 `yaml:"max"`
	GainPerFood     float64 `yaml:"gain_per_food"`
	ReplicationCost float64 `yaml:"replication_cost"` // Must not exceed Max
	DropFoodCost    float64 `yaml:"drop_food_cost"`
}

// ReplicationConfig holds replication timer parameters.
type ReplicationConfig struct {
	IntervalMeanMS float64 `yaml:"interval_mean_ms"` // Mean of the exponential timer draw
}

// FoodConfig holds food placement parameters.
type FoodConfig struct {
	InitialCount    int     `yaml:"initial_count"`
	SpawnIntervalMS float64 `yaml:"spawn_interval_ms"` // Automatic drip cadence; 0 disables
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowSec      float64 `yaml:"stats_window_sec"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PopulationSurge  PopulationSurgeConfig  `yaml:"population_surge"`
	ReplicationStall ReplicationStallConfig `yaml:"replication_stall"`
}

// PopulationSurgeConfig holds population surge detection parameters.
type PopulationSurgeConfig struct {
	Multiplier    float64 `yaml:"multiplier"`
	MinPopulation int     `yaml:"min_population"`
}

// ReplicationStallConfig holds replication stall detection parameters.
type ReplicationStallConfig struct {
	DueFraction float64 `yaml:"due_fraction"` // Fraction of agents due before a stall counts
	Windows     int     `yaml:"windows"`      // Consecutive birthless windows required
}

// ColorsConfig holds render colors.
type ColorsConfig struct {
	Background RGB `yaml:"background"`
	Thronglet  RGB `yaml:"thronglet"`
	Food       RGB `yaml:"food"`
}

// RGB is a color as three channel values.
// yaml.v3 would decode a []uint8 as base64 text, so channels are named fields.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickMS float64 // Simulation milliseconds advanced per tick
	WorldW float64 // Effective world width
	WorldH float64 // Effective world height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		return fmt.Errorf("screen dimensions must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.TargetFPS <= 0 {
		return fmt.Errorf("screen.target_fps must be positive, got %d", c.Screen.TargetFPS)
	}
	if c.World.Width < 0 || c.World.Height < 0 {
		return fmt.Errorf("world dimensions must not be negative, got %dx%d", c.World.Width, c.World.Height)
	}
	if c.Agent.InitialPopulation < 0 {
		return fmt.Errorf("agent.initial_population must not be negative, got %d", c.Agent.InitialPopulation)
	}
	if c.Agent.WalkSpeed < 0 || c.Agent.SeekSpeed < 0 || c.Agent.SeparationSpeed < 0 {
		return fmt.Errorf("agent speeds must not be negative")
	}
	if c.Agent.SeparationDistance < 0 {
		return fmt.Errorf("agent.separation_distance must not be negative, got %g", c.Agent.SeparationDistance)
	}
	if c.Energy.Max <= 0 {
		return fmt.Errorf("energy.max must be positive, got %g", c.Energy.Max)
	}
	if c.Energy.GainPerFood < 0 || c.Energy.DropFoodCost < 0 {
		return fmt.Errorf("energy amounts must not be negative")
	}
	if c.Energy.ReplicationCost < 0 {
		return fmt.Errorf("energy.replication_cost must not be negative, got %g", c.Energy.ReplicationCost)
	}
	// Replication requires full energy, so a cost above the maximum could
	// never be paid and no agent would ever replicate.
	if c.Energy.ReplicationCost > c.Energy.Max {
		return fmt.Errorf("energy.replication_cost (%g) exceeds energy.max (%g)", c.Energy.ReplicationCost, c.Energy.Max)
	}
	if c.Replication.IntervalMeanMS <= 0 {
		return fmt.Errorf("replication.interval_mean_ms must be positive, got %g", c.Replication.IntervalMeanMS)
	}
	if c.Food.InitialCount < 0 {
		return fmt.Errorf("food.initial_count must not be negative, got %d", c.Food.InitialCount)
	}
	if c.Food.SpawnIntervalMS < 0 {
		return fmt.Errorf("food.spawn_interval_ms must not be negative, got %g", c.Food.SpawnIntervalMS)
	}
	if c.Telemetry.StatsWindowSec <= 0 {
		return fmt.Errorf("telemetry.stats_window_sec must be positive, got %g", c.Telemetry.StatsWindowSec)
	}
	if c.Telemetry.BookmarkHistorySize < 1 {
		return fmt.Errorf("telemetry.bookmark_history_size must be at least 1, got %d", c.Telemetry.BookmarkHistorySize)
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		return fmt.Errorf("telemetry.perf_collector_window must be at least 1, got %d", c.Telemetry.PerfCollectorWindow)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickMS = 1000.0 / float64(c.Screen.TargetFPS)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
