// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Simulation   SimulationConfig   `yaml:"simulation"`
	Population   PopulationConfig   `yaml:"population"`
	Terrain      TerrainConfig      `yaml:"terrain"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Species      []SpeciesConfig    `yaml:"species"`
	Events       EventsConfig       `yaml:"events"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Bookmarks    BookmarksConfig    `yaml:"bookmarks"`
	Screen       ScreenConfig       `yaml:"screen"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the grid dimensions in cells.
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SimulationConfig holds run-level parameters.
type SimulationConfig struct {
	Turns int   `yaml:"turns"` // Turn budget
	Seed  int64 `yaml:"seed"`  // 0 = time-based
}

// PopulationConfig holds initial population parameters.
// The species mix comes from SpeciesConfig.SpawnWeight.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
}

// TerrainConfig holds terrain layer parameters.
type TerrainConfig struct {
	FoodCells       int     `yaml:"food_cells"`        // FoodPatch cells placed at start
	FoodStockMin    int     `yaml:"food_stock_min"`    // Stock roll lower bound (inclusive)
	FoodStockMax    int     `yaml:"food_stock_max"`    // Stock roll upper bound (inclusive)
	DangerRadius    int     `yaml:"danger_radius"`     // Chebyshev radius of swamp propagation
	SwampNoiseScale float64 `yaml:"swamp_noise_scale"` // Noise frequency for initial swamps
	SwampThreshold  float64 `yaml:"swamp_threshold"`   // Normalized noise value above which a cell starts as swamp (0 = none)
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	Radius      int     `yaml:"radius"`       // Partner search radius
	SuccessRate float64 `yaml:"success_rate"` // Default pairing probability
}

// SpeciesConfig defines one species' capacity and movement heuristic.
type SpeciesConfig struct {
	Name              string  `yaml:"name"`
	SpawnWeight       float64 `yaml:"spawn_weight"`         // Relative share of the initial population
	MaxHealth         int     `yaml:"max_health"`           // Capacity of founders
	FixedMaxHealth    bool    `yaml:"fixed_max_health"`     // Newborns keep MaxHealth instead of the inherited capacity
	FullHealthAtBirth bool    `yaml:"full_health_at_birth"` // Start at capacity instead of a random roll
	SuccessRate       float64 `yaml:"success_rate"`         // 0 = reproduction.success_rate
	Walk              string  `yaml:"walk"`                 // "axis" or "free"
	Step              int     `yaml:"step"`                 // Max step length per turn
	IdleChance        float64 `yaml:"idle_chance"`          // Probability of staying put (dance, sing...)
	LowHealth         int     `yaml:"low_health"`           // Below this health the agent retreats home
	HomeDivisor       int     `yaml:"home_divisor"`         // Retreat step = dims / divisor (0 = never retreats)
}

// EventsConfig holds host-side scheduling of the one-shot events.
// Values are fractions of the turn budget; 0 disables the event.
type EventsConfig struct {
	MassDangerAt        float64 `yaml:"mass_danger_at"`
	BehaviorFlipAt      float64 `yaml:"behavior_flip_at"`
	BehaviorFlipSpecies string  `yaml:"behavior_flip_species"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	Window              int `yaml:"window"` // Turns per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	CrashDropPercent float64 `yaml:"crash_drop_percent"` // Drop from recent peak that counts as a crash
	CrashMinDrop     int     `yaml:"crash_min_drop"`
	BoomMultiplier   float64 `yaml:"boom_multiplier"` // Growth over recent minimum that counts as a boom
	BoomMinFinal     int     `yaml:"boom_min_final"`
	StableCV         float64 `yaml:"stable_cv"` // Coefficient of variation below which a window is stable
	StableWindows    int     `yaml:"stable_windows"`
}

// ScreenConfig holds display settings for graphical mode.
type ScreenConfig struct {
	CellSize   int `yaml:"cell_size"`
	TargetFPS  int `yaml:"target_fps"`
	PanelWidth int `yaml:"panel_width"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cells        int            // World.Width * World.Height
	SpeciesIndex map[string]int // name -> index into Species
	ScreenWidth  int32          // Grid pixels plus the side panel
	ScreenHeight int32
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file; a species list replaces the default list
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cells = c.World.Width * c.World.Height

	for i := range c.Species {
		sp := &c.Species[i]
		if sp.Walk == "" {
			sp.Walk = "axis"
		}
		if sp.Step == 0 {
			sp.Step = 1
		}
	}

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = i
	}

	c.Derived.ScreenWidth = int32(c.World.Width*c.Screen.CellSize + c.Screen.PanelWidth)
	c.Derived.ScreenHeight = int32(c.World.Height * c.Screen.CellSize)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world: dimensions must be positive, got %dx%d", c.World.Width, c.World.Height))
	}
	cells := c.World.Width * c.World.Height
	if c.Terrain.FoodCells < 0 || c.Terrain.FoodCells > cells {
		errs = append(errs, fmt.Errorf("terrain: %d food cells do not fit a %dx%d grid", c.Terrain.FoodCells, c.World.Width, c.World.Height))
	}
	if c.Population.Initial < 0 || c.Population.Initial > cells {
		errs = append(errs, fmt.Errorf("population: %d agents do not fit a %dx%d grid", c.Population.Initial, c.World.Width, c.World.Height))
	}
	if c.Terrain.FoodStockMin < 1 || c.Terrain.FoodStockMax < c.Terrain.FoodStockMin {
		errs = append(errs, fmt.Errorf("terrain: invalid food stock range [%d, %d]", c.Terrain.FoodStockMin, c.Terrain.FoodStockMax))
	}
	if c.Terrain.DangerRadius < 0 {
		errs = append(errs, fmt.Errorf("terrain: danger_radius must not be negative"))
	}
	if c.Reproduction.Radius < 1 {
		errs = append(errs, fmt.Errorf("reproduction: radius must be at least 1"))
	}
	if !isProbability(c.Reproduction.SuccessRate) {
		errs = append(errs, fmt.Errorf("reproduction: success_rate %v outside [0, 1]", c.Reproduction.SuccessRate))
	}
	if c.Simulation.Turns < 0 {
		errs = append(errs, fmt.Errorf("simulation: turns must not be negative"))
	}

	var totalWeight float64
	for _, sp := range c.Species {
		if sp.Name == "" {
			errs = append(errs, errors.New("species: missing name"))
			continue
		}
		if sp.MaxHealth < 1 {
			errs = append(errs, fmt.Errorf("species %s: max_health must be at least 1", sp.Name))
		}
		if !isProbability(sp.SuccessRate) || !isProbability(sp.IdleChance) {
			errs = append(errs, fmt.Errorf("species %s: probabilities must be in [0, 1]", sp.Name))
		}
		if sp.Walk != "axis" && sp.Walk != "free" {
			errs = append(errs, fmt.Errorf("species %s: unknown walk %q", sp.Name, sp.Walk))
		}
		if sp.SpawnWeight < 0 || sp.HomeDivisor < 0 || sp.Step < 0 {
			errs = append(errs, fmt.Errorf("species %s: spawn_weight, home_divisor and step must not be negative", sp.Name))
		}
		totalWeight += sp.SpawnWeight
	}
	if c.Population.Initial > 0 && totalWeight <= 0 {
		errs = append(errs, errors.New("population: no species has a positive spawn_weight"))
	}

	if !isProbability(c.Events.MassDangerAt) || !isProbability(c.Events.BehaviorFlipAt) {
		errs = append(errs, errors.New("events: trigger fractions must be in [0, 1]"))
	}
	if c.Events.BehaviorFlipAt > 0 {
		if _, ok := c.Derived.SpeciesIndex[c.Events.BehaviorFlipSpecies]; !ok {
			errs = append(errs, fmt.Errorf("events: unknown behavior_flip_species %q", c.Events.BehaviorFlipSpecies))
		}
	}

	return errors.Join(errs...)
}

// SpeciesByName returns the species entry with the given name.
func (c *Config) SpeciesByName(name string) (SpeciesConfig, bool) {
	idx, ok := c.Derived.SpeciesIndex[name]
	if !ok {
		return SpeciesConfig{}, false
	}
	return c.Species[idx], true
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

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
