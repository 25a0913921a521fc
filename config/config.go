// Package config provides configuration loading and access for the simulator.
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
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Robot     RobotConfig     `yaml:"robot"`
	Odometry  OdometryConfig  `yaml:"odometry"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Filter    FilterConfig    `yaml:"filter"`
	Mapper    MapperConfig    `yaml:"mapper"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	MQTT      MQTTConfig      `yaml:"mqtt"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig describes the ground-truth map.
// MapFile takes precedence; .png files are thresholded, anything else is read as ASCII.
// Without a file the map is generated from noise.
type WorldConfig struct {
	MapFile   string          `yaml:"map_file"`
	Rows      int             `yaml:"rows"`
	Cols      int             `yaml:"cols"`
	Scale     float64         `yaml:"scale"` // physical units per cell
	Generator GeneratorConfig `yaml:"generator"`
}

// GeneratorConfig holds OpenSimplex map generator parameters.
type GeneratorConfig struct {
	Seed       int64   `yaml:"seed"` // 0 = use the run seed
	NoiseScale float64 `yaml:"noise_scale"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
	Threshold  float64 `yaml:"threshold"` // noise above this becomes an obstacle
	Border     int     `yaml:"border"`    // wall thickness around the map, in cells
}

// RobotConfig holds the simulated robot's start and motion settings.
type RobotConfig struct {
	Mode     string `yaml:"mode"`      // localize or slam
	StartRow int    `yaml:"start_row"` // -1 = random legal cell
	StartCol int    `yaml:"start_col"`
	Step     int    `yaml:"step"` // cells per command
}

// OdometryConfig holds motion sensing noise.
type OdometryConfig struct {
	Error float64 `yaml:"error"` // stddev per unit of travel
}

// SensorConfig holds range finder settings.
type SensorConfig struct {
	MaxRange   float64 `yaml:"max_range"`
	Aperture   float64 `yaml:"aperture"`   // degrees
	Resolution float64 `yaml:"resolution"` // degrees between beams
	Noise      float64 `yaml:"noise"`
}

// FilterConfig holds particle filter settings.
type FilterConfig struct {
	Particles       int     `yaml:"particles"`
	MotionNoise     float64 `yaml:"motion_noise"`
	LikelihoodNoise float64 `yaml:"likelihood_noise"` // 0 = sensor noise
	Resampling      string  `yaml:"resampling"`       // systematic or multinomial
	Workers         int     `yaml:"workers"`          // weighting goroutines, 0 = GOMAXPROCS
}

// MapperConfig holds occupancy grid settings.
type MapperConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	SensorNoise  float64 `yaml:"sensor_noise"`
	SkipMargin   float64 `yaml:"skip_margin"` // ranges within this of max range are misses
	SpanSigmas   float64 `yaml:"span_sigmas"`
	Prior        float64 `yaml:"prior"` // -1 = true map occupancy fraction
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	StatsWindow int  `yaml:"stats_window"` // cycles per summary row
	PlotEvery   int  `yaml:"plot_every"`   // cycles between PNG plots, 0 = final only
	Plots       bool `yaml:"plots"`
}

// MQTTConfig holds the optional command/state bridge settings.
type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id"`
	CommandTopic string `yaml:"command_topic"`
	StateTopic   string `yaml:"state_topic"`
	QoS          byte   `yaml:"qos"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	Beams     int     // beams per scan
	SkipRange float64 // Sensor.MaxRange - Mapper.SkipMargin
	Localize  bool    // Robot.Mode == "localize"
}

// Modes accepted by Robot.Mode.
const (
	ModeLocalize = "localize"
	ModeSLAM     = "slam"
)

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
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

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
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every setting that would make the simulation meaningless.
func (c *Config) Validate() error {
	var errs []error
	if c.World.MapFile == "" && (c.World.Rows <= 0 || c.World.Cols <= 0) {
		errs = append(errs, fmt.Errorf("world: rows and cols must be positive, got %dx%d", c.World.Rows, c.World.Cols))
	}
	if c.World.Scale <= 0 {
		errs = append(errs, fmt.Errorf("world: scale must be positive, got %v", c.World.Scale))
	}
	if c.Robot.Mode != ModeLocalize && c.Robot.Mode != ModeSLAM {
		errs = append(errs, fmt.Errorf("robot: unknown mode %q", c.Robot.Mode))
	}
	if c.Robot.Step <= 0 {
		errs = append(errs, fmt.Errorf("robot: step must be positive, got %d", c.Robot.Step))
	}
	if c.Sensor.MaxRange <= 0 {
		errs = append(errs, fmt.Errorf("sensor: max_range must be positive, got %v", c.Sensor.MaxRange))
	}
	if c.Sensor.Aperture < 0 || c.Sensor.Aperture > 360 {
		errs = append(errs, fmt.Errorf("sensor: aperture must be in [0,360], got %v", c.Sensor.Aperture))
	}
	if c.Sensor.Aperture > 0 && c.Sensor.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("sensor: resolution must be positive, got %v", c.Sensor.Resolution))
	}
	if c.Filter.Particles <= 0 {
		errs = append(errs, fmt.Errorf("filter: particles must be positive, got %d", c.Filter.Particles))
	}
	switch c.Filter.Resampling {
	case "", "systematic", "multinomial":
	default:
		errs = append(errs, fmt.Errorf("filter: unknown resampling %q", c.Filter.Resampling))
	}
	if c.Mapper.LearningRate < 0 || c.Mapper.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("mapper: learning_rate must be in [0,1], got %v", c.Mapper.LearningRate))
	}
	if c.Mapper.Prior > 1 {
		errs = append(errs, fmt.Errorf("mapper: prior must be at most 1, got %v", c.Mapper.Prior))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.SkipRange = c.Sensor.MaxRange - c.Mapper.SkipMargin
	c.Derived.Localize = c.Robot.Mode == ModeLocalize

	c.Derived.Beams = 1
	if c.Sensor.Aperture > 0 && c.Sensor.Resolution > 0 {
		n := int(c.Sensor.Aperture/c.Sensor.Resolution) + 1
		if c.Sensor.Aperture >= 360 && n > 1 {
			n--
		}
		c.Derived.Beams = max(n, 1)
	}
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
