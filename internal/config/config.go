package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/parzivale/particlesim/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBallCount = 10
	DefaultSizeMin   = 10
	DefaultSizeMax   = 20
	DefaultMassMin   = 4
	DefaultMassMax   = 5
	DefaultVelMin    = -1.0
	DefaultVelMax    = 1.0
	DefaultTicks     = 600
	DefaultDt        = 1.0
	DefaultWidth     = 800
	DefaultHeight    = 600
	DefaultLogLevel  = "info"
)

// Environment variables read by ApplyEnv.
const (
	EnvBalls    = "PARTICLESIM_BALLS"
	EnvSeed     = "PARTICLESIM_SEED"
	EnvLogLevel = "PARTICLESIM_LOG_LEVEL"
)

type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Packing    PackingConfig    `yaml:"packing"`
	Collision  CollisionConfig  `yaml:"collision"`
	Workers    int              `yaml:"workers"`
	Run        RunConfig        `yaml:"run"`
	LogLevel   string           `yaml:"log_level"`
}

type SimulationConfig struct {
	BallCount     int        `yaml:"ball_count"`
	SizeRange     IntRange   `yaml:"size_range"`
	MassRange     IntRange   `yaml:"mass_range"`
	VelocityRange FloatRange `yaml:"velocity_range"`
	// Seed 0 means seed from the clock.
	Seed uint64 `yaml:"seed"`
}

// IntRange is the half-open range [Min, Max).
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r IntRange) String() string { return fmt.Sprintf("%d..%d", r.Min, r.Max) }

type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r FloatRange) String() string { return fmt.Sprintf("%g..%g", r.Min, r.Max) }

type PackingConfig struct {
	RelaxBudget  time.Duration `yaml:"relax_budget"`
	StepDelta    time.Duration `yaml:"step_delta"`
	ImpulseLimit float64       `yaml:"impulse_limit"`
	Noise        float64       `yaml:"noise"`
}

type CollisionConfig struct {
	ClampEpsilon float64 `yaml:"clamp_epsilon"`
	MinDistSq    float64 `yaml:"min_dist_sq"`
}

type RunConfig struct {
	Ticks  int     `yaml:"ticks"`
	Dt     float64 `yaml:"dt"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			BallCount:     DefaultBallCount,
			SizeRange:     IntRange{Min: DefaultSizeMin, Max: DefaultSizeMax},
			MassRange:     IntRange{Min: DefaultMassMin, Max: DefaultMassMax},
			VelocityRange: FloatRange{Min: DefaultVelMin, Max: DefaultVelMax},
		},
		Packing: PackingConfig{
			RelaxBudget:  physics.DefaultRelaxBudget,
			StepDelta:    physics.DefaultStepDelta,
			ImpulseLimit: physics.DefaultImpulseLimit,
			Noise:        physics.DefaultNoise,
		},
		Collision: CollisionConfig{
			ClampEpsilon: physics.DefaultClampEpsilon,
			MinDistSq:    physics.DefaultMinDistSq,
		},
		Run: RunConfig{
			Ticks:  DefaultTicks,
			Dt:     DefaultDt,
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
		LogLevel: DefaultLogLevel,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over base, typically a preset, and returns
// base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate returns the first problem found, as a *ValidationError.
func (c *Config) Validate() error {
	s := c.Simulation
	switch {
	case s.BallCount < 0:
		return invalid("simulation.ball_count", "must not be negative, got %d", s.BallCount)
	case s.SizeRange.Min < 1:
		return invalid("simulation.size_range", "lower bound must be at least 1, got %s", s.SizeRange)
	case s.SizeRange.Max <= s.SizeRange.Min:
		return invalid("simulation.size_range", "is empty: %s", s.SizeRange)
	case s.MassRange.Min < 1:
		return invalid("simulation.mass_range", "lower bound must be at least 1, got %s", s.MassRange)
	case s.MassRange.Max <= s.MassRange.Min:
		return invalid("simulation.mass_range", "is empty: %s", s.MassRange)
	case s.VelocityRange.Max < s.VelocityRange.Min:
		return invalid("simulation.velocity_range", "is inverted: %s", s.VelocityRange)
	}

	p := c.Packing
	switch {
	case p.RelaxBudget < 0:
		return invalid("packing.relax_budget", "must not be negative, got %s", p.RelaxBudget)
	case p.StepDelta <= 0:
		return invalid("packing.step_delta", "must be positive, got %s", p.StepDelta)
	case p.ImpulseLimit <= 0:
		return invalid("packing.impulse_limit", "must be positive, got %g", p.ImpulseLimit)
	case p.Noise < 0:
		return invalid("packing.noise", "must not be negative, got %g", p.Noise)
	}

	if c.Collision.ClampEpsilon < 0 {
		return invalid("collision.clamp_epsilon", "must not be negative, got %g", c.Collision.ClampEpsilon)
	}
	if c.Collision.MinDistSq <= 0 {
		return invalid("collision.min_dist_sq", "must be positive, got %g", c.Collision.MinDistSq)
	}
	if c.Workers < 0 {
		return invalid("workers", "must not be negative, got %d", c.Workers)
	}

	r := c.Run
	switch {
	case r.Ticks < 0:
		return invalid("run.ticks", "must not be negative, got %d", r.Ticks)
	case r.Dt <= 0:
		return invalid("run.dt", "must be positive, got %g", r.Dt)
	case r.Width <= 0 || r.Height <= 0:
		return invalid("run", "viewport must be positive, got %gx%g", r.Width, r.Height)
	}
	return nil
}

func (c *Config) PackOptions() physics.PackOptions {
	return physics.PackOptions{
		RelaxBudget:  c.Packing.RelaxBudget,
		StepDelta:    c.Packing.StepDelta,
		ImpulseLimit: float32(c.Packing.ImpulseLimit),
		Noise:        float32(c.Packing.Noise),
	}
}

func (c *Config) CollideOptions() physics.CollideOptions {
	return physics.CollideOptions{
		ClampEpsilon: float32(c.Collision.ClampEpsilon),
		MinDistSq:    float32(c.Collision.MinDistSq),
	}
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if it is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// ApplyEnv overrides the ball count, seed and log level from the
// environment.
func (c *Config) ApplyEnv() error {
	if v := GetEnv(EnvBalls, ""); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBalls, err)
		}
		c.Simulation.BallCount = n
	}
	if v := GetEnv(EnvSeed, ""); v != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Simulation.Seed = seed
	}
	c.LogLevel = GetEnv(EnvLogLevel, c.LogLevel)
	return nil
}
