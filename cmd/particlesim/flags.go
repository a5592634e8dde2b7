package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/parzivale/particlesim/internal/config"
	"github.com/parzivale/particlesim/internal/geom"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	balls      int
	sizeMin    int
	sizeMax    int
	massMin    int
	massMax    int
	velMin     float64
	velMax     float64
	seed       uint64
	ticks      int
	dt         float64
	width      float64
	height     float64
	workers    int
	logLevel   string
)

// addSimFlags registers the flags shared by every command that builds a
// simulation.
func addSimFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "default", "preset configuration")
	f.IntVar(&balls, "balls", d.Simulation.BallCount, "number of balls before packing")
	f.IntVar(&sizeMin, "size-min", d.Simulation.SizeRange.Min, "smallest radius")
	f.IntVar(&sizeMax, "size-max", d.Simulation.SizeRange.Max, "radius upper bound (exclusive)")
	f.IntVar(&massMin, "mass-min", d.Simulation.MassRange.Min, "smallest mass")
	f.IntVar(&massMax, "mass-max", d.Simulation.MassRange.Max, "mass upper bound (exclusive)")
	f.Float64Var(&velMin, "vel-min", d.Simulation.VelocityRange.Min, "lowest velocity component")
	f.Float64Var(&velMax, "vel-max", d.Simulation.VelocityRange.Max, "highest velocity component")
	f.Uint64Var(&seed, "seed", 0, "random seed (0 = clock)")
	f.IntVar(&ticks, "ticks", d.Run.Ticks, "ticks to simulate")
	f.Float64Var(&dt, "dt", d.Run.Dt, "tick length")
	f.Float64Var(&width, "width", d.Run.Width, "world width")
	f.Float64Var(&height, "height", d.Run.Height, "world height")
	f.IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	f.StringVar(&logLevel, "log-level", d.LogLevel, "log level (debug, info, warn, error)")
}

// resolveConfig layers preset, config file, environment and explicitly set
// flags, in that order, and validates the result.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("balls") {
		cfg.Simulation.BallCount = balls
	}
	if f.Changed("size-min") {
		cfg.Simulation.SizeRange.Min = sizeMin
	}
	if f.Changed("size-max") {
		cfg.Simulation.SizeRange.Max = sizeMax
	}
	if f.Changed("mass-min") {
		cfg.Simulation.MassRange.Min = massMin
	}
	if f.Changed("mass-max") {
		cfg.Simulation.MassRange.Max = massMax
	}
	if f.Changed("vel-min") {
		cfg.Simulation.VelocityRange.Min = velMin
	}
	if f.Changed("vel-max") {
		cfg.Simulation.VelocityRange.Max = velMax
	}
	if f.Changed("seed") {
		cfg.Simulation.Seed = seed
	}
	if f.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if f.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if f.Changed("width") {
		cfg.Run.Width = width
	}
	if f.Changed("height") {
		cfg.Run.Height = height
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "particlesim",
		ReportTimestamp: true,
	}), nil
}

func stderrLogger(cfg *config.Config) (*log.Logger, error) {
	return newLogger(os.Stderr, cfg.LogLevel)
}

func fixedViewport(cfg *config.Config) geom.Viewport {
	return geom.FixedViewport{Rect: geom.NewBounds(float32(cfg.Run.Width), float32(cfg.Run.Height))}
}
