package config

import (
	"sort"
	"time"
)

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"crowded": func() *Config {
		cfg := DefaultConfig()
		cfg.Simulation.BallCount = 120
		cfg.Simulation.SizeRange = IntRange{Min: 8, Max: 16}
		cfg.Simulation.VelocityRange = FloatRange{Min: -2, Max: 2}
		return cfg
	},
	"jam": func() *Config {
		cfg := DefaultConfig()
		cfg.Simulation.BallCount = 300
		cfg.Simulation.SizeRange = IntRange{Min: 20, Max: 40}
		cfg.Packing.RelaxBudget = 250 * time.Millisecond
		return cfg
	},
	"heavy": func() *Config {
		cfg := DefaultConfig()
		cfg.Simulation.BallCount = 30
		cfg.Simulation.MassRange = IntRange{Min: 1, Max: 50}
		cfg.Simulation.VelocityRange = FloatRange{Min: -3, Max: 3}
		return cfg
	},
	"billiards": func() *Config {
		cfg := DefaultConfig()
		cfg.Simulation.BallCount = 16
		cfg.Simulation.SizeRange = IntRange{Min: 12, Max: 13}
		cfg.Simulation.MassRange = IntRange{Min: 5, Max: 6}
		cfg.Simulation.VelocityRange = FloatRange{Min: -4, Max: 4}
		cfg.Run.Width, cfg.Run.Height = 640, 320
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
