package config

import "sort"

// Presets are named initial conditions for the run section.
var Presets = map[string]RunConfig{
	"drop": {
		Y0: 10.0, Vy0: 0.0, Dt: 0.01, Duration: 1.4, StepsPerFrame: 1,
	},
	"toss": {
		Y0: 0.0, Vy0: 15.0, Dt: 0.01, Duration: 3.0, StepsPerFrame: 1,
	},
	"golden": {
		Y0: 100.0, Vy0: 0.0, Dt: 0.1, Duration: 1.0, StepsPerFrame: 10,
	},
	"tower": {
		Y0: 300.0, Vy0: 0.0, Dt: 0.001, Duration: 7.8, StepsPerFrame: 50,
	},
}

// GetPreset returns a copy of the default configuration with the named run
// preset applied, or nil if no such preset exists.
func GetPreset(name string) *Config {
	run, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Run = run
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
