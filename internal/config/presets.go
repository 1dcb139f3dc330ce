package config

import "sort"

var Presets = map[string]map[string]*Config{
	ModelOscillator: {
		"harness": {
			Model: ModelOscillator, Method: "adams4", Step: 1e-3, Until: 20, SampleEvery: 1,
			InitState: InitStateConfig{Velocity: 1, Position: 0},
			Params:    ParamsConfig{Stiffness: 10, Mass: 1},
		},
		"coarse": {
			Model: ModelOscillator, Method: "rk5", Step: 0.05, Until: 20, SampleEvery: 1,
			InitState: InitStateConfig{Velocity: 1, Position: 0},
			Params:    ParamsConfig{Stiffness: 10, Mass: 1},
		},
		"damped": {
			Model: ModelOscillator, Method: "adams5", Step: 1e-3, Until: 20, SampleEvery: 10,
			InitState: InitStateConfig{Velocity: 0, Position: 1},
			Params:    ParamsConfig{Stiffness: 10, Mass: 1, Damping: 0.5},
		},
		"stiff": {
			Model: ModelOscillator, Method: "rk4", Step: 1e-4, Until: 2, SampleEvery: 10,
			InitState: InitStateConfig{Velocity: 1, Position: 0},
			Params:    ParamsConfig{Stiffness: 1e4, Mass: 1},
		},
	},
	ModelChain: {
		"pluck": {
			Model: ModelChain, Method: "rk4", Step: 1e-3, Until: 10, SampleEvery: 10,
			InitState: InitStateConfig{Position: 1},
			Params:    ParamsConfig{Stiffness: 10, Mass: 1, Masses: 3},
		},
		"long": {
			Model: ModelChain, Method: "adams5", Step: 1e-3, Until: 20, SampleEvery: 20,
			InitState: InitStateConfig{Position: 1},
			Params:    ParamsConfig{Stiffness: 10, Mass: 1, Masses: 10},
		},
	},
}

// GetPreset returns a copy the caller may modify, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
