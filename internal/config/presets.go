package config

import "sort"

var Presets = map[string]*Config{
	"pi": {
		Qubit:  QubitConfig{Freq: 5.0, Rabi: 0.1, Duration: 32.0},
		Pulse:  PulseConfig{Amp: 1.0, Width: 4.0},
		Solver: SolverConfig{Method: "dopri5", AbsTol: 1e-10, RelTol: 1e-8, Points: 201},
	},
	"half-pi": {
		Qubit:  QubitConfig{Freq: 5.0, Rabi: 0.1, Duration: 32.0},
		Pulse:  PulseConfig{Amp: 0.5, Width: 4.0},
		Solver: SolverConfig{Method: "dopri5", AbsTol: 1e-10, RelTol: 1e-8, Points: 201},
	},
	"weak-drive": {
		Qubit:  QubitConfig{Freq: 5.0, Rabi: 0.02, Duration: 64.0},
		Pulse:  PulseConfig{Amp: 1.0, Width: 8.0},
		Solver: SolverConfig{Method: "dopri5", AbsTol: 1e-10, RelTol: 1e-8, Points: 401},
	},
	"coarse": {
		Qubit:  QubitConfig{Freq: 5.0, Rabi: 0.1, Duration: 32.0},
		Pulse:  PulseConfig{Amp: 1.0, Width: 4.0},
		Solver: SolverConfig{Method: "rk4", AbsTol: 1e-8, RelTol: 1e-6, Points: 101},
	},
}

// GetPreset returns a copy of the named preset, or nil when unknown.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
