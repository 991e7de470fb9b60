// Package config loads and saves simulation configuration as YAML and
// provides named presets for common pulse experiments.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFreq     = 5.0
	DefaultRabi     = 0.1
	DefaultDuration = 32.0
	DefaultAmp      = 1.0
	DefaultWidth    = 4.0
	DefaultMethod   = "dopri5"
	DefaultAbsTol   = 1e-10
	DefaultRelTol   = 1e-8
	DefaultPoints   = 201
)

type Config struct {
	Qubit  QubitConfig  `yaml:"qubit"`
	Pulse  PulseConfig  `yaml:"pulse"`
	Solver SolverConfig `yaml:"solver"`
}

type QubitConfig struct {
	Freq     float64 `yaml:"freq"`
	Rabi     float64 `yaml:"rabi"`
	Duration float64 `yaml:"duration"`
}

type PulseConfig struct {
	Amp   float64 `yaml:"amp"`
	Width float64 `yaml:"width"`
}

type SolverConfig struct {
	Method string  `yaml:"method"`
	AbsTol float64 `yaml:"abs_tol"`
	RelTol float64 `yaml:"rel_tol"`
	Points int     `yaml:"points"`
}

func DefaultConfig() *Config {
	return &Config{
		Qubit: QubitConfig{
			Freq:     DefaultFreq,
			Rabi:     DefaultRabi,
			Duration: DefaultDuration,
		},
		Pulse: PulseConfig{
			Amp:   DefaultAmp,
			Width: DefaultWidth,
		},
		Solver: SolverConfig{
			Method: DefaultMethod,
			AbsTol: DefaultAbsTol,
			RelTol: DefaultRelTol,
			Points: DefaultPoints,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
