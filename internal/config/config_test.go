package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Qubit.Freq <= 0 {
		t.Error("freq should be positive")
	}
	if cfg.Pulse.Width <= 0 {
		t.Error("width should be positive")
	}
	if cfg.Solver.Method != "dopri5" {
		t.Errorf("expected method dopri5, got %s", cfg.Solver.Method)
	}
	if cfg.Solver.Points < 2 {
		t.Errorf("expected at least 2 grid points, got %d", cfg.Solver.Points)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Pulse.Amp = 0.75
	cfg.Qubit.Rabi = 0.05

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Pulse.Amp != 0.75 {
		t.Errorf("amp %f, want 0.75", loaded.Pulse.Amp)
	}
	if loaded.Qubit.Rabi != 0.05 {
		t.Errorf("rabi %f, want 0.05", loaded.Qubit.Rabi)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("pulse:\n  amp: 2.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pulse.Amp != 2.0 {
		t.Errorf("amp %f, want 2.0", cfg.Pulse.Amp)
	}
	if cfg.Qubit.Freq != DefaultFreq {
		t.Errorf("freq %f, want default %f", cfg.Qubit.Freq, DefaultFreq)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pi")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Pulse.Amp != 1.0 {
		t.Errorf("expected amp 1.0, got %f", cfg.Pulse.Amp)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	found := false
	for _, n := range names {
		if n == "pi" {
			found = true
		}
	}
	if !found {
		t.Error("expected pi preset in list")
	}
}
