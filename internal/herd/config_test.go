package herd

import (
	"encoding/json"
	"errors"
	"testing"
)

func validRunConfig() RunConfig {
	return RunConfig{
		Width:                10,
		Height:               10,
		InfectionProbability: 0.25,
		InfectiousDuration:   5,
		MortalityProbability: 0.05,
		VaccinatedFraction:   0.5,
		Seed:                 42,
	}
}

func TestValidateRunConfig_OK(t *testing.T) {
	if err := ValidateRunConfig(validRunConfig()); err != nil {
		t.Fatalf("Expected valid config, got error: %v", err)
	}

	cfg := validRunConfig()
	cfg.Neighborhood = "von-neumann"
	if err := ValidateRunConfig(cfg); err != nil {
		t.Errorf("Expected von-neumann config to validate, got: %v", err)
	}
}

func TestValidateRunConfig_BadDimensions(t *testing.T) {
	cfg := validRunConfig()
	cfg.Width = 0

	err := ValidateRunConfig(cfg)
	if err == nil {
		t.Fatal("Expected error for zero width")
	}
	var derr *DimensionError
	if !errors.As(err, &derr) {
		t.Errorf("Expected DimensionError, got %T: %v", err, err)
	}
}

func TestValidateRunConfig_BadNeighborhood(t *testing.T) {
	cfg := validRunConfig()
	cfg.Neighborhood = "hex"

	err := ValidateRunConfig(cfg)
	if err == nil {
		t.Fatal("Expected error for unknown neighborhood")
	}
	var perr *ParameterError
	if !errors.As(err, &perr) || perr.Name != "neighborhood" {
		t.Errorf("Expected neighborhood ParameterError, got %v", err)
	}
}

func TestValidateRunConfig_CollectsAllIssues(t *testing.T) {
	cfg := RunConfig{
		Width:                -1,
		Height:               5,
		InfectionProbability: 2,
		InfectiousDuration:   0,
	}

	err := ValidateRunConfig(cfg)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
	if len(verr.Issues) != 3 {
		t.Errorf("Expected 3 issues (dimensions, infection, duration), got %d: %v",
			len(verr.Issues), verr)
	}
}

func TestRunConfig_JSONRoundTrip(t *testing.T) {
	raw := `{
		"width": 37, "height": 33,
		"infection_probability": 0.9,
		"infectious_duration": 3,
		"mortality_probability": 0.1,
		"vaccinated_fraction": 0.5,
		"neighborhood": "moore",
		"seed": 7
	}`

	var cfg RunConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("Failed to parse run config JSON: %v", err)
	}
	if cfg.Width != 37 || cfg.Height != 33 || cfg.Seed != 7 {
		t.Errorf("Unexpected decoded config: %+v", cfg)
	}
	if err := ValidateRunConfig(cfg); err != nil {
		t.Errorf("Decoded config failed validation: %v", err)
	}
}

func TestBuildGridFromConfig(t *testing.T) {
	grid, err := BuildGridFromConfig(validRunConfig())
	if err != nil {
		t.Fatalf("BuildGridFromConfig failed: %v", err)
	}
	if grid.Width() != 10 || grid.Height() != 10 {
		t.Errorf("Grid dimensions %dx%d, want 10x10", grid.Width(), grid.Height())
	}
	if grid.Seed() != 42 {
		t.Errorf("Grid seed %d, want 42", grid.Seed())
	}
	if grid.Counts().Infected != 1 {
		t.Errorf("Expected one seeded infection, got %d", grid.Counts().Infected)
	}

	if _, err := BuildGridFromConfig(RunConfig{}); err == nil {
		t.Error("Expected zero config to fail validation")
	}
}

func TestBuildGridFromConfig_DefaultSeed(t *testing.T) {
	cfg := validRunConfig()
	cfg.Seed = 0

	grid, err := BuildGridFromConfig(cfg)
	if err != nil {
		t.Fatalf("BuildGridFromConfig failed: %v", err)
	}
	if grid.Seed() == 0 {
		t.Error("Expected a clock-derived seed for seed 0")
	}
}
