package config

import (
	"f1strategybot/pkg/simulator"
	"f1strategybot/pkg/tyres"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("F1STRAT_SCENARIOS_FILE", "")
	t.Setenv("F1STRAT_TOTAL_LAPS", "")
	t.Setenv("F1STRAT_POLICY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TotalLaps != DefaultTotalLaps {
		t.Errorf("expected %d laps but found %d", DefaultTotalLaps, cfg.TotalLaps)
	}
	if cfg.PitStopLoss != simulator.DefaultPitStopLoss {
		t.Errorf("expected pit stop loss %v but found %v", simulator.DefaultPitStopLoss, cfg.PitStopLoss)
	}
	if cfg.Policy != simulator.Strict {
		t.Errorf("expected strict policy but found %s", cfg.Policy)
	}
	if len(cfg.Scenarios) != 3 {
		t.Errorf("expected 3 default scenarios but found %d", len(cfg.Scenarios))
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("F1STRAT_TOTAL_LAPS", "44")
	t.Setenv("F1STRAT_PIT_STOP_LOSS", "22.5")
	t.Setenv("F1STRAT_POLICY", "lenient")
	t.Setenv("WEBSERVER_ADDRESS", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TotalLaps != 44 || cfg.PitStopLoss != 22.5 || cfg.Policy != simulator.Lenient || cfg.WebAddress != ":9090" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	sim := cfg.Simulator()
	if sim.Policy() != simulator.Lenient || sim.PitStopLoss() != 22.5 {
		t.Errorf("simulator does not follow config: %v %v", sim.Policy(), sim.PitStopLoss())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"laps not a number": {"F1STRAT_TOTAL_LAPS", "many"},
		"zero laps":         {"F1STRAT_TOTAL_LAPS", "0"},
		"negative pit loss": {"F1STRAT_PIT_STOP_LOSS", "-1"},
		"unknown policy":    {"F1STRAT_POLICY", "abort"},
		"missing file":      {"F1STRAT_SCENARIOS_FILE", "/does/not/exist.yaml"},
	}
	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoadScenariosFile(t *testing.T) {
	content := `totalLaps: 70
compounds:
  Hard: {pace: 1.40, lifespan: 45}
scenarios:
  - id: hard-only
    stints: [{compound: H, laps: 35}, {compound: H, laps: 35}]
`
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("F1STRAT_SCENARIOS_FILE", path)
	t.Setenv("F1STRAT_TOTAL_LAPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TotalLaps != 70 {
		t.Errorf("expected 70 laps from file but found %d", cfg.TotalLaps)
	}
	if cfg.Compounds[tyres.Hard].Lifespan != 45 {
		t.Errorf("expected Hard lifespan 45 but found %d", cfg.Compounds[tyres.Hard].Lifespan)
	}
	if len(cfg.Scenarios) != 1 || cfg.Scenarios[0].ID != "hard-only" {
		t.Errorf("unexpected scenarios %+v", cfg.Scenarios)
	}
}

func TestValidateUnknownCompound(t *testing.T) {
	t.Setenv("F1STRAT_SCENARIOS_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	delete(cfg.Compounds, tyres.Hard)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for scenario using a compound missing from the table")
	}
}

func TestLoadScenariosFileZeroPitStopLoss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte("pitStopLoss: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("F1STRAT_SCENARIOS_FILE", path)
	t.Setenv("F1STRAT_PIT_STOP_LOSS", "")
	t.Setenv("F1STRAT_TOTAL_LAPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PitStopLoss != 0 {
		t.Errorf("expected pit stop loss 0 from file but found %v", cfg.PitStopLoss)
	}
	if cfg.TotalLaps != DefaultTotalLaps {
		t.Errorf("expected default laps when the file omits them, found %d", cfg.TotalLaps)
	}
}

func TestLoadMaxLaps(t *testing.T) {
	t.Setenv("F1STRAT_SCENARIOS_FILE", "")
	t.Setenv("F1STRAT_TOTAL_LAPS", "80")
	t.Setenv("F1STRAT_MAX_LAPS", "70")
	if _, err := Load(); err == nil {
		t.Error("expected error when total laps exceed the limit")
	}

	t.Setenv("F1STRAT_MAX_LAPS", "100")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Simulator().MaxLaps() != 100 {
		t.Errorf("simulator does not follow F1STRAT_MAX_LAPS: %d", cfg.Simulator().MaxLaps())
	}
}
