package main

import (
	"bytes"
	"f1strategybot/pkg/config"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("F1STRAT_ENV", "test")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulateCustomStrategy(t *testing.T) {
	out, err := execute(t, "simulate", "--laps", "58", "--strategy", "Soft:25 Hard:33", "--stints")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Soft(25) -> Hard(33)", "completada", "SSSSSSSSSSSSSSSSSSSS|HHH"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCompareKeepsScenarioOrder(t *testing.T) {
	out, err := execute(t, "compare", "--policy", "lenient")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := strings.Index(out, "One-Stop: Soft -> Medium")
	second := strings.Index(out, "Two-Stop: Soft -> Soft -> Medium")
	third := strings.Index(out, "One-Stop: Medium -> Hard")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing scenarios in output:\n%s", out)
	}
	if !(first < second && second < third) {
		t.Errorf("scenarios out of order:\n%s", out)
	}
}

func TestChartWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.svg")
	if _, err := execute(t, "chart", "one-stop-mh", "--out", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading chart: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("expected an svg document")
	}
}

func TestSelectScenarios(t *testing.T) {
	t.Setenv("F1STRAT_ENV", "test")
	var err error
	if cfg, err = config.Load(); err != nil {
		t.Fatalf("loading config: %v", err)
	}

	all, err := selectScenarios(nil, "")
	if err != nil || len(all) != len(cfg.Scenarios) {
		t.Errorf("expected every scenario, got %d (%v)", len(all), err)
	}

	picked, err := selectScenarios([]string{"one-stop-mh"}, "")
	if err != nil || len(picked) != 1 || picked[0].ID != "one-stop-mh" {
		t.Errorf("unexpected selection %v (%v)", picked, err)
	}

	if _, err := selectScenarios([]string{"nope"}, ""); err == nil {
		t.Error("expected error for unknown scenario")
	}

	custom, err := selectScenarios([]string{"one-stop-mh"}, "S M")
	if err != nil || len(custom) != 1 || custom[0].ID != "custom" {
		t.Errorf("custom strategy should win over ids, got %v (%v)", custom, err)
	}

	if _, err := selectScenarios(nil, "Soft:x"); err == nil {
		t.Error("expected parse error")
	}
}
