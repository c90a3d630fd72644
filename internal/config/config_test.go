package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/google/go-cmp/cmp"

	"github.com/actionlab/actionlab/internal/elbow"
	"github.com/actionlab/actionlab/internal/events"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Analysis.DefaultFPS != 25 || cfg.Analysis.Risk.Floor != 0.15 {
		t.Fatalf("unexpected defaults: %+v", cfg.Analysis)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actionlab.yaml")
	data := `
analysis:
  default_fps: 50
  elbow:
    legal_deg: 12
    borderline_deg: 18
  risk:
    floors:
      trunk_rotation_snap: 0.2
logging:
  level: debug
  format: json
reports:
  enabled: true
  sinks:
    - type: file_jsonl
      path: /tmp/reports.jsonl
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analysis.DefaultFPS != 50 {
		t.Fatalf("default_fps = %v", cfg.Analysis.DefaultFPS)
	}
	if cfg.Analysis.Elbow.LegalDeg != 12 || cfg.Analysis.Elbow.BorderlineDeg != 18 {
		t.Fatalf("elbow = %+v", cfg.Analysis.Elbow)
	}
	if cfg.Analysis.Risk.Floor != 0.15 || cfg.Analysis.Risk.Floors["trunk_rotation_snap"] != 0.2 {
		t.Fatalf("risk = %+v", cfg.Analysis.Risk)
	}
	if cfg.Analysis.Events != events.DefaultConfig() {
		t.Fatalf("events should take defaults")
	}
	if cfg.Reports.Sinks[0].TimeoutMs != 2000 || cfg.Reports.Workers != 2 {
		t.Fatalf("reports = %+v", cfg.Reports)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("analysis: [1, 2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, env.Options{Environment: map[string]string{
		"ACTIONLAB_LOG_LEVEL":            "debug",
		"ACTIONLAB_TELEMETRY_ENABLED":    "true",
		"ACTIONLAB_TELEMETRY_ENDPOINT":   "collector:4317",
		"ACTIONLAB_DEFAULT_FPS":          "60",
		"ACTIONLAB_ELBOW_BORDERLINE_DEG": "22",
		"ACTIONLAB_RISK_FLOOR":           "0.1",
	}})
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Telemetry.Enabled || cfg.Telemetry.Endpoint != "collector:4317" {
		t.Fatalf("logging/telemetry = %+v %+v", cfg.Logging, cfg.Telemetry)
	}
	if cfg.Analysis.DefaultFPS != 60 || cfg.Analysis.Elbow.BorderlineDeg != 22 {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Analysis.Elbow.LegalDeg != elbow.DefaultConfig().LegalDeg {
		t.Fatalf("unset variable changed legal_deg")
	}
	if cfg.Analysis.Risk.Floor != 0.1 {
		t.Fatalf("risk floor = %v", cfg.Analysis.Risk.Floor)
	}
}

func TestApplyEnvRejectsBadValue(t *testing.T) {
	err := applyEnv(Default(), env.Options{Environment: map[string]string{"ACTIONLAB_DEFAULT_FPS": "fast"}})
	if err == nil {
		t.Fatalf("expected parse error")
	}
}
