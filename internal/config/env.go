package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that override file values.
// Pointer fields stay nil when unset.
type envOverrides struct {
	LogLevel           string   `env:"ACTIONLAB_LOG_LEVEL"`
	LogFormat          string   `env:"ACTIONLAB_LOG_FORMAT"`
	TelemetryEnabled   *bool    `env:"ACTIONLAB_TELEMETRY_ENABLED"`
	TelemetryEndpoint  string   `env:"ACTIONLAB_TELEMETRY_ENDPOINT"`
	TelemetryProtocol  string   `env:"ACTIONLAB_TELEMETRY_PROTOCOL"`
	PoseBundleDir      string   `env:"ACTIONLAB_POSE_BUNDLE_DIR"`
	DefaultFPS         float64  `env:"ACTIONLAB_DEFAULT_FPS"`
	ElbowLegalDeg      float64  `env:"ACTIONLAB_ELBOW_LEGAL_DEG"`
	ElbowBorderlineDeg float64  `env:"ACTIONLAB_ELBOW_BORDERLINE_DEG"`
	RiskFloor          *float64 `env:"ACTIONLAB_RISK_FLOOR"`
}

// ApplyEnv overlays ACTIONLAB_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, env.Options{})
}

func applyEnv(cfg *Config, opts env.Options) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.TelemetryEnabled != nil {
		cfg.Telemetry.Enabled = *o.TelemetryEnabled
	}
	if o.TelemetryEndpoint != "" {
		cfg.Telemetry.Endpoint = o.TelemetryEndpoint
	}
	if o.TelemetryProtocol != "" {
		cfg.Telemetry.Protocol = o.TelemetryProtocol
	}
	if o.PoseBundleDir != "" {
		cfg.Pose.BundleDir = o.PoseBundleDir
	}
	if o.DefaultFPS > 0 {
		cfg.Analysis.DefaultFPS = o.DefaultFPS
	}
	if o.ElbowLegalDeg > 0 {
		cfg.Analysis.Elbow.LegalDeg = o.ElbowLegalDeg
	}
	if o.ElbowBorderlineDeg > 0 {
		cfg.Analysis.Elbow.BorderlineDeg = o.ElbowBorderlineDeg
	}
	if o.RiskFloor != nil {
		cfg.Analysis.Risk.Floor = *o.RiskFloor
	}
	return nil
}
