package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"

	"github.com/actionlab/actionlab/internal/elbow"
	"github.com/actionlab/actionlab/internal/logging"
)

// Validate checks the loaded config for safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := validateAnalysisConfig(cfg.Analysis); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}

	if err := validateReportsConfig(cfg.Reports); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	if cfg.Pose.InputSize < 0 {
		return errors.New("pose.input_size must be positive")
	}
	if cfg.Pose.PresenceThreshold < 0 || cfg.Pose.PresenceThreshold > 1 {
		return fmt.Errorf("pose.presence_threshold must be in [0,1], got %v", cfg.Pose.PresenceThreshold)
	}

	if cfg.Batch.Parallelism < 0 {
		return errors.New("batch.parallelism must not be negative")
	}
	return nil
}

func validateAnalysisConfig(a AnalysisConfig) error {
	if math.IsNaN(a.DefaultFPS) || a.DefaultFPS < 0 {
		return fmt.Errorf("analysis.default_fps must be positive, got %v", a.DefaultFPS)
	}

	d := elbow.DefaultConfig()
	legal, borderline := a.Elbow.LegalDeg, a.Elbow.BorderlineDeg
	if legal == 0 {
		legal = d.LegalDeg
	}
	if borderline == 0 {
		borderline = d.BorderlineDeg
	}
	if legal < 0 || borderline < 0 {
		return errors.New("analysis.elbow thresholds must be positive")
	}
	if legal >= borderline {
		return fmt.Errorf("analysis.elbow.legal_deg must be < borderline_deg (%v >= %v)", legal, borderline)
	}

	if err := unitInterval("analysis.risk.floor", a.Risk.Floor); err != nil {
		return err
	}
	for id, f := range a.Risk.Floors {
		if err := unitInterval("analysis.risk.floors."+id, f); err != nil {
			return err
		}
	}

	for name, v := range map[string]float64{
		"analysis.events.release_visibility": a.Events.ReleaseVisibility,
		"analysis.events.foot_visibility":    a.Events.FootVisibility,
		"analysis.elbow.visibility":          a.Elbow.Visibility,
		"analysis.action.foot_visibility":    a.Action.FootVisibility,
		"analysis.action.hip_visibility":     a.Action.HipVisibility,
		"analysis.risk.visibility":           a.Risk.Visibility,
		"analysis.basics.visibility":         a.Basics.Visibility,
	} {
		if err := unitInterval(name, v); err != nil {
			return err
		}
	}
	return nil
}

func unitInterval(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0,1], got %v", field, v)
	}
	return nil
}

func validateReportsConfig(r ReportsConfig) error {
	if len(r.Sinks) == 0 {
		return nil
	}
	for i, s := range r.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("reports sink %d (file_jsonl) missing path", i)
			}
		case "webhook":
			if strings.TrimSpace(s.URL) == "" {
				return fmt.Errorf("reports sink %d (webhook) missing url", i)
			}
			u, err := url.Parse(s.URL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("reports sink %d (webhook) has invalid url", i)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return fmt.Errorf("reports sink %d (webhook) url must be http or https", i)
			}
			if err := blockPrivateHost(u.Host, s.AllowPrivateNetworks); err != nil {
				return fmt.Errorf("reports sink %d (webhook) url blocked: %w", i, err)
			}
		default:
			return fmt.Errorf("reports sink %d has unknown type %q", i, s.Type)
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}

func blockPrivateHost(hostport string, allowPrivate bool) error {
	if allowPrivate {
		return nil
	}
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if strings.EqualFold(strings.TrimSpace(host), "localhost") {
		return errors.New("private network host localhost not allowed")
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("private network IP %s not allowed", ip.String())
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
