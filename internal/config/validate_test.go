package config

import (
	"strings"
	"testing"
)

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "elbow thresholds inverted",
			mutate: func(c *Config) { c.Analysis.Elbow.LegalDeg = 25 },
			want:   "analysis.elbow.legal_deg",
		},
		{
			name:   "risk floor out of range",
			mutate: func(c *Config) { c.Analysis.Risk.Floor = 1.5 },
			want:   "analysis.risk.floor",
		},
		{
			name:   "per-risk floor out of range",
			mutate: func(c *Config) { c.Analysis.Risk.Floors = map[string]float64{"knee_brace_failure": -0.1} },
			want:   "analysis.risk.floors.knee_brace_failure",
		},
		{
			name:   "visibility out of range",
			mutate: func(c *Config) { c.Analysis.Events.FootVisibility = 2 },
			want:   "analysis.events.foot_visibility",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "loud" },
			want:   "logging.level",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
		{
			name:   "file sink without path",
			mutate: func(c *Config) { c.Reports.Sinks = []SinkConfig{{Type: "file_jsonl"}} },
			want:   "missing path",
		},
		{
			name:   "unknown sink type",
			mutate: func(c *Config) { c.Reports.Sinks = []SinkConfig{{Type: "kafka"}} },
			want:   "unknown type",
		},
		{
			name:   "webhook invalid url",
			mutate: func(c *Config) { c.Reports.Sinks = []SinkConfig{{Type: "webhook", URL: "::://bad"}} },
			want:   "invalid url",
		},
		{
			name:   "webhook private host blocked",
			mutate: func(c *Config) { c.Reports.Sinks = []SinkConfig{{Type: "webhook", URL: "http://127.0.0.1:9000/hook"}} },
			want:   "not allowed",
		},
		{
			name: "telemetry without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			want: "endpoint",
		},
		{
			name: "telemetry bad protocol",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = "collector:4317"
				c.Telemetry.Protocol = "udp"
			},
			want: "telemetry.protocol",
		},
		{
			name:   "presence threshold",
			mutate: func(c *Config) { c.Pose.PresenceThreshold = 3 },
			want:   "pose.presence_threshold",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			} else if !contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidateOK(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}

	loopbackOK := Default()
	loopbackOK.Reports.Sinks = []SinkConfig{{Type: "webhook", URL: "http://127.0.0.1:9000/hook", AllowPrivateNetworks: true}}
	if err := Validate(loopbackOK); err != nil {
		t.Fatalf("expected loopback allowed when allow_private_networks=true, got %v", err)
	}

	partial := Default()
	partial.Analysis.Elbow.BorderlineDeg = 0
	partial.Analysis.Elbow.LegalDeg = 12
	if err := Validate(partial); err != nil {
		t.Fatalf("zero borderline should take the default, got %v", err)
	}

	if err := Validate(nil); err == nil {
		t.Fatalf("nil config accepted")
	}
}

func contains(s, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}
