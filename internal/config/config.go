package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/actionlab/actionlab/internal/action"
	"github.com/actionlab/actionlab/internal/basics"
	"github.com/actionlab/actionlab/internal/elbow"
	"github.com/actionlab/actionlab/internal/events"
	"github.com/actionlab/actionlab/internal/risk"
)

// Config holds ActionLab configuration.
type Config struct {
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Reports   ReportsConfig   `yaml:"reports"`
	Pose      PoseConfig      `yaml:"pose"`
	Batch     BatchConfig     `yaml:"batch"`
}

// AnalysisConfig carries the per-component tunables.
type AnalysisConfig struct {
	DefaultFPS float64       `yaml:"default_fps"`
	Events     events.Config `yaml:"events"`
	Elbow      elbow.Config  `yaml:"elbow"`
	Action     action.Config `yaml:"action"`
	Risk       risk.Config   `yaml:"risk"`
	Basics     basics.Config `yaml:"basics"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service_name"`
}

type ReportsConfig struct {
	Enabled   bool         `yaml:"enabled"`
	QueueSize int          `yaml:"queue_size"`
	Workers   int          `yaml:"workers"`
	Sinks     []SinkConfig `yaml:"sinks"`
}

type SinkConfig struct {
	Type                 string `yaml:"type"` // file_jsonl | webhook
	Path                 string `yaml:"path"`
	URL                  string `yaml:"url"`
	TimeoutMs            int    `yaml:"timeout_ms"`
	AllowPrivateNetworks bool   `yaml:"allow_private_networks"`
}

type PoseConfig struct {
	BundleDir         string  `yaml:"bundle_dir"`
	ModelFile         string  `yaml:"model_file"`
	LibraryPath       string  `yaml:"library_path"`
	InputSize         int     `yaml:"input_size"`
	PresenceThreshold float64 `yaml:"presence_threshold"`
}

type BatchConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Analysis.DefaultFPS <= 0 {
		cfg.Analysis.DefaultFPS = 25
	}
	if cfg.Analysis.Events == (events.Config{}) {
		cfg.Analysis.Events = events.DefaultConfig()
	}
	if cfg.Analysis.Elbow == (elbow.Config{}) {
		cfg.Analysis.Elbow = elbow.DefaultConfig()
	}
	if cfg.Analysis.Action == (action.Config{}) {
		cfg.Analysis.Action = action.DefaultConfig()
	}
	if cfg.Analysis.Basics == (basics.Config{}) {
		cfg.Analysis.Basics = basics.DefaultConfig()
	}
	if cfg.Analysis.Risk.Floor == 0 {
		floors := cfg.Analysis.Risk.Floors
		cfg.Analysis.Risk = risk.DefaultConfig()
		cfg.Analysis.Risk.Floors = floors
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "actionlab"
	}

	if cfg.Reports.QueueSize <= 0 {
		cfg.Reports.QueueSize = 256
	}
	if cfg.Reports.Workers <= 0 {
		cfg.Reports.Workers = 2
	}
	for i := range cfg.Reports.Sinks {
		if cfg.Reports.Sinks[i].TimeoutMs <= 0 {
			cfg.Reports.Sinks[i].TimeoutMs = 2000
		}
	}

	if cfg.Pose.BundleDir == "" {
		cfg.Pose.BundleDir = "models/pose"
	}
	if cfg.Pose.ModelFile == "" {
		cfg.Pose.ModelFile = "pose_landmark.onnx"
	}
	if cfg.Pose.InputSize <= 0 {
		cfg.Pose.InputSize = 256
	}
	if cfg.Pose.PresenceThreshold <= 0 {
		cfg.Pose.PresenceThreshold = 0.5
	}

	if cfg.Batch.Parallelism <= 0 {
		cfg.Batch.Parallelism = 4
	}
}
