// Package report delivers analysis reports to external sinks without
// blocking the analysis path.
package report

import (
	"time"
)

// Version is the report schema version.
const Version = "actionlab.report.v1"

// Summary is the headline of a run, safe to index without the full result.
type Summary struct {
	RiskLevel      string  `json:"risk_level"`
	DominantRegion string  `json:"dominant_region,omitempty"`
	MaxStrength    float64 `json:"max_signal_strength"`
	ElbowVerdict   string  `json:"elbow_verdict"`
	ActionType     string  `json:"action_type"`
	EventCount     int     `json:"event_count"`
}

// Event is the canonical report envelope.
type Event struct {
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	RunID     string            `json:"run_id"`
	Meta      map[string]string `json:"meta,omitempty"`
	Summary   Summary           `json:"summary"`
	Result    any               `json:"result"`
}

// NewEvent wraps a result for delivery.
func NewEvent(runID string, summary Summary, result any, meta map[string]string) *Event {
	m := make(map[string]string, len(meta))
	for k, v := range meta {
		m[k] = v
	}
	return &Event{
		Version:   Version,
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		Meta:      m,
		Summary:   summary,
		Result:    result,
	}
}
