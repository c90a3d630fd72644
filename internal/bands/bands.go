// Package bands maps risk strengths onto deviation bands and reporting
// tiers. Everything here is a pure lookup.
package bands

import "math"

// Interpretation keys, one per band.
const (
	BetterThanReference = "better_than_reference"
	WithinReference     = "within_reference"
	HighNormalEdge      = "high_normal_edge"
	OutsideReference    = "outside_reference"
	StrongOutlier       = "strong_outlier"
)

// Tiers.
const (
	Low    = "LOW"
	Medium = "MEDIUM"
	High   = "HIGH"
)

// Deviation is the banded view of one risk signal.
type Deviation struct {
	Band              int     `json:"band"`
	Percentile        float64 `json:"percentile"`
	PercentileZone    string  `json:"percentile_zone"`
	Visibility        string  `json:"visibility"`
	InterpretationKey string  `json:"interpretation_key"`
	Severity          string  `json:"severity"`
	ConfidenceTier    string  `json:"confidence_tier"`
	Impact            *Impact `json:"impact,omitempty"`
}

// Impact lists the body regions a risk loads.
type Impact struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
}

var bandTable = []struct {
	upper  float64
	zone   string
	interp string
}{
	{25, "p0_25", BetterThanReference},
	{75, "p25_75", WithinReference},
	{90, "p75_90", HighNormalEdge},
	{97, "p90_97", OutsideReference},
	{math.Inf(1), "p97_100", StrongOutlier},
}

// BandFor converts a percentile (0..100) to a 1..5 band.
func BandFor(p float64) int {
	for i, b := range bandTable {
		if p <= b.upper {
			return i + 1
		}
	}
	return len(bandTable)
}

// VisibilityFor is the display prominence of a band.
func VisibilityFor(band int) string {
	switch {
	case band <= 0:
		return "unknown"
	case band <= 2:
		return "low"
	case band == 3:
		return "medium"
	default:
		return "high"
	}
}

// InterpretationFor returns the interpretation key of a band.
func InterpretationFor(band int) string {
	if band < 1 || band > len(bandTable) {
		return ""
	}
	return bandTable[band-1].interp
}

// Severity tiers a signal strength.
func Severity(strength float64) string {
	switch {
	case strength >= 0.6:
		return High
	case strength >= 0.3:
		return Medium
	}
	return Low
}

// ConfidenceTier tiers a confidence value.
func ConfidenceTier(conf float64) string {
	switch {
	case conf >= 0.7:
		return High
	case conf >= 0.4:
		return Medium
	}
	return Low
}

// Deviate bands a risk signal. Strength is read as a percentile-like score
// (strength × 100).
func Deviate(riskID string, strength, confidence float64) Deviation {
	if math.IsNaN(strength) {
		strength = 0
	}
	p := math.Max(0, math.Min(100, strength*100))
	band := BandFor(p)
	d := Deviation{
		Band:              band,
		Percentile:        p,
		PercentileZone:    bandTable[band-1].zone,
		Visibility:        VisibilityFor(band),
		InterpretationKey: InterpretationFor(band),
		Severity:          Severity(strength),
		ConfidenceTier:    ConfidenceTier(confidence),
	}
	if def, ok := Benchmarks[riskID]; ok && band >= 3 {
		d.Impact = &Impact{Primary: def.Primary, Secondary: def.Secondary}
	}
	return d
}
