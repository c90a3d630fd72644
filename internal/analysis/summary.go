package analysis

import (
	"github.com/actionlab/actionlab/internal/bands"
	"github.com/actionlab/actionlab/internal/report"
)

// Risk levels by maximum signal strength.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"

	noRegion = "none"
)

// RiskLevel maps the strongest signal to low, moderate or high.
func RiskLevel(maxStrength float64) string {
	switch {
	case maxStrength >= 0.7:
		return LevelHigh
	case maxStrength >= 0.4:
		return LevelModerate
	}
	return LevelLow
}

// summarize aggregates the run. The dominant region is the primary region
// carrying the highest supported signal; unsupported signals (confidence
// zero) do not load any region.
func summarize(res Result) report.Summary {
	s := report.Summary{
		ElbowVerdict:   string(res.Elbow.Verdict),
		ActionType:     res.Action.Type,
		EventCount:     res.Events.Count(),
		DominantRegion: noRegion,
	}

	loads := map[string]float64{}
	var order []string
	for _, r := range res.Risks {
		if r.Strength > s.MaxStrength {
			s.MaxStrength = r.Strength
		}
		if r.Confidence <= 0 {
			continue
		}
		def, ok := bands.Benchmarks[string(r.ID)]
		if !ok || len(def.Primary) == 0 {
			continue
		}
		region := def.Primary[0]
		if _, seen := loads[region]; !seen {
			order = append(order, region)
		}
		if r.Strength > loads[region] {
			loads[region] = r.Strength
		}
	}
	best := -1.0
	for _, region := range order {
		if loads[region] > best {
			best = loads[region]
			s.DominantRegion = region
		}
	}
	s.RiskLevel = RiskLevel(s.MaxStrength)
	return s
}
