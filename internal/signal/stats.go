package signal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func sorted(vals []float64) []float64 {
	s := make([]float64, len(vals))
	copy(s, vals)
	sort.Float64s(s)
	return s
}

// Percentile returns the q-th percentile (0..100) by linear interpolation of
// the empirical distribution.
func Percentile(vals []float64, q float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s := sorted(vals)
	p := math.Min(1, math.Max(0, q/100))
	if p == 0 {
		return s[0], true
	}
	return stat.Quantile(p, stat.LinInterp, s, nil), true
}

// Median averages the two middle samples for even counts.
func Median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s := sorted(vals)
	lower := stat.Quantile(0.5, stat.Empirical, s, nil)
	if len(s)%2 == 1 {
		return lower, true
	}
	return (lower + s[len(s)/2]) / 2, true
}

// Mean of vals, zero for an empty slice.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// PopStdDev is the population standard deviation.
func PopStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(vals, nil))
}

// Max returns the maximum and its position.
func Max(vals []float64) (float64, int, bool) {
	if len(vals) == 0 {
		return 0, -1, false
	}
	i := floats.MaxIdx(vals)
	return vals[i], i, true
}

// Min returns the minimum and its position.
func Min(vals []float64) (float64, int, bool) {
	if len(vals) == 0 {
		return 0, -1, false
	}
	i := floats.MinIdx(vals)
	return vals[i], i, true
}

// MADFilter drops samples whose modified z-score 0.6745·|v−median|/MAD
// exceeds z. Order is preserved. The input is returned unchanged when there
// are fewer than five samples, when MAD is zero, or when fewer than three
// samples would survive.
func MADFilter(vals []float64, z float64) []float64 {
	if len(vals) < 5 || z <= 0 {
		return append([]float64(nil), vals...)
	}
	med, _ := Median(vals)
	dev := make([]float64, len(vals))
	for i, v := range vals {
		dev[i] = math.Abs(v - med)
	}
	mad, _ := Median(dev)
	if mad < 1e-9 {
		return append([]float64(nil), vals...)
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if math.Abs(0.6745*(v-med)/mad) <= z {
			out = append(out, v)
		}
	}
	if len(out) < 3 {
		return append([]float64(nil), vals...)
	}
	return out
}

// Clamp01 bounds v to [0, 1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Clamp bounds v to [lo, hi]; NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
