// Package signal turns landmark frames into scalar time series and provides
// the smoothing and robust statistics every analysis stage shares.
package signal

import "math"

// Series is a per-frame scalar signal with a validity mask. Invalid entries
// hold zero and are never filled in.
type Series struct {
	Values []float64
	Valid  []bool
}

// NewSeries returns an all-invalid series of length n.
func NewSeries(n int) Series {
	if n < 0 {
		n = 0
	}
	return Series{Values: make([]float64, n), Valid: make([]bool, n)}
}

// Len is the frame count.
func (s Series) Len() int { return len(s.Values) }

// At returns the sample at i when it exists and is valid.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.Values) || !s.Valid[i] {
		return 0, false
	}
	return s.Values[i], true
}

// Set stores a valid sample. NaN and Inf are rejected.
func (s Series) Set(i int, v float64) {
	if i < 0 || i >= len(s.Values) || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	s.Values[i] = v
	s.Valid[i] = true
}

// Count returns the number of valid samples.
func (s Series) Count() int {
	n := 0
	for _, ok := range s.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Window returns the valid values in [lo, hi] in frame order, together with
// their frame indices.
func (s Series) Window(lo, hi int) (vals []float64, frames []int) {
	lo, hi = clampRange(lo, hi, s.Len())
	for i := lo; i <= hi; i++ {
		if s.Valid[i] {
			vals = append(vals, s.Values[i])
			frames = append(frames, i)
		}
	}
	return vals, frames
}

// Clone copies the series.
func (s Series) Clone() Series {
	out := NewSeries(s.Len())
	copy(out.Values, s.Values)
	copy(out.Valid, s.Valid)
	return out
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// Velocity is the first difference scaled by fps. A sample is valid only
// when both neighbours are.
func Velocity(s Series, fps float64) Series {
	out := NewSeries(s.Len())
	for i := 1; i < s.Len(); i++ {
		if s.Valid[i] && s.Valid[i-1] {
			out.Set(i, (s.Values[i]-s.Values[i-1])*fps)
		}
	}
	return out
}

// EnforceContinuity soft-clamps per-frame changes larger than maxJump to
// prev ± maxJump. Invalid samples are skipped without resetting prev.
func EnforceContinuity(s Series, maxJump float64) Series {
	out := s.Clone()
	if maxJump <= 0 {
		return out
	}
	havePrev := false
	prev := 0.0
	for i, v := range out.Values {
		if !out.Valid[i] {
			continue
		}
		if havePrev {
			if d := v - prev; math.Abs(d) > maxJump {
				v = prev + math.Copysign(maxJump, d)
				out.Values[i] = v
			}
		}
		prev = v
		havePrev = true
	}
	return out
}

// Unwrap removes 2π jumps between consecutive valid angle samples.
func Unwrap(s Series) Series {
	out := s.Clone()
	havePrev := false
	prev := 0.0
	for i, v := range out.Values {
		if !out.Valid[i] {
			continue
		}
		if havePrev {
			for v-prev > math.Pi {
				v -= 2 * math.Pi
			}
			for v-prev < -math.Pi {
				v += 2 * math.Pi
			}
			out.Values[i] = v
		}
		prev = v
		havePrev = true
	}
	return out
}

// Frames converts a duration to a frame count, never below min.
func Frames(fps, seconds float64, min int) int {
	n := int(math.Round(fps * seconds))
	if n < min {
		return min
	}
	return n
}

// SigmaFrames is an fps-scaled smoothing width in frames, never below min.
func SigmaFrames(fps, seconds, min float64) float64 {
	return math.Max(min, fps*seconds)
}
