package signal

import "math"

func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	k := make([]float64, 2*radius+1)
	for i := range k {
		x := float64(i - radius)
		k[i] = math.Exp(-0.5 * x * x / (sigma * sigma))
	}
	return k
}

// Smooth applies a Gaussian filter that only mixes valid samples. Invalid
// samples stay invalid.
func Smooth(s Series, sigma float64) Series {
	if sigma <= 0 {
		return s.Clone()
	}
	k := gaussianKernel(sigma)
	r := len(k) / 2
	out := NewSeries(s.Len())
	for i := range s.Values {
		if !s.Valid[i] {
			continue
		}
		var sum, wsum float64
		for j := -r; j <= r; j++ {
			idx := i + j
			if idx < 0 || idx >= s.Len() || !s.Valid[idx] {
				continue
			}
			w := k[j+r]
			sum += w * s.Values[idx]
			wsum += w
		}
		out.Set(i, sum/wsum)
	}
	return out
}

// GaussianMean is a centre-weighted mean of an ordered sample list. Short
// lists fall back to the plain mean.
func GaussianMean(vals []float64, sigma float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	if len(vals) < 3 || sigma <= 0 {
		return Mean(vals), true
	}
	c := len(vals) / 2
	var sum, wsum float64
	for i, v := range vals {
		d := float64(i-c) / sigma
		w := math.Exp(-0.5 * d * d)
		sum += w * v
		wsum += w
	}
	return sum / wsum, true
}
