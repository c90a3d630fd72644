package signal

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
)

func seriesOf(vals ...float64) Series {
	s := NewSeries(len(vals))
	for i, v := range vals {
		if !math.IsNaN(v) {
			s.Set(i, v)
		}
	}
	return s
}

func TestEnforceContinuityClampsSpike(t *testing.T) {
	out := EnforceContinuity(seriesOf(20, 90, 20), 25)
	want := []float64{20, 45, 20}
	if diff := cmp.Diff(want, out.Values); diff != "" {
		t.Fatalf("clamped values mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < out.Len(); i++ {
		if d := math.Abs(out.Values[i] - out.Values[i-1]); d > 25+1e-9 {
			t.Fatalf("jump %d->%d is %.2f", i-1, i, d)
		}
	}
}

func TestEnforceContinuityKeepsPrevAcrossGaps(t *testing.T) {
	out := EnforceContinuity(seriesOf(20, math.NaN(), 100), 25)
	if out.Valid[1] {
		t.Fatalf("gap must stay invalid")
	}
	if out.Values[2] != 45 {
		t.Fatalf("expected clamp against last valid sample, got %.2f", out.Values[2])
	}
}

func TestVelocityNeedsBothNeighbours(t *testing.T) {
	v := Velocity(seriesOf(0, 1, math.NaN(), 3, 5), 10)
	want := []bool{false, true, false, false, true}
	if diff := cmp.Diff(want, v.Valid); diff != "" {
		t.Fatalf("validity mismatch (-want +got):\n%s", diff)
	}
	if v.Values[1] != 10 || v.Values[4] != 20 {
		t.Fatalf("unexpected velocities %v", v.Values)
	}
}

func TestSmoothPreservesConstantAndMask(t *testing.T) {
	s := seriesOf(3, 3, math.NaN(), 3, 3, 3)
	out := Smooth(s, 1.5)
	for i := range out.Values {
		if out.Valid[i] != s.Valid[i] {
			t.Fatalf("mask changed at %d", i)
		}
		if out.Valid[i] && math.Abs(out.Values[i]-3) > 1e-9 {
			t.Fatalf("constant series changed at %d: %.4f", i, out.Values[i])
		}
	}
}

func TestMedian(t *testing.T) {
	if m, _ := Median([]float64{5, 1, 3}); m != 3 {
		t.Fatalf("odd median = %.2f", m)
	}
	if m, _ := Median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Fatalf("even median = %.2f", m)
	}
	if _, ok := Median(nil); ok {
		t.Fatalf("empty median should be absent")
	}
}

func TestPercentileBounds(t *testing.T) {
	vals := []float64{10, 20, 30, 40, 50}
	p90, ok := Percentile(vals, 90)
	if !ok || p90 < 40 || p90 > 50 {
		t.Fatalf("p90 out of range: %.2f", p90)
	}
	if p0, _ := Percentile(vals, 0); p0 != 10 {
		t.Fatalf("p0 = %.2f", p0)
	}
	if p100, _ := Percentile(vals, 100); p100 != 50 {
		t.Fatalf("p100 = %.2f", p100)
	}
}

func TestMADFilterDropsOutlier(t *testing.T) {
	vals := []float64{10, 11, 10, 12, 11, 10, 95}
	got := MADFilter(vals, 6)
	want := []float64{10, 11, 10, 12, 11, 10}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMADFilterShortOrFlat(t *testing.T) {
	short := []float64{1, 100, 2}
	if got := MADFilter(short, 6); len(got) != 3 {
		t.Fatalf("short input should pass through, got %v", got)
	}
	flat := []float64{5, 5, 5, 5, 5, 80}
	if got := MADFilter(flat, 6); len(got) != len(flat) {
		t.Fatalf("zero MAD should pass through, got %v", got)
	}
}

func TestInteriorAngle(t *testing.T) {
	ang, ok := InteriorAngle(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0})
	if !ok || math.Abs(ang-90) > 1e-9 {
		t.Fatalf("right angle = %.4f ok=%v", ang, ok)
	}
	if _, ok := InteriorAngle(mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}); ok {
		t.Fatalf("degenerate segment should be rejected")
	}
}

func TestFoldedAngle(t *testing.T) {
	cases := []struct {
		b    mgl64.Vec2
		want float64
	}{
		{mgl64.Vec2{1, 0}, 0},
		{mgl64.Vec2{-1, 0}, 0},
		{mgl64.Vec2{0, 1}, 90},
		{mgl64.Vec2{-1, 1}, 45},
		{mgl64.Vec2{1, -1}, 45},
	}
	for _, tc := range cases {
		if got := FoldedAngle(mgl64.Vec2{}, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("FoldedAngle(%v)=%.4f want %.4f", tc.b, got, tc.want)
		}
	}
}

func TestUnwrap(t *testing.T) {
	out := Unwrap(seriesOf(3.0, -3.0))
	if math.Abs(out.Values[1]-(2*math.Pi-3.0)) > 1e-9 {
		t.Fatalf("unwrap = %.4f", out.Values[1])
	}
}

func TestGaussianMeanCentreWeighted(t *testing.T) {
	m, ok := GaussianMean([]float64{0, 10, 0}, 1)
	if !ok || m <= 10.0/3 {
		t.Fatalf("centre sample should dominate, got %.3f", m)
	}
	if m, _ := GaussianMean([]float64{2, 4}, 1); m != 3 {
		t.Fatalf("short list mean = %.3f", m)
	}
}

func TestFrames(t *testing.T) {
	if got := Frames(30, 0.05, 2); got != 2 {
		t.Fatalf("Frames(30,0.05,2)=%d", got)
	}
	if got := Frames(60, 0.1, 4); got != 6 {
		t.Fatalf("Frames(60,0.1,4)=%d", got)
	}
}
