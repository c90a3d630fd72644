package pose

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeShapes(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		fps     float64
		hand    string
		frames  int
		missing []int
	}{
		{
			name:   "canonical",
			in:     `{"fps":30,"hand":"R","frames":[{"frame":0,"landmarks":null},{"frame":1,"landmarks":[{"x":0.1,"y":0.2,"visibility":0.9}]}]}`,
			fps:    30,
			hand:   "R",
			frames: 2, missing: []int{0},
		},
		{
			name:   "pose_frames with arrays",
			in:     `{"fps":25,"pose_frames":[[[0.1,0.2,0.0,0.8]],null]}`,
			fps:    25,
			frames: 2, missing: []int{1},
		},
		{
			name:   "bare list",
			in:     `[null, {"landmarks":[[0.3,0.4]]}, []]`,
			frames: 3, missing: []int{0, 2},
		},
		{
			name:   "index map",
			in:     `{"2":null,"0":{"landmarks":[[0.1,0.1]]},"1":{"landmarks":[[0.2,0.2]]}}`,
			frames: 3, missing: []int{2},
		},
		{
			name:   "legacy named",
			in:     `{"hand":"L","frames":[{"frame":7,"RIGHT_WRIST":{"x":0.6,"y":0.3,"vis":0.7},"timestamp":12}]}`,
			hand:   "L",
			frames: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clip, err := Decode(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if clip.FPS != tc.fps || clip.Hand != tc.hand || len(clip.Frames) != tc.frames {
				t.Fatalf("clip = fps %v hand %q frames %d", clip.FPS, clip.Hand, len(clip.Frames))
			}
			var missing []int
			for i, f := range clip.Frames {
				if f.Index != i {
					t.Fatalf("frame %d has index %d", i, f.Index)
				}
				if f.Missing() {
					missing = append(missing, i)
				}
			}
			if diff := cmp.Diff(tc.missing, missing); diff != "" {
				t.Fatalf("missing frames (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeLandmarkDefaults(t *testing.T) {
	clip, err := Decode(strings.NewReader(`[{"landmarks":[[0.1,0.2],{"x":0.3,"y":0.4,"z":-0.1},{"y":0.5}]}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Landmark{
		{X: 0.1, Y: 0.2, Visibility: 1},
		{X: 0.3, Y: 0.4, Z: -0.1, Visibility: 1},
		{},
	}
	if diff := cmp.Diff(want, clip.Frames[0].Landmarks); diff != "" {
		t.Fatalf("landmarks (-want +got):\n%s", diff)
	}
}

func TestDecodeNamedPlacesRoles(t *testing.T) {
	clip, err := Decode(strings.NewReader(`[{"left_hip":[0.4,0.6,0,0.9],"RIGHT-HIP":{"x":0.5,"y":0.6}}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	f := clip.Frames[0]
	if len(f.Landmarks) != NumRoles {
		t.Fatalf("named frame should expand to %d roles, got %d", NumRoles, len(f.Landmarks))
	}
	if lm, ok := f.Visible(LeftHip, 0.5); !ok || lm.X != 0.4 {
		t.Fatalf("left hip = %+v %v", lm, ok)
	}
	if lm, ok := f.Visible(RightHip, 0.5); !ok || lm.X != 0.5 {
		t.Fatalf("right hip = %+v %v", lm, ok)
	}
	if _, ok := f.Visible(Nose, 0.1); ok {
		t.Fatalf("absent roles must not be visible")
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{
		``,
		`"clip"`,
		`{"frames":{"a":null}}`,
		`[[[0.1]]]`,
		`{"fps":"fast","frames":[]}`,
	} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestEncodeRoundTripsCanonicalShape(t *testing.T) {
	clip := Clip{FPS: 30, Hand: "R", Frames: []Frame{
		{Index: 0},
		{Index: 1, Landmarks: []Landmark{{X: 0.1, Y: 0.2, Z: 0.3, Visibility: 0.4}}},
	}}
	var buf bytes.Buffer
	if err := Encode(&buf, clip); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(clip, got); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestParseHand(t *testing.T) {
	cases := []struct {
		in    string
		want  Hand
		known bool
	}{
		{"R", HandRight, true},
		{" left ", HandLeft, true},
		{"lhb", HandLeft, true},
		{"", HandRight, false},
		{"ambi", HandRight, false},
	}
	for _, tc := range cases {
		h, known := ParseHand(tc.in)
		if h != tc.want || known != tc.known {
			t.Fatalf("ParseHand(%q) = %s %v", tc.in, h, known)
		}
	}
	if HandRight.FrontFoot() != Left || HandLeft.BackFoot() != Left {
		t.Fatalf("foot sides wrong")
	}
}
