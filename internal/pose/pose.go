// Package pose holds the canonical landmark model shared by every analysis
// stage. Input shapes are normalized once, in Decode; nothing downstream
// inspects raw JSON.
package pose

import "strings"

// Landmark is one body keypoint in normalized image coordinates. Y grows
// downward.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Frame is a single observation. A nil Landmarks slice is a fully occluded
// frame and is treated as a gap.
type Frame struct {
	Index     int        `json:"frame"`
	Landmarks []Landmark `json:"landmarks"`
}

// Missing reports whether the frame carries no landmarks at all.
func (f Frame) Missing() bool { return len(f.Landmarks) == 0 }

// At returns the landmark for role if the frame has it.
func (f Frame) At(r Role) (Landmark, bool) {
	i := int(r)
	if i < 0 || i >= len(f.Landmarks) {
		return Landmark{}, false
	}
	return f.Landmarks[i], true
}

// Visible returns the landmark for role when its visibility reaches minVis.
// NaN visibility never does.
func (f Frame) Visible(r Role, minVis float64) (Landmark, bool) {
	lm, ok := f.At(r)
	if !ok || !(lm.Visibility >= minVis) {
		return Landmark{}, false
	}
	return lm, true
}

// Clip is one delivery: ordered frames plus capture metadata.
type Clip struct {
	FPS    float64 `json:"fps"`
	Hand   string  `json:"hand"`
	Frames []Frame `json:"frames"`
}

// Hand is the bowling hand.
type Hand string

const (
	HandRight Hand = "R"
	HandLeft  Hand = "L"
)

// ParseHand normalizes free-form hand input. Unknown values fall back to
// right-handed with known=false.
func ParseHand(s string) (h Hand, known bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "R", "RIGHT", "RH", "RHB":
		return HandRight, true
	case "L", "LEFT", "LH", "LHB":
		return HandLeft, true
	}
	return HandRight, false
}

// Side is a body side.
type Side int

const (
	Left Side = iota
	Right
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Bowling is the side of the throwing arm.
func (h Hand) Bowling() Side {
	if h == HandLeft {
		return Left
	}
	return Right
}

// NonBowling is the side of the non-throwing arm.
func (h Hand) NonBowling() Side { return h.Bowling().Other() }

// FrontFoot is the landing foot at front-foot contact: left for a
// right-hander.
func (h Hand) FrontFoot() Side { return h.Bowling().Other() }

// BackFoot is the foot planted at back-foot contact.
func (h Hand) BackFoot() Side { return h.Bowling() }
