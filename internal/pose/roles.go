package pose

// Role indexes the 33-point MediaPipe Pose topology.
type Role int

const (
	Nose Role = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	MouthLeft
	MouthRight
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
)

// NumRoles is the landmark count of a complete frame.
const NumRoles = 33

var roleNames = [NumRoles]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"mouth_left", "mouth_right",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

func (r Role) String() string {
	if r < 0 || int(r) >= NumRoles {
		return "unknown"
	}
	return roleNames[r]
}

// RoleByName resolves a snake_case or upper-case landmark name.
func RoleByName(name string) (Role, bool) {
	r, ok := roleIndex[normalizeName(name)]
	return r, ok
}

var roleIndex = func() map[string]Role {
	m := make(map[string]Role, NumRoles)
	for i, n := range roleNames {
		m[n] = Role(i)
	}
	return m
}()

func sided(s Side, left, right Role) Role {
	if s == Left {
		return left
	}
	return right
}

func Shoulder(s Side) Role  { return sided(s, LeftShoulder, RightShoulder) }
func Elbow(s Side) Role     { return sided(s, LeftElbow, RightElbow) }
func Wrist(s Side) Role     { return sided(s, LeftWrist, RightWrist) }
func Pinky(s Side) Role     { return sided(s, LeftPinky, RightPinky) }
func Index(s Side) Role     { return sided(s, LeftIndex, RightIndex) }
func Thumb(s Side) Role     { return sided(s, LeftThumb, RightThumb) }
func Hip(s Side) Role       { return sided(s, LeftHip, RightHip) }
func Knee(s Side) Role      { return sided(s, LeftKnee, RightKnee) }
func Ankle(s Side) Role     { return sided(s, LeftAnkle, RightAnkle) }
func Heel(s Side) Role      { return sided(s, LeftHeel, RightHeel) }
func FootIndex(s Side) Role { return sided(s, LeftFootIndex, RightFootIndex) }
