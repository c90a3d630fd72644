package pose

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// defaultVisibility applies to landmarks that carry coordinates but no
// visibility score.
const defaultVisibility = 1.0

// LoadFile reads a clip from a JSON file.
func LoadFile(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open clip %s: %w", path, err)
	}
	defer f.Close()
	clip, err := Decode(f)
	if err != nil {
		return Clip{}, fmt.Errorf("decode clip %s: %w", path, err)
	}
	return clip, nil
}

// Decode parses every accepted clip shape into the canonical Clip:
//
//   - {"fps":..,"hand":..,"frames":[...]} (or "pose_frames")
//   - a bare list of frames
//   - a map keyed by frame index
//
// Frames may be null, {"frame":i,"landmarks":[...]}, a bare landmark list,
// or a legacy map of named landmarks. Landmarks may be objects or
// [x, y, z, visibility] arrays. Frame indices are positional after decode.
func Decode(r io.Reader) (Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Clip{}, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Clip{}, fmt.Errorf("empty clip")
	}

	var clip Clip
	var rawFrames []json.RawMessage

	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &rawFrames); err != nil {
			return Clip{}, fmt.Errorf("frame list: %w", err)
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return Clip{}, err
		}
		if v, ok := obj["fps"]; ok {
			if err := json.Unmarshal(v, &clip.FPS); err != nil {
				return Clip{}, fmt.Errorf("fps: %w", err)
			}
		}
		if v, ok := obj["hand"]; ok {
			if err := json.Unmarshal(v, &clip.Hand); err != nil {
				return Clip{}, fmt.Errorf("hand: %w", err)
			}
		}
		framesRaw, ok := obj["frames"]
		if !ok {
			framesRaw, ok = obj["pose_frames"]
		}
		if ok {
			rawFrames, err = decodeFrameContainer(framesRaw)
			if err != nil {
				return Clip{}, err
			}
		} else {
			delete(obj, "fps")
			delete(obj, "hand")
			rawFrames, err = framesFromIndexMap(obj)
			if err != nil {
				return Clip{}, err
			}
		}
	default:
		return Clip{}, fmt.Errorf("unsupported clip shape")
	}

	clip.Frames = make([]Frame, len(rawFrames))
	for i, raw := range rawFrames {
		lms, err := decodeFrame(raw)
		if err != nil {
			return Clip{}, fmt.Errorf("frame %d: %w", i, err)
		}
		clip.Frames[i] = Frame{Index: i, Landmarks: lms}
	}
	return clip, nil
}

func decodeFrameContainer(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("frames: %w", err)
		}
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("frames: %w", err)
	}
	return framesFromIndexMap(obj)
}

func framesFromIndexMap(obj map[string]json.RawMessage) ([]json.RawMessage, error) {
	type keyed struct {
		idx int
		raw json.RawMessage
	}
	items := make([]keyed, 0, len(obj))
	for k, v := range obj {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("frame map key %q is not an index", k)
		}
		items = append(items, keyed{idx: idx, raw: v})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	out := make([]json.RawMessage, len(items))
	for i, it := range items {
		out[i] = it.raw
	}
	return out, nil
}

func decodeFrame(raw json.RawMessage) ([]Landmark, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		return decodeLandmarkList(raw)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if lmRaw, ok := obj["landmarks"]; ok {
		lmRaw = bytes.TrimSpace(lmRaw)
		if len(lmRaw) == 0 || string(lmRaw) == "null" {
			return nil, nil
		}
		if lmRaw[0] == '[' {
			return decodeLandmarkList(lmRaw)
		}
		var named map[string]json.RawMessage
		if err := json.Unmarshal(lmRaw, &named); err != nil {
			return nil, fmt.Errorf("landmarks: %w", err)
		}
		return decodeNamed(named)
	}
	return decodeNamed(obj)
}

func decodeLandmarkList(raw json.RawMessage) ([]Landmark, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("landmarks: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	out := make([]Landmark, len(items))
	for i, it := range items {
		lm, err := decodeLandmark(it)
		if err != nil {
			return nil, fmt.Errorf("landmark %d: %w", i, err)
		}
		out[i] = lm
	}
	return out, nil
}

// decodeNamed handles legacy frames keyed by landmark name. Unknown keys
// (frame, index, timestamps) are ignored.
func decodeNamed(obj map[string]json.RawMessage) ([]Landmark, error) {
	out := make([]Landmark, NumRoles)
	found := 0
	for k, v := range obj {
		role, ok := RoleByName(k)
		if !ok {
			continue
		}
		lm, err := decodeLandmark(v)
		if err != nil {
			return nil, fmt.Errorf("landmark %s: %w", k, err)
		}
		out[role] = lm
		found++
	}
	if found == 0 {
		return nil, nil
	}
	return out, nil
}

type landmarkObject struct {
	X          *float64 `json:"x"`
	Y          *float64 `json:"y"`
	Z          *float64 `json:"z"`
	Visibility *float64 `json:"visibility"`
	Vis        *float64 `json:"vis"`
}

func decodeLandmark(raw json.RawMessage) (Landmark, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Landmark{}, nil
	}
	if raw[0] == '[' {
		var vals []float64
		if err := json.Unmarshal(raw, &vals); err != nil {
			return Landmark{}, err
		}
		if len(vals) < 2 {
			return Landmark{}, fmt.Errorf("need at least x and y, got %d values", len(vals))
		}
		lm := Landmark{X: vals[0], Y: vals[1], Visibility: defaultVisibility}
		if len(vals) > 2 {
			lm.Z = vals[2]
		}
		if len(vals) > 3 {
			lm.Visibility = vals[3]
		}
		return lm, nil
	}
	var o landmarkObject
	if err := json.Unmarshal(raw, &o); err != nil {
		return Landmark{}, err
	}
	if o.X == nil || o.Y == nil {
		return Landmark{}, nil
	}
	lm := Landmark{X: *o.X, Y: *o.Y, Visibility: defaultVisibility}
	if o.Z != nil {
		lm.Z = *o.Z
	}
	switch {
	case o.Visibility != nil:
		lm.Visibility = *o.Visibility
	case o.Vis != nil:
		lm.Visibility = *o.Vis
	}
	return lm, nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// Encode writes the canonical clip shape.
func Encode(w io.Writer, clip Clip) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(clip)
}
