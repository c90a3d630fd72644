// Package poseinfer runs a BlazePose-style landmark model through ONNX
// Runtime and turns decoded frames into landmark clips.
package poseinfer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/logging"
	"github.com/actionlab/actionlab/internal/pose"
)

// valuesPerLandmark is x, y, z, visibility logit, presence logit.
const valuesPerLandmark = 5

// Estimator wraps the ONNX session. Estimate is safe for concurrent use;
// calls are serialized on the session.
type Estimator struct {
	session   *ort.AdvancedSession
	input     *ort.Tensor[float32]
	landmarks *ort.Tensor[float32]
	presence  *ort.Tensor[float32]
	size      int
	threshold float64
	log       *slog.Logger

	mu sync.Mutex
}

type ioLayout struct {
	input         string
	size          int
	landmarks     string
	landmarkShape ort.Shape
	presence      string
}

// Load verifies the bundle, initializes onnxruntime and opens a session over
// the configured model file.
func Load(cfg config.PoseConfig) (*Estimator, error) {
	if cfg.BundleDir == "" {
		return nil, errors.New("pose bundle dir is empty")
	}
	log := logging.New("poseinfer")

	manifest, err := VerifyBundle(cfg.BundleDir)
	if err != nil {
		return nil, fmt.Errorf("verify bundle: %w", err)
	}
	if manifest != nil {
		log.Info("pose bundle verified", "model", manifest.Model, "version", manifest.Version, "files", len(manifest.Files))
	}

	libPath := resolveSharedLibraryPath(cfg.LibraryPath, cfg.BundleDir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath, err := resolveBundlePath(cfg.BundleDir, cfg.ModelFile)
	if err != nil {
		return nil, fmt.Errorf("model path: %w", err)
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("inspect model: %w", err)
	}
	layout, err := selectLayout(inputs, outputs, cfg.InputSize)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", filepath.Base(modelPath), err)
	}

	e := &Estimator{size: layout.size, threshold: cfg.PresenceThreshold, log: log}
	if err := e.open(modelPath, layout); err != nil {
		e.Close()
		return nil, err
	}
	log.Info("pose model loaded", "model", filepath.Base(modelPath), "input", layout.size, "presence_output", layout.presence != "")
	return e, nil
}

func (e *Estimator) open(modelPath string, layout ioLayout) error {
	var err error
	e.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(layout.size), int64(layout.size), 3))
	if err != nil {
		return fmt.Errorf("allocate input tensor: %w", err)
	}
	e.landmarks, err = ort.NewEmptyTensor[float32](layout.landmarkShape)
	if err != nil {
		return fmt.Errorf("allocate landmark tensor: %w", err)
	}
	outNames := []string{layout.landmarks}
	outValues := []ort.Value{e.landmarks}
	if layout.presence != "" {
		e.presence, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
		if err != nil {
			return fmt.Errorf("allocate presence tensor: %w", err)
		}
		outNames = append(outNames, layout.presence)
		outValues = append(outValues, e.presence)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return fmt.Errorf("create session options: %w", err)
	}
	defer opts.Destroy()
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		return fmt.Errorf("set graph optimization: %w", err)
	}

	e.session, err = ort.NewAdvancedSession(modelPath, []string{layout.input}, outNames, []ort.Value{e.input}, outValues, opts)
	if err != nil {
		return fmt.Errorf("create onnx session: %w", err)
	}
	return nil
}

// Close releases the session and tensors.
func (e *Estimator) Close() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		_ = e.session.Destroy()
		e.session = nil
	}
	for _, t := range []*ort.Tensor[float32]{e.input, e.landmarks, e.presence} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	e.input, e.landmarks, e.presence = nil, nil, nil
}

// Estimate returns the 33 landmarks for one image, or nil when no pose is
// present.
func (e *Estimator) Estimate(img image.Image) ([]pose.Landmark, error) {
	if e == nil || img == nil {
		return nil, errors.New("pose estimator not initialized")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil, errors.New("pose estimator closed")
	}

	fillInput(img, e.size, e.input.GetData())
	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	if e.presence != nil {
		if p := sigmoid(float64(e.presence.GetData()[0])); !(p >= e.threshold) {
			return nil, nil
		}
	}
	return decodeLandmarks(e.landmarks.GetData(), e.size)
}

// Extract estimates every frame image in order and assembles a clip.
// Unreadable images become gap frames.
func (e *Estimator) Extract(ctx context.Context, paths []string, fps float64, hand string) (pose.Clip, error) {
	clip := pose.Clip{FPS: fps, Hand: hand, Frames: make([]pose.Frame, 0, len(paths))}
	gaps := 0
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return pose.Clip{}, err
		}
		frame := pose.Frame{Index: i}
		img, err := LoadImage(p)
		if err != nil {
			e.log.Warn("frame skipped", "frame", i, "err", err)
		} else if frame.Landmarks, err = e.Estimate(img); err != nil {
			return pose.Clip{}, fmt.Errorf("frame %d: %w", i, err)
		}
		if frame.Missing() {
			gaps++
		}
		clip.Frames = append(clip.Frames, frame)
	}
	e.log.Info("extracted clip", "frames", len(paths), "gaps", gaps)
	return clip, nil
}

// selectLayout picks the image input and the landmark and presence outputs
// by shape.
func selectLayout(inputs, outputs []ort.InputOutputInfo, fallbackSize int) (ioLayout, error) {
	var l ioLayout
	if len(inputs) == 0 {
		return l, errors.New("no inputs found")
	}
	l.input = inputs[0].Name
	l.size = fallbackSize
	if d := inputs[0].Dimensions; len(d) == 4 && d[1] > 0 && d[1] == d[2] {
		l.size = int(d[1])
	}
	if l.size <= 0 {
		return l, errors.New("input size unknown")
	}

	best := int64(0)
	for _, out := range outputs {
		shape := concreteShape(out.Dimensions)
		n := shape.FlattenedSize()
		switch {
		case n == 1 && l.presence == "":
			l.presence = out.Name
		case n%valuesPerLandmark == 0 && n >= valuesPerLandmark*pose.NumRoles && n > best:
			best = n
			l.landmarks = out.Name
			l.landmarkShape = shape
		}
	}
	if l.landmarks == "" {
		return l, fmt.Errorf("no landmark output among %d outputs", len(outputs))
	}
	return l, nil
}

// concreteShape replaces dynamic dimensions with 1.
func concreteShape(dims ort.Shape) ort.Shape {
	out := make(ort.Shape, len(dims))
	for i, v := range dims {
		if v <= 0 {
			v = 1
		}
		out[i] = v
	}
	return out
}

// decodeLandmarks converts raw model output in input pixels into normalized
// landmarks. Extra auxiliary points beyond the 33 body roles are dropped.
func decodeLandmarks(raw []float32, size int) ([]pose.Landmark, error) {
	if len(raw) < valuesPerLandmark*pose.NumRoles {
		return nil, fmt.Errorf("landmark output too short: %d values", len(raw))
	}
	s := float64(size)
	out := make([]pose.Landmark, pose.NumRoles)
	for i := range out {
		v := raw[i*valuesPerLandmark:]
		out[i] = pose.Landmark{
			X:          float64(v[0]) / s,
			Y:          float64(v[1]) / s,
			Z:          float64(v[2]) / s,
			Visibility: sigmoid(float64(v[3])),
		}
	}
	return out, nil
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}
