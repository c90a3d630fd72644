package poseinfer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/actionlab/actionlab/internal/config"
	"github.com/actionlab/actionlab/internal/pose"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestVerifyBundle(t *testing.T) {
	dir := t.TempDir()
	model := []byte("not really onnx")
	sum := sha256.Sum256(model)
	writeFile(t, filepath.Join(dir, "pose_landmark.onnx"), model)

	m, err := VerifyBundle(dir)
	if err != nil || m != nil {
		t.Fatalf("bundle without manifest should pass, got %v %v", m, err)
	}

	manifest := fmt.Sprintf(`{"model":"pose_landmark","version":"1","files":[{"path":"pose_landmark.onnx","sha256":%q,"size":%d}]}`,
		hex.EncodeToString(sum[:]), len(model))
	writeFile(t, filepath.Join(dir, "manifest.json"), []byte(manifest))
	m, err = VerifyBundle(dir)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if m.Version != "1" || len(m.Files) != 1 {
		t.Fatalf("manifest = %+v", m)
	}

	writeFile(t, filepath.Join(dir, "pose_landmark.onnx"), []byte("tampered model!"))
	if _, err := VerifyBundle(dir); err == nil || !strings.Contains(err.Error(), "sha256 mismatch") {
		t.Fatalf("expected hash mismatch, got %v", err)
	}

	writeFile(t, filepath.Join(dir, "manifest.json"), []byte(`{"files":[{"path":"../escape"}]}`))
	if _, err := VerifyBundle(dir); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestResolveBundlePath(t *testing.T) {
	if _, err := resolveBundlePath("/tmp/bundle", "../evil"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := resolveBundlePath("/tmp/bundle", "/abs/path"); err == nil {
		t.Fatalf("expected absolute path to be rejected")
	}
	got, err := resolveBundlePath("/tmp/bundle", "lib/model.onnx")
	if err != nil || got != filepath.Join("/tmp/bundle", "lib", "model.onnx") {
		t.Fatalf("safe path = %q %v", got, err)
	}
}

func TestResolveSharedLibraryPathPrefersExplicit(t *testing.T) {
	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/env/libonnxruntime.so")
	if got := resolveSharedLibraryPath("/explicit/lib.so", t.TempDir()); got != "/explicit/lib.so" {
		t.Fatalf("got %q", got)
	}
	if got := resolveSharedLibraryPath("", t.TempDir()); got != "/env/libonnxruntime.so" {
		t.Fatalf("got %q", got)
	}

	t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib", "libonnxruntime.so"), []byte{0})
	if got := resolveSharedLibraryPath("", dir); got != filepath.Join(dir, "lib", "libonnxruntime.so") {
		t.Fatalf("bundle lookup got %q", got)
	}
}

func TestSelectLayout(t *testing.T) {
	inputs := []ort.InputOutputInfo{{Name: "input_1", Dimensions: ort.Shape{1, 256, 256, 3}}}
	outputs := []ort.InputOutputInfo{
		{Name: "Identity", Dimensions: ort.Shape{1, 195}},
		{Name: "Identity_1", Dimensions: ort.Shape{1, 1}},
		{Name: "Identity_2", Dimensions: ort.Shape{1, 256, 256, 1}},
		{Name: "Identity_4", Dimensions: ort.Shape{1, 117}},
	}
	l, err := selectLayout(inputs, outputs, 128)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if l.input != "input_1" || l.size != 256 || l.presence != "Identity_1" {
		t.Fatalf("layout = %+v", l)
	}
	if l.landmarks != "Identity" {
		t.Fatalf("landmarks = %q", l.landmarks)
	}

	dyn := []ort.InputOutputInfo{{Name: "image", Dimensions: ort.Shape{-1, -1, -1, 3}}}
	l, err = selectLayout(dyn, outputs[:2], 192)
	if err != nil || l.size != 192 || l.landmarks != "Identity" {
		t.Fatalf("dynamic layout = %+v %v", l, err)
	}

	if _, err := selectLayout(inputs, outputs[1:2], 256); err == nil {
		t.Fatalf("expected missing landmark output error")
	}
}

func TestDecodeLandmarks(t *testing.T) {
	raw := make([]float32, valuesPerLandmark*39)
	for i := 0; i < 39; i++ {
		raw[i*5] = float32(i)
		raw[i*5+1] = 128
		raw[i*5+2] = -64
		raw[i*5+3] = 0
	}
	raw[int(pose.RightWrist)*5+3] = 20

	lms, err := decodeLandmarks(raw, 256)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lms) != pose.NumRoles {
		t.Fatalf("expected %d landmarks, got %d", pose.NumRoles, len(lms))
	}
	w := lms[pose.RightWrist]
	if math.Abs(w.X-float64(pose.RightWrist)/256) > 1e-9 || w.Y != 0.5 || w.Z != -0.25 {
		t.Fatalf("wrist = %+v", w)
	}
	if w.Visibility < 0.999 || lms[0].Visibility != 0.5 {
		t.Fatalf("visibility = %v / %v", w.Visibility, lms[0].Visibility)
	}

	if _, err := decodeLandmarks(raw[:100], 256); err == nil {
		t.Fatalf("expected short output error")
	}
}

func TestFillInputScalesToRGBFloats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{R: 255, G: 0, B: 51, A: 255})
		}
	}
	dst := make([]float32, 8*8*3)
	fillInput(src, 8, dst)
	for i := 0; i < len(dst); i += 3 {
		if math.Abs(float64(dst[i])-1) > 0.01 || dst[i+1] > 0.01 || math.Abs(float64(dst[i+2])-0.2) > 0.01 {
			t.Fatalf("pixel %d = %v %v %v", i/3, dst[i], dst[i+1], dst[i+2])
		}
	}
}

func TestFramePathsAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"frame_0002.png", "frame_0001.png"} {
		fh, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := png.Encode(fh, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
			t.Fatalf("encode: %v", err)
		}
		fh.Close()
	}
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("skip"))
	writeFile(t, filepath.Join(dir, "broken.jpg"), []byte("nope"))

	paths, err := FramePaths(dir)
	if err != nil {
		t.Fatalf("frame paths: %v", err)
	}
	want := []string{"broken.jpg", "frame_0001.png", "frame_0002.png"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v", paths)
	}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Fatalf("paths[%d] = %s, want %s", i, p, want[i])
		}
	}

	img, err := LoadImage(paths[1])
	if err != nil || img.Bounds().Dx() != 4 {
		t.Fatalf("load image: %v", err)
	}
	if _, err := LoadImage(paths[0]); err == nil {
		t.Fatalf("expected decode error for broken frame")
	}
}

func TestEstimatorOnBundle(t *testing.T) {
	bundleDir := strings.TrimSpace(os.Getenv("ACTIONLAB_POSE_BUNDLE_DIR"))
	if bundleDir == "" {
		t.Skip("ACTIONLAB_POSE_BUNDLE_DIR not set; skipping ONNX runtime test")
	}
	cfg := config.Default().Pose
	cfg.BundleDir = bundleDir
	est, err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer est.Close()

	lms, err := est.Estimate(image.NewRGBA(image.Rect(0, 0, 64, 64)))
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if lms != nil && len(lms) != pose.NumRoles {
		t.Fatalf("expected nil or %d landmarks, got %d", pose.NumRoles, len(lms))
	}
}
