package poseinfer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ManifestFile describes one file entry in manifest.json.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest mirrors the optional manifest.json of a model bundle.
type Manifest struct {
	Model   string         `json:"model"`
	Version string         `json:"version"`
	Files   []ManifestFile `json:"files"`
}

// VerifyBundle checks sizes and hashes of every file listed in the bundle's
// manifest.json. A bundle without a manifest passes.
func VerifyBundle(dir string) (*Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("bundle dir is empty")
	}
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	for _, f := range manifest.Files {
		local, err := resolveBundlePath(dir, filepath.FromSlash(f.Path))
		if err != nil {
			return nil, fmt.Errorf("resolve path %s: %w", f.Path, err)
		}
		info, err := os.Stat(local)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f.Path, err)
		}
		if f.Size > 0 && info.Size() != f.Size {
			return nil, fmt.Errorf("size mismatch for %s: expected %d got %d", f.Path, f.Size, info.Size())
		}
		if f.SHA256 == "" {
			continue
		}
		sum, err := fileSHA256(local)
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", f.Path, err)
		}
		if !strings.EqualFold(sum, f.SHA256) {
			return nil, fmt.Errorf("sha256 mismatch for %s: expected %s got %s", f.Path, f.SHA256, sum)
		}
	}
	return &manifest, nil
}

func fileSHA256(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer fh.Close()
	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// resolveBundlePath joins rel onto base, rejecting absolute paths and
// anything that escapes base.
func resolveBundlePath(base, rel string) (string, error) {
	if rel == "" {
		return "", errors.New("empty path")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute path %q not allowed", rel)
	}
	cleanBase := filepath.Clean(base)
	joined := filepath.Join(cleanBase, rel)
	within, err := filepath.Rel(cleanBase, joined)
	if err != nil {
		return "", err
	}
	if within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes bundle dir", rel)
	}
	return joined, nil
}

// resolveSharedLibraryPath locates the onnxruntime shared library. An
// explicit path wins, then ONNXRUNTIME_SHARED_LIBRARY_PATH, then common
// names under the bundle dir and system dirs.
func resolveSharedLibraryPath(explicit, bundleDir string) string {
	if p := strings.TrimSpace(explicit); p != "" {
		return p
	}
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.so",
		"onnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
