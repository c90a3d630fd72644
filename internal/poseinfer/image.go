package poseinfer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var frameExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".webp": true,
}

// FramePaths lists decodable frame images in dir, sorted by name. Frame
// order is the lexical order of the file names.
func FramePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadImage decodes one frame image.
func LoadImage(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	img, _, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// fillInput scales img to size×size with bilinear interpolation and writes
// it into dst as NHWC RGB floats in [0, 1].
func fillInput(img image.Image, size int, dst []float32) {
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(rgba, rgba.Bounds(), img, img.Bounds(), draw.Src, nil)
	for y := 0; y < size; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < size; x++ {
			o := (y*size + x) * 3
			p := row[x*4:]
			dst[o] = float32(p[0]) / 255
			dst[o+1] = float32(p[1]) / 255
			dst[o+2] = float32(p[2]) / 255
		}
	}
}
