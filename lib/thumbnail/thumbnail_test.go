// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package thumbnail

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			canvas.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, canvas); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
}

func TestDecodeScalesDownLargeImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "large.png")
	writePNG(t, path, 1024, 512)

	decoded, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != MaxDimension {
		t.Errorf("width = %d, want %d", bounds.Dx(), MaxDimension)
	}
	// Aspect ratio 2:1 preserved.
	if bounds.Dy() != MaxDimension/2 {
		t.Errorf("height = %d, want %d", bounds.Dy(), MaxDimension/2)
	}
}

func TestDecodeKeepsSmallImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	writePNG(t, path, 40, 30)

	decoded, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 40 || bounds.Dy() != 30 {
		t.Errorf("bounds = %dx%d, want 40x30 unscaled", bounds.Dx(), bounds.Dy())
	}
}

func TestDecodeSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50">
  <rect x="10" y="10" width="80" height="30" fill="red"/>
</svg>`
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		t.Fatalf("writing svg: %v", err)
	}

	decoded, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 50 {
		t.Errorf("bounds = %dx%d, want 100x50 (source smaller than cap)", bounds.Dx(), bounds.Dy())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("this is not an image"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Decode(path); err == nil {
		t.Error("Decode accepted non-image data")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	if _, err := Decode(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("Decode accepted missing file")
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.PNG", true},
		{"scan.jpeg", true},
		{"diagram.svg", true},
		{"grid.webp", true},
		{"notes.txt", false},
		{"archive.zip", false},
	}
	for _, test := range tests {
		if got := Supported(test.path); got != test.want {
			t.Errorf("Supported(%q) = %v, want %v", test.path, got, test.want)
		}
	}
}
