// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package thumbnail

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	// Registered decoders for image.Decode. GIF, JPEG, and PNG come
	// from the standard library; the rest are format plugins.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxDimension bounds both thumbnail edges. Aspect ratio is always
// preserved; images already smaller than the bound pass through
// unscaled.
const MaxDimension = 256

// Decode loads the image at path and scales it down to fit within
// MaxDimension on both axes. SVG files are rasterized; every other
// supported format goes through the registered decoders.
func Decode(path string) (*image.NRGBA, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return decodeSVG(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer file.Close()

	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() <= MaxDimension && bounds.Dy() <= MaxDimension {
		return imaging.Clone(decoded), nil
	}
	return imaging.Fit(decoded, MaxDimension, MaxDimension, imaging.Lanczos), nil
}

// decodeSVG rasterizes a vector file at thumbnail size.
func decodeSVG(path string) (*image.NRGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer file.Close()

	icon, err := oksvg.ReadIconStream(file)
	if err != nil {
		return nil, fmt.Errorf("parsing SVG %s: %w", path, err)
	}

	width, height := fitDimensions(icon.ViewBox.W, icon.ViewBox.H)
	icon.SetTarget(0, 0, float64(width), float64(height))

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)

	return imaging.Clone(canvas), nil
}

// fitDimensions scales a source size to fit MaxDimension, preserving
// aspect ratio. Degenerate view boxes get a square canvas.
func fitDimensions(sourceWidth, sourceHeight float64) (int, int) {
	if sourceWidth <= 0 || sourceHeight <= 0 {
		return MaxDimension, MaxDimension
	}
	scale := 1.0
	if sourceWidth > sourceHeight {
		scale = MaxDimension / sourceWidth
	} else {
		scale = MaxDimension / sourceHeight
	}
	if scale > 1 {
		scale = 1
	}
	width := int(sourceWidth*scale + 0.5)
	height := int(sourceHeight*scale + 0.5)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Supported reports whether path's extension suggests a decodable
// image. Used to skip thumbnail commands for files that can never
// produce one.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp", ".svg":
		return true
	default:
		return false
	}
}
