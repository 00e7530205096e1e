// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/muesli/termenv"
)

// cellArtMaxColumns caps thumbnail width in terminal cells.
const cellArtMaxColumns = 24

// CellArt renders decoded thumbnail pixels as terminal cell art using
// upper-half-block characters: each cell shows two vertically stacked
// pixels, the top one as the foreground color and the bottom one as
// the background. The profile decides how colors degrade on terminals
// without truecolor support.
func CellArt(thumbnail *image.NRGBA, profile termenv.Profile) string {
	bounds := thumbnail.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return ""
	}

	// Terminal cells are roughly twice as tall as wide; the half-block
	// split restores square pixels, so only width needs scaling.
	if bounds.Dx() > cellArtMaxColumns {
		thumbnail = imaging.Resize(thumbnail, cellArtMaxColumns, 0, imaging.Box)
		bounds = thumbnail.Bounds()
	}

	var art strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		if y > bounds.Min.Y {
			art.WriteByte('\n')
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexColor(thumbnail, x, y)
			bottom := top
			if y+1 < bounds.Max.Y {
				bottom = hexColor(thumbnail, x, y+1)
			}
			cell := termenv.String("▀").
				Foreground(profile.Color(top)).
				Background(profile.Color(bottom))
			art.WriteString(cell.String())
		}
	}
	return art.String()
}

// hexColor reads one pixel as a #rrggbb string, compositing alpha
// against black so transparent regions render dark instead of random.
func hexColor(thumbnail *image.NRGBA, x, y int) string {
	pixel := thumbnail.NRGBAAt(x, y)
	red := int(pixel.R) * int(pixel.A) / 255
	green := int(pixel.G) * int(pixel.A) / 255
	blue := int(pixel.B) * int(pixel.A) / 255
	return fmt.Sprintf("#%02x%02x%02x", red, green, blue)
}
