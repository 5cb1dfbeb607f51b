// seehuhn.de/go/tilerender - tiled multi-threaded page rendering
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tilerender

import (
	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

// unpremultiply converts premultiplied 4-byte pixels to straight alpha.
// The alpha channel is the last byte of every pixel, for both RGBA and
// BGRA. Fully transparent pixels are left unchanged.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		for j := i; j < i+3; j++ {
			pix[j] = byte(min((uint32(pix[j])*255+a/2)/a, 255))
		}
	}
}

// clearOutside overwrites all pixels of a tile which lie outside keep
// with the background value of the format.  Both rectangles are in
// global pixel coordinates.
func clearOutside(pix []byte, tile, keep tiling.PixelRect, format engine.PixelFormat) {
	bpp := format.BytesPerPixel()
	bg := format.Background()
	w := tile.Dx()

	x0 := min(max(keep.X0, tile.X0), tile.X1) - tile.X0
	x1 := min(max(keep.X1, tile.X0), tile.X1) - tile.X0
	for y := tile.Y0; y < tile.Y1; y++ {
		row := pix[(y-tile.Y0)*w*bpp : (y-tile.Y0+1)*w*bpp]
		if y < keep.Y0 || y >= keep.Y1 || x0 >= x1 {
			fill(row, bg)
			continue
		}
		fill(row[:x0*bpp], bg)
		fill(row[x1*bpp:], bg)
	}
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// pageClip returns the page bounds in page space.  Page bounds given at a
// resolution other than 72dpi are converted first.
func pageClip(opts *Options) tiling.Rect {
	sx, sy := 1.0, 1.0
	if opts.ResolutionX != 0 && opts.ResolutionX != 72 {
		sx = 72 / opts.ResolutionX
	}
	if opts.ResolutionY != 0 && opts.ResolutionY != 72 {
		sy = 72 / opts.ResolutionY
	}
	return opts.PageBounds.Scale(sx, sy)
}
