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
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

// Stitch assembles the tile buffers filled in by [Coordinator.Render] into
// a single image.  The tiles are normally the result of
// [Coordinator.Tiles].  Alpha formats must hold straight alpha, which is
// what Render produces.
func Stitch(tiles []tiling.PixelRect, dst [][]byte, format engine.PixelFormat) (*image.NRGBA, error) {
	if len(tiles) != len(dst) {
		return nil, fmt.Errorf("got %d buffers for %d tiles", len(dst), len(tiles))
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("invalid pixel format %d", int(format))
	}

	var bounds image.Rectangle
	for i, t := range tiles {
		if need := t.Area() * format.BytesPerPixel(); len(dst[i]) < need {
			return nil, fmt.Errorf("tile %d: %d < %d bytes", i, len(dst[i]), need)
		}
		bounds = bounds.Union(t.Image())
	}

	out := image.NewNRGBA(bounds)
	for i, t := range tiles {
		img := tileImage(t, dst[i], format)
		draw.Copy(out, img.Rect.Min, img, img.Rect, draw.Src, nil)
	}
	return out, nil
}

// tileImage wraps or converts a tile buffer into an image located at the
// position of the tile.
func tileImage(t tiling.PixelRect, buf []byte, format engine.PixelFormat) *image.NRGBA {
	w, h := t.Dx(), t.Dy()
	if format == engine.RGBA {
		return &image.NRGBA{Pix: buf[:4*w*h], Stride: 4 * w, Rect: t.Image()}
	}

	img := image.NewNRGBA(t.Image())
	bpp := format.BytesPerPixel()
	for k := range w * h {
		src := buf[k*bpp : (k+1)*bpp]
		px := img.Pix[4*k : 4*k+4]
		switch format {
		case engine.RGB:
			px[0], px[1], px[2], px[3] = src[0], src[1], src[2], 255
		case engine.BGR:
			px[0], px[1], px[2], px[3] = src[2], src[1], src[0], 255
		case engine.BGRA:
			px[0], px[1], px[2], px[3] = src[2], src[1], src[0], src[3]
		}
	}
	return img
}
