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

package display

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/tiling"
)

// RenderRegion renders the part region of prog at the given zoom factor
// into dst.  This implements [engine.Context].
//
// The output covers the pixels region.Round(zoom), in global pixel
// coordinates, so that adjacent regions rendered separately fit together.
// For formats with alpha the output is premultiplied.
//
// The cookie is checked before every painting operation. Image operations
// which refer to unknown resources are skipped and counted as errors in
// the cookie.
func (c *Context) RenderRegion(prog engine.Program, region tiling.Rect, zoom float64,
	format engine.PixelFormat, dst []byte, cookie *engine.Cookie) error {

	if c.closed.Load() {
		return engine.ErrContextClosed
	}
	if c.master != nil && c.master.closed.Load() {
		return fmt.Errorf("master: %w", engine.ErrContextClosed)
	}
	p, ok := prog.(*Program)
	if !ok {
		return fmt.Errorf("%T: %w", prog, engine.ErrUnsupportedProgram)
	}
	if !format.IsValid() {
		return fmt.Errorf("invalid pixel format %d", int(format))
	}
	if !(zoom > 0) {
		return fmt.Errorf("invalid zoom factor %g", zoom)
	}

	pix := region.Round(zoom)
	w, h := max(pix.Dx(), 0), max(pix.Dy(), 0)
	if need := w * h * format.BytesPerPixel(); len(dst) < need {
		return fmt.Errorf("%d < %d bytes: %w", len(dst), need, engine.ErrBufferTooSmall)
	}

	cookie.Begin(int64(len(p.ops)))
	if w == 0 || h == 0 {
		return nil
	}

	canvas := c.prepareCanvas(w, h, format)
	r := c.ras
	r.Reset(rect.Rect{URx: float64(w), URy: float64(h)})
	r.CTM = matrix.Matrix{zoom, 0, 0, zoom, -float64(pix.X0), -float64(pix.Y0)}

	for i, op := range p.ops {
		if cookie.Aborted() {
			cookie.SetIncomplete()
			tracer().Debugf("aborted at operation %d of %d", i, len(p.ops))
			return engine.ErrAborted
		}

		switch op := op.(type) {
		case FillOp:
			r.Fill(op.Path, op.Rule, painter(canvas, op.Color))
		case StrokeOp:
			r.Width = op.Style.Width
			r.Cap = op.Style.Cap
			r.Join = op.Style.Join
			r.MiterLimit = op.Style.MiterLimit
			r.Stroke(op.Path, painter(canvas, op.Color))
		case ImageOp:
			img, ok := c.res.get(op.Image)
			if !ok {
				tracer().Errorf("operation %d: unknown image resource %d", i, op.Image)
				cookie.AddError()
				break
			}
			drawImage(canvas, img, op.Rect, zoom, pix)
		}
		cookie.Advance()
	}

	pack(dst, canvas, format)
	return nil
}

// prepareCanvas returns a w×h scratch image, filled with the background
// colour of the format.
func (c *Context) prepareCanvas(w, h int, format engine.PixelFormat) *image.RGBA {
	if c.canvas == nil || cap(c.canvas.Pix) < 4*w*h {
		c.canvas = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		c.canvas.Pix = c.canvas.Pix[:4*w*h]
		c.canvas.Stride = 4 * w
		c.canvas.Rect = image.Rect(0, 0, w, h)
	}

	bg := color.RGBA{}
	if !format.HasAlpha() {
		bg = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	draw.Draw(c.canvas, c.canvas.Rect, image.NewUniform(bg), image.Point{}, draw.Src)
	return c.canvas
}

// painter returns a span function which composites col, scaled by the
// coverage, onto canvas using the source-over operator.
func painter(canvas *image.RGBA, col color.NRGBA) raster.SpanFunc {
	a := float32(col.A) / 255
	sr := float32(col.R) * a
	sg := float32(col.G) * a
	sb := float32(col.B) * a
	return func(y, xMin int, coverage []float32) {
		row := canvas.Pix[y*canvas.Stride+4*xMin:]
		for i, v := range coverage {
			if v == 0 {
				continue
			}
			k := 1 - v*a
			px := row[4*i : 4*i+4 : 4*i+4]
			px[0] = uint8(sr*v + float32(px[0])*k + 0.5)
			px[1] = uint8(sg*v + float32(px[1])*k + 0.5)
			px[2] = uint8(sb*v + float32(px[2])*k + 0.5)
			px[3] = uint8(255*v*a + float32(px[3])*k + 0.5)
		}
	}
}

// drawImage draws img into the page rectangle r.  The canvas shows the
// pixels pix at the given zoom factor.
func drawImage(canvas, img *image.RGBA, r tiling.Rect, zoom float64, pix tiling.PixelRect) {
	b := img.Bounds()
	if b.Empty() || r.IsEmpty() {
		return
	}
	sx := r.Dx() / float64(b.Dx()) * zoom
	sy := r.Dy() / float64(b.Dy()) * zoom
	m := f64.Aff3{
		sx, 0, r.X0*zoom - float64(pix.X0) - float64(b.Min.X)*sx,
		0, sy, r.Y0*zoom - float64(pix.Y0) - float64(b.Min.Y)*sy,
	}
	draw.BiLinear.Transform(canvas, m, img, b, draw.Over, nil)
}

// pack copies the canvas into dst, using the given pixel format.
func pack(dst []byte, canvas *image.RGBA, format engine.PixelFormat) {
	w, h := canvas.Rect.Dx(), canvas.Rect.Dy()
	bpp := format.BytesPerPixel()
	for y := range h {
		src := canvas.Pix[y*canvas.Stride : y*canvas.Stride+4*w]
		out := dst[y*w*bpp : (y+1)*w*bpp]
		switch format {
		case engine.RGBA:
			copy(out, src)
		case engine.BGRA:
			for x := range w {
				out[4*x], out[4*x+1], out[4*x+2], out[4*x+3] = src[4*x+2], src[4*x+1], src[4*x], src[4*x+3]
			}
		case engine.RGB:
			for x := range w {
				out[3*x], out[3*x+1], out[3*x+2] = src[4*x], src[4*x+1], src[4*x+2]
			}
		case engine.BGR:
			for x := range w {
				out[3*x], out[3*x+1], out[3*x+2] = src[4*x+2], src[4*x+1], src[4*x]
			}
		}
	}
}
