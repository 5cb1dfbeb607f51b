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

// Package raster computes anti-aliased pixel coverage for filled and
// stroked paths.
//
// Coverage is exact area coverage: the value reported for a pixel is the
// fraction of the pixel square which lies inside the shape. Results are
// delivered one pixel row at a time through a [SpanFunc], so that callers
// can composite directly into their own buffers.
package raster

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// FillRule decides which points are inside a path.
type FillRule int

const (
	// NonZero treats a point as inside if the winding number of the path
	// around the point is not zero.
	NonZero FillRule = iota

	// EvenOdd treats a point as inside if a ray from the point crosses the
	// path an odd number of times.
	EvenOdd
)

func (rule FillRule) String() string {
	switch rule {
	case NonZero:
		return "nonzero"
	case EvenOdd:
		return "evenodd"
	default:
		return fmt.Sprintf("FillRule(%d)", int(rule))
	}
}

// SpanFunc receives the coverage of a run of pixels in row y.
// coverage[i] belongs to pixel (xMin+i, y) and lies in the range [0, 1].
// The slice is only valid for the duration of the call.
type SpanFunc func(y, xMin int, coverage []float32)

// Rasterizer converts paths into pixel coverage.
//
// The exported fields hold the graphics state. They can be changed
// between calls. Internal buffers are kept between calls, so that a
// Rasterizer which is reused does not allocate in steady state.
//
// A Rasterizer must not be used by more than one goroutine at a time.
type Rasterizer struct {
	// CTM maps user space to device space. It must be invertible.
	CTM matrix.Matrix

	// Clip limits the output to a rectangle in device space.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the maximal distance, in device pixels, between a curve
	// and the polygon which replaces it.
	Flatness float64

	// Width is the stroke width in user space.
	Width float64

	// Cap is the shape used at the open ends of stroked subpaths.
	Cap graphics.LineCapStyle

	// Join is the shape used at the corners of stroked subpaths.
	Join graphics.LineJoinStyle

	// MiterLimit is the longest allowed miter, as a multiple of the
	// stroke width. Longer miters are replaced by bevels.
	MiterLimit float64

	// denseLimit is the largest bounding box area, in pixels, which is
	// rasterized using full 2-D accumulation buffers.
	denseLimit int

	edges  []edge
	bounds edgeBounds

	cover     []float32
	area      []float32
	rowActive []bool
	active    []int

	// stroke state
	segs      []strokeSegment
	subpaths  []subpath
	dots      []vec.Vec2
	outline   []vec.Vec2
	polyStart []int
}

// NewRasterizer returns a Rasterizer which writes to the given device
// rectangle. The remaining parameters are set to the PDF defaults.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	r := &Rasterizer{}
	r.Reset(clip)
	return r
}

// Reset restores the default graphics state and sets a new clip rectangle.
// The internal buffers are kept.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
	r.denseLimit = defaultDenseLimit
}

// Fill computes the coverage of the area enclosed by p.
// Open subpaths are closed by a straight line.
func (r *Rasterizer) Fill(p path.Path, rule FillRule, emit SpanFunc) {
	r.startEdges()

	var cur, start vec.Vec2
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			r.addEdge(cur, start)
			cur = pts[0]
			start = cur
		case path.CmdLineTo:
			r.addEdge(cur, pts[0])
			cur = pts[0]
		case path.CmdQuadTo:
			r.flattenQuad(cur, pts[0], pts[1], r.addEdge)
			cur = pts[1]
		case path.CmdCubeTo:
			r.flattenCube(cur, pts[0], pts[1], pts[2], r.addEdge)
			cur = pts[2]
		case path.CmdClose:
			r.addEdge(cur, start)
			cur = start
		}
	}
	r.addEdge(cur, start)

	r.sweep(rule, emit)
}

// linear applies the linear part of the CTM to v.
func (r *Rasterizer) linear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y,
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y,
	}
}

// device maps a user space point to device space.
func (r *Rasterizer) device(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: r.CTM[0]*v.X + r.CTM[2]*v.Y + r.CTM[4],
		Y: r.CTM[1]*v.X + r.CTM[3]*v.Y + r.CTM[5],
	}
}

// flattenQuad replaces the quadratic Bézier curve p0, p1, p2 by straight
// lines and calls emit for each of them. The number of lines is chosen so
// that the error in device space stays below r.Flatness.
func (r *Rasterizer) flattenQuad(p0, p1, p2 vec.Vec2, emit func(a, b vec.Vec2)) {
	dev := r.linear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCube replaces a cubic Bézier curve by straight lines.
// The number of lines is given by Wang's formula.
func (r *Rasterizer) flattenCube(p0, p1, p2, p3 vec.Vec2, emit func(a, b vec.Vec2)) {
	d1 := r.linear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.linear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if k := math.Sqrt(3 * m / (4 * r.Flatness)); k > 1 {
			n = int(math.Ceil(k))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

const (
	// defaultFlatness is the curve tolerance in device pixels.
	defaultFlatness = 0.25

	// defaultMiterLimit is the PDF default. Corners sharper than about
	// 11.5 degrees are beveled.
	defaultMiterLimit = 10.0

	// defaultDenseLimit selects between the two accumulation strategies.
	defaultDenseLimit = 65536

	// flatEdge is the smallest vertical extent of an edge which can
	// contribute to the coverage.
	flatEdge = 1e-10

	// shortSegment is the length below which stroke segments are dropped.
	shortSegment = 1e-10

	// straightTurn is the |sin| of the turning angle below which two
	// stroke segments are treated as collinear.
	straightTurn = 1e-6

	// cuspCos is the cosine of the turning angle above which a corner is
	// treated as a cusp and gets two caps instead of a join.
	cuspCos = -0.9999
)
