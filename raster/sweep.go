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

package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"
)

// Coverage is computed from signed area contributions of the path edges.
// For every pixel two numbers are accumulated:
//
//	cover: the signed height of all edge pieces inside the pixel column
//	area:  the part of cover which lies to the right of the edge pieces
//
// Scanning a row from left to right, the coverage of pixel i is
// sum(cover[0:i]) + area[i]. Edges which lie left of the buffer are
// folded into index 0.

// edge is a non-horizontal line segment in device space.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
}

func (e *edge) top() float64    { return min(e.y0, e.y1) }
func (e *edge) bottom() float64 { return max(e.y0, e.y1) }

// xAt returns the x coordinate of the line through e at height y.
func (e *edge) xAt(y float64) float64 {
	return e.x0 + e.dxdy*(y-e.y0)
}

// edgeBounds is the device space bounding box of the collected edges.
type edgeBounds struct {
	empty                  bool
	xMin, xMax, yMin, yMax float64
}

func (b *edgeBounds) add(p vec.Vec2) {
	if b.empty {
		*b = edgeBounds{xMin: p.X, xMax: p.X, yMin: p.Y, yMax: p.Y}
		return
	}
	b.xMin = min(b.xMin, p.X)
	b.xMax = max(b.xMax, p.X)
	b.yMin = min(b.yMin, p.Y)
	b.yMax = max(b.yMax, p.Y)
}

func (r *Rasterizer) startEdges() {
	r.edges = r.edges[:0]
	r.bounds = edgeBounds{empty: true}
}

// addEdge maps the user space segment a-b to device space and adds it to
// the edge list. Horizontal segments do not change the coverage and are
// dropped.
func (r *Rasterizer) addEdge(a, b vec.Vec2) {
	a = r.device(a)
	b = r.device(b)
	dy := b.Y - a.Y
	if math.Abs(dy) < flatEdge {
		return
	}
	r.edges = append(r.edges, edge{
		x0: a.X, y0: a.Y,
		x1: b.X, y1: b.Y,
		dxdy: (b.X - a.X) / dy,
	})
	r.bounds.add(a)
	r.bounds.add(b)
}

// pixelBox returns the pixel range touched by the edges, clipped to
// r.Clip. The upper bounds are exclusive.
func (r *Rasterizer) pixelBox() (xMin, xMax, yMin, yMax int, ok bool) {
	if len(r.edges) == 0 {
		return 0, 0, 0, 0, false
	}
	b := &r.bounds
	xMin = max(int(math.Floor(b.xMin)), int(r.Clip.LLx))
	xMax = min(int(math.Floor(b.xMax))+1, int(r.Clip.URx))
	yMin = max(int(math.Floor(b.yMin)), int(r.Clip.LLy))
	yMax = min(int(math.Floor(b.yMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return 0, 0, 0, 0, false
	}
	return xMin, xMax, yMin, yMax, true
}

// sweep converts the collected edges into coverage values.
func (r *Rasterizer) sweep(rule FillRule, emit SpanFunc) {
	xMin, xMax, yMin, yMax, ok := r.pixelBox()
	if !ok {
		return
	}
	if (xMax-xMin)*(yMax-yMin) < r.denseLimit {
		r.sweepDense(xMin, xMax, yMin, yMax, rule, emit)
	} else {
		r.sweepSparse(xMin, xMax, yMin, yMax, rule, emit)
	}
}

// sweepDense accumulates all edges into a 2-D buffer covering the whole
// bounding box, then integrates the rows one by one.
func (r *Rasterizer) sweepDense(xMin, xMax, yMin, yMax int, rule FillRule, emit SpanFunc) {
	w := xMax - xMin
	h := yMax - yMin

	r.cover = resize(r.cover, w*h)
	r.area = resize(r.area, w*h)
	r.rowActive = resize(r.rowActive, h)

	for i := range r.edges {
		e := &r.edges[i]
		y0 := max(int(math.Floor(e.top())), yMin)
		y1 := min(int(math.Floor(e.bottom()))+1, yMax)
		for y := y0; y < y1; y++ {
			row := y - yMin
			lo, hi := row*w, (row+1)*w
			accumulate(e, y, r.cover[lo:hi], r.area[lo:hi], xMin, xMax)
			r.rowActive[row] = true
		}
	}

	for row := range h {
		if !r.rowActive[row] {
			continue
		}
		lo, hi := row*w, (row+1)*w
		cov := integrate(r.cover[lo:hi], r.area[lo:hi], rule)
		if run, offs := trimZeros(cov); run != nil {
			emit(yMin+row, xMin+offs, run)
		}
	}
}

// sweepSparse processes one scanline at a time, using an active edge list
// and buffers of a single row.
func (r *Rasterizer) sweepSparse(xMin, xMax, yMin, yMax int, rule FillRule, emit SpanFunc) {
	w := xMax - xMin
	r.cover = resize(r.cover, w)
	r.area = resize(r.area, w)

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.top(), b.top())
	})

	r.active = r.active[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		yTop := float64(y)
		yBot := yTop + 1

		for next < len(r.edges) && r.edges[next].top() < yBot {
			r.active = append(r.active, next)
			next++
		}
		if len(r.active) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)

		touched := false
		for i := 0; i < len(r.active); {
			e := &r.edges[r.active[i]]
			if e.bottom() <= yTop {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			accumulate(e, y, r.cover, r.area, xMin, xMax)
			if min(yBot, e.bottom()) > max(yTop, e.top()) {
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		cov := integrate(r.cover, r.area, rule)
		if run, offs := trimZeros(cov); run != nil {
			emit(y, xMin+offs, run)
		}
	}
}

// accumulate adds the contribution of the part of e inside row y to the
// buffers. cover and area hold the pixels xMin, ..., xMax-1 of the row.
func accumulate(e *edge, y int, cover, area []float32, xMin, xMax int) {
	yTop := max(float64(y), e.top())
	yBot := min(float64(y+1), e.bottom())
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xa, xb := e.xAt(yTop), e.xAt(yBot)
	if xa > xb {
		xa, xb = xb, xa
	}
	pa := int(math.Floor(xa))
	pb := int(math.Floor(xb))

	switch {
	case pb < xMin:
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return
	case pa >= xMax:
		return
	case pa == pb:
		addPiece(e, yTop, yBot, sign, pa, cover, area, xMin, xMax)
		return
	}

	// The edge crosses several pixel columns.  Split it at the column
	// boundaries.  Everything left of the buffer goes into one piece.
	dydx := 1 / e.dxdy
	first, last := max(pa, xMin-1), min(pb, xMax-1)
	for px := first; px <= last; px++ {
		left := float64(px)
		if px == first {
			left = xa
		}
		ya := e.y0 + dydx*(left-e.x0)
		yb := e.y0 + dydx*(float64(px+1)-e.x0)
		lo := max(min(ya, yb), yTop)
		hi := min(max(ya, yb), yBot)
		if hi <= lo {
			continue
		}
		addPiece(e, lo, hi, sign, px, cover, area, xMin, xMax)
	}
}

// addPiece adds the part of e between heights lo and hi, which lies
// inside pixel column px.
func addPiece(e *edge, lo, hi float64, sign float32, px int, cover, area []float32, xMin, xMax int) {
	c := sign * float32(hi-lo)
	switch {
	case px < xMin:
		cover[0] += c
		area[0] += c
	case px < xMax:
		frac := e.xAt((lo+hi)/2) - float64(px)
		i := px - xMin
		cover[i] += c
		area[i] += c * float32(1-frac)
	}
}

// integrate turns the accumulated values of one row into coverage. The
// result is stored in cover, which is returned.
func integrate(cover, area []float32, rule FillRule) []float32 {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		if v < 0 {
			v = -v
		}
		if rule == EvenOdd {
			v -= 2 * float32(int(v/2))
			if v > 1 {
				v = 2 - v
			}
		} else if v > 1 {
			v = 1
		}
		cover[i] = v
	}
	return cover
}

// trimZeros strips zero coverage from both ends of a row.
// If the row is all zero, the result is nil.
func trimZeros(cov []float32) ([]float32, int) {
	lo := 0
	for lo < len(cov) && cov[lo] == 0 {
		lo++
	}
	if lo == len(cov) {
		return nil, 0
	}
	hi := len(cov)
	for cov[hi-1] == 0 {
		hi--
	}
	return cov[lo:hi], lo
}

// resize returns a zeroed slice of length n, reusing the storage of buf
// where possible.
func resize[T any](buf []T, n int) []T {
	buf = slices.Grow(buf[:0], n)[:n]
	clear(buf)
	return buf
}
