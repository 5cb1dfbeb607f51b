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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is a straight piece of a flattened subpath, in user space.
type strokeSegment struct {
	A, B vec.Vec2
	T    vec.Vec2 // unit tangent from A to B
	N    vec.Vec2 // T rotated by 90 degrees counter-clockwise
}

// reversed returns the segment traversed from B to A.
func (s strokeSegment) reversed() strokeSegment {
	return strokeSegment{A: s.B, B: s.A, T: s.T.Mul(-1), N: s.N.Mul(-1)}
}

// subpath locates a flattened subpath inside Rasterizer.segs.
type subpath struct {
	start, end int
	closed     bool
}

// Stroke computes the coverage of the stroked outline of p, using the
// Width, Cap, Join and MiterLimit fields.
//
// The outline of every subpath is built as a set of polygons in user
// space, and all polygons are filled together with the nonzero rule, so
// that self-overlapping strokes are painted only once.
func (r *Rasterizer) Stroke(p path.Path, emit SpanFunc) {
	r.flattenForStroke(p)
	if len(r.subpaths) == 0 && len(r.dots) == 0 {
		return
	}

	r.outline = r.outline[:0]
	r.polyStart = r.polyStart[:0]
	d := r.Width / 2

	if r.Cap == graphics.LineCapRound {
		for _, pt := range r.dots {
			r.beginPolygon()
			r.addArc(pt, d, vec.Vec2{X: 1}, 2*math.Pi, true)
			r.endPolygon()
		}
	}

	for _, sp := range r.subpaths {
		segs := r.segs[sp.start:sp.end]
		if sp.closed {
			// Two rings, one on each side of the path.  Since they run
			// in opposite directions, the inside of the path gets
			// winding number zero.
			r.beginPolygon()
			r.closedRing(segs, false, d)
			r.endPolygon()
			r.beginPolygon()
			r.closedRing(segs, true, d)
			r.endPolygon()
		} else {
			first, last := segs[0], segs[len(segs)-1]
			r.beginPolygon()
			r.openSide(segs, false, d)
			r.addCap(last.B, last.T, d)
			r.openSide(segs, true, d)
			r.addCap(first.A, first.T.Mul(-1), d)
			r.endPolygon()
		}
	}

	r.startEdges()
	for i, start := range r.polyStart {
		end := len(r.outline)
		if i+1 < len(r.polyStart) {
			end = r.polyStart[i+1]
		}
		poly := r.outline[start:end]
		for j := range poly {
			r.addEdge(poly[j], poly[(j+1)%len(poly)])
		}
	}
	r.sweep(NonZero, emit)
}

func (r *Rasterizer) beginPolygon() {
	r.polyStart = append(r.polyStart, len(r.outline))
}

// endPolygon drops the polygon just built if it cannot enclose any area.
func (r *Rasterizer) endPolygon() {
	last := len(r.polyStart) - 1
	if len(r.outline)-r.polyStart[last] < 3 {
		r.outline = r.outline[:r.polyStart[last]]
		r.polyStart = r.polyStart[:last]
	}
}

// flattenForStroke splits p into subpaths of straight segments.
// Subpaths which consist of a single point are collected in r.dots.
func (r *Rasterizer) flattenForStroke(p path.Path) {
	r.segs = r.segs[:0]
	r.subpaths = r.subpaths[:0]
	r.dots = r.dots[:0]

	var cur, start vec.Vec2
	first := 0
	open := false  // inside a subpath
	drawn := false // the subpath has a drawing command

	finish := func(closed bool) {
		switch {
		case len(r.segs) > first:
			r.subpaths = append(r.subpaths, subpath{start: first, end: len(r.segs), closed: closed})
		case drawn || closed:
			r.dots = append(r.dots, start)
		}
		first = len(r.segs)
		open = false
		drawn = false
	}

	for cmd, pts := range p {
		if cmd != path.CmdMoveTo && !open {
			continue
		}
		switch cmd {
		case path.CmdMoveTo:
			if open {
				finish(false)
			}
			cur = pts[0]
			start = cur
			open = true
		case path.CmdLineTo:
			r.addSegment(cur, pts[0])
			cur = pts[0]
			drawn = true
		case path.CmdQuadTo:
			r.flattenQuad(cur, pts[0], pts[1], r.addSegment)
			cur = pts[1]
			drawn = true
		case path.CmdCubeTo:
			r.flattenCube(cur, pts[0], pts[1], pts[2], r.addSegment)
			cur = pts[2]
			drawn = true
		case path.CmdClose:
			if cur != start {
				r.addSegment(cur, start)
			}
			cur = start
			finish(true)
		}
	}
	if open {
		finish(false)
	}
}

// addSegment appends the straight segment a-b, unless it is too short to
// have a direction.
func (r *Rasterizer) addSegment(a, b vec.Vec2) {
	v := b.Sub(a)
	l := v.Length()
	if l < shortSegment {
		return
	}
	t := v.Mul(1 / l)
	r.segs = append(r.segs, strokeSegment{A: a, B: b, T: t, N: vec.Vec2{X: -t.Y, Y: t.X}})
}

// cross returns the sine of the angle from t1 to t2.
func cross(t1, t2 vec.Vec2) float64 {
	return t1.X*t2.Y - t1.Y*t2.X
}

// openSide adds the offset line on the +N side of an open subpath,
// traversed backwards if rev is set.
func (r *Rasterizer) openSide(segs []strokeSegment, rev bool, d float64) {
	n := len(segs)
	at := func(i int) strokeSegment {
		if rev {
			return segs[n-1-i].reversed()
		}
		return segs[i]
	}

	skip := false
	for i := range n {
		seg := at(i)
		if !skip {
			r.outline = append(r.outline, seg.A.Add(seg.N.Mul(d)))
		}
		skip = false

		if i == n-1 {
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
			break
		}
		next := at(i + 1)
		switch s := cross(seg.T, next.T); {
		case math.Abs(s) < straightTurn:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
		case s > 0:
			skip = r.innerCorner(seg.B, seg.T, next.T, d)
		default:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
			r.addJoin(seg.B, seg.T, next.T, d)
		}
	}
}

// closedRing adds the offset ring on the +N side of a closed subpath,
// traversed backwards if rev is set.
func (r *Rasterizer) closedRing(segs []strokeSegment, rev bool, d float64) {
	n := len(segs)
	at := func(i int) strokeSegment {
		i %= n
		if rev {
			return segs[n-1-i].reversed()
		}
		return segs[i]
	}

	for i := range n {
		seg, next := at(i), at(i+1)
		switch s := cross(seg.T, next.T); {
		case math.Abs(s) < straightTurn:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)), next.A.Add(next.N.Mul(d)))
		case s > 0:
			if !r.innerCorner(seg.B, seg.T, next.T, d) {
				r.outline = append(r.outline, next.A.Add(next.N.Mul(d)))
			}
		default:
			r.outline = append(r.outline, seg.B.Add(seg.N.Mul(d)))
			r.addJoin(seg.B, seg.T, next.T, d)
			r.outline = append(r.outline, next.A.Add(next.N.Mul(d)))
		}
	}
}

// innerCorner adds the inner side of the corner at p, where the direction
// changes from t1 to t2 and +N is the inner side. If the two offset lines
// intersect, only the intersection point is added and the result is true.
// Otherwise the offset point of the first segment is added and the result
// is false.
func (r *Rasterizer) innerCorner(p, t1, t2 vec.Vec2, d float64) bool {
	n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
	c := t1.Dot(t2)
	half := math.Sqrt((1 + c) / 2) // cos of half the turning angle
	bis := n1.Add(vec.Vec2{X: -t2.Y, Y: t2.X})
	l := bis.Length()
	if c > 1-1e-9 || half < 1e-9 || l < 1e-9 {
		r.outline = append(r.outline, p.Add(n1.Mul(d)))
		return false
	}
	r.outline = append(r.outline, p.Add(bis.Mul(d/(half*l))))
	return true
}

// addCap adds the cap at the end point p of a subpath. The vector t points
// away from the subpath. The outline arrives at p+N*d and continues at
// p-N*d, where N is t rotated counter-clockwise.
func (r *Rasterizer) addCap(p, t vec.Vec2, d float64) {
	n := vec.Vec2{X: -t.Y, Y: t.X}
	switch r.Cap {
	case graphics.LineCapSquare:
		tip := p.Add(t.Mul(d))
		r.outline = append(r.outline, tip.Add(n.Mul(d)), tip.Sub(n.Mul(d)))
	case graphics.LineCapRound:
		r.addArc(p, d, n, -math.Pi, true)
	}
}

// addJoin adds the outer side of the corner at p, where the direction
// changes from t1 to t2 and +N is the outer side. The offset points of
// both segments are added by the caller.
func (r *Rasterizer) addJoin(p, t1, t2 vec.Vec2, d float64) {
	c := t1.Dot(t2)
	s := cross(t1, t2)
	if math.Abs(s) < straightTurn {
		return
	}
	if c < cuspCos {
		r.addCap(p, t1, d)
		r.addCap(p, t2.Mul(-1), d)
		return
	}

	n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
	switch r.Join {
	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, c)))
		if s > 0 {
			r.addArc(p, d, n1, angle, false)
		} else {
			r.addArc(p, d, n1, -angle, false)
		}
	case graphics.LineJoinMiter:
		// The miter length relative to the line width is 1/cos(θ/2),
		// where θ is the turning angle.
		half := math.Sqrt((1 + c) / 2)
		const slack = 1e-10
		if half <= 0 || 1/half > r.MiterLimit+slack {
			return // bevel
		}
		bis := n1.Add(vec.Vec2{X: -t2.Y, Y: t2.X})
		if l := bis.Length(); l > shortSegment {
			r.outline = append(r.outline, p.Add(bis.Mul(d/(half*l))))
		}
	}
}

// addArc adds points along a circular arc around center. The arc starts
// in direction dir (a unit vector) and turns by sweep radians,
// counter-clockwise for positive sweep. The start point is only added if
// withStart is set.
func (r *Rasterizer) addArc(center vec.Vec2, radius float64, dir vec.Vec2, sweep float64, withStart bool) {
	devR := max(
		r.linear(vec.Vec2{X: radius}).Length(),
		r.linear(vec.Vec2{Y: radius}).Length(),
	)

	n := 1
	if devR >= r.Flatness {
		// A chord spanning the angle φ deviates from the circle by
		// R(1-cos(φ/2)).
		step := 2 * math.Acos(1-r.Flatness/devR)
		if !(step > 0) {
			step = math.Pi / 4
		}
		n = max(int(math.Ceil(math.Abs(sweep)/step)), 1)
	}

	i0 := 1
	if withStart {
		i0 = 0
	}
	for i := i0; i <= n; i++ {
		phi := sweep * float64(i) / float64(n)
		cos, sin := math.Cos(phi), math.Sin(phi)
		v := vec.Vec2{X: dir.X*cos - dir.Y*sin, Y: dir.X*sin + dir.Y*cos}
		r.outline = append(r.outline, center.Add(v.Mul(radius)))
	}
}
