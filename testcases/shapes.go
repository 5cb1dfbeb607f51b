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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// kappa places the control points of a cubic Bézier quarter circle.
const kappa = 0.5522847498307936

// Rectangle returns the closed rectangle with corners (x0, y0) and (x1, y1).
func Rectangle(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x0, y0)).
		LineTo(pt(x1, y0)).
		LineTo(pt(x1, y1)).
		LineTo(pt(x0, y1)).
		Close()
}

// Polygon returns a polygon through the given points.
// The polygon is closed if closed is set.
func Polygon(closed bool, pts ...vec.Vec2) *path.Data {
	p := &path.Data{}
	if len(pts) == 0 {
		return p
	}
	p = p.MoveTo(pts[0])
	for _, q := range pts[1:] {
		p = p.LineTo(q)
	}
	if closed {
		p = p.Close()
	}
	return p
}

// Ellipse returns an ellipse made of four cubic Bézier curves.
func Ellipse(cx, cy, rx, ry float64) *path.Data {
	kx, ky := rx*kappa, ry*kappa
	return (&path.Data{}).
		MoveTo(pt(cx+rx, cy)).
		CubeTo(pt(cx+rx, cy-ky), pt(cx+kx, cy-ry), pt(cx, cy-ry)).
		CubeTo(pt(cx-kx, cy-ry), pt(cx-rx, cy-ky), pt(cx-rx, cy)).
		CubeTo(pt(cx-rx, cy+ky), pt(cx-kx, cy+ry), pt(cx, cy+ry)).
		CubeTo(pt(cx+kx, cy+ry), pt(cx+rx, cy+ky), pt(cx+rx, cy)).
		Close()
}

// Circle returns a circle made of four cubic Bézier curves.
func Circle(cx, cy, r float64) *path.Data {
	return Ellipse(cx, cy, r, r)
}

// Star returns a star with n points.  The outline alternates between the
// outer radius r and the inner radius ri.  If ri is zero, the star is drawn
// as a self-intersecting polygon which connects every second point
// instead.
func Star(cx, cy, r, ri float64, n int) *path.Data {
	n = max(n, 3)
	dir := func(k, of int) vec.Vec2 {
		phi := 2*math.Pi*float64(k)/float64(of) - math.Pi/2
		return pt(math.Cos(phi), math.Sin(phi))
	}
	center := pt(cx, cy)

	var pts []vec.Vec2
	if ri == 0 {
		step := n/2 - 1 + n%2
		if step < 1 {
			step = 1
		}
		for k := range n {
			pts = append(pts, center.Add(dir(k*step%n, n).Mul(r)))
		}
	} else {
		for k := range 2 * n {
			rad := r
			if k%2 == 1 {
				rad = ri
			}
			pts = append(pts, center.Add(dir(k, 2*n).Mul(rad)))
		}
	}
	return Polygon(true, pts...)
}

// Rings returns count concentric square outlines around (cx, cy), all
// drawn in the same direction.  The outermost square has half-width r.
func Rings(cx, cy, r float64, count int) *path.Data {
	p := &path.Data{}
	for i := range count {
		s := r * float64(count-i) / float64(count)
		p = p.MoveTo(pt(cx-s, cy-s)).
			LineTo(pt(cx+s, cy-s)).
			LineTo(pt(cx+s, cy+s)).
			LineTo(pt(cx-s, cy+s)).
			Close()
	}
	return p
}

// Grid returns rows×cols rectangles filling the given area, separated by
// gaps of width 2*gap.
func Grid(x0, y0, x1, y1 float64, rows, cols int, gap float64) *path.Data {
	cw := (x1 - x0) / float64(cols)
	ch := (y1 - y0) / float64(rows)
	p := &path.Data{}
	for i := range rows {
		for j := range cols {
			ax := x0 + float64(j)*cw + gap
			ay := y0 + float64(i)*ch + gap
			bx := x0 + float64(j+1)*cw - gap
			by := y0 + float64(i+1)*ch - gap
			p = p.MoveTo(pt(ax, ay)).
				LineTo(pt(bx, ay)).
				LineTo(pt(bx, by)).
				LineTo(pt(ax, by)).
				Close()
		}
	}
	return p
}

// Spiral returns an open Archimedean spiral made of quadratic Bézier
// curves, winding outwards from radius r0 to r1.
func Spiral(cx, cy, r0, r1, turns float64) *path.Data {
	const perTurn = 8
	n := max(int(turns*perTurn), 1)
	at := func(t float64) vec.Vec2 {
		phi := 2 * math.Pi * turns * t
		rad := r0 + (r1-r0)*t
		return pt(cx+rad*math.Cos(phi), cy+rad*math.Sin(phi))
	}

	p := (&path.Data{}).MoveTo(at(0))
	for i := range n {
		ta := float64(i) / float64(n)
		tb := float64(i+1) / float64(n)
		// The control point is placed so that the curve passes through
		// the midpoint of the spiral segment.
		mid := at((ta + tb) / 2)
		c := mid.Mul(2).Sub(at(ta).Add(at(tb)).Mul(0.5))
		p = p.QuadTo(c, at(tb))
	}
	return p
}

// Wave returns an open path of n cubic arches between x0 and x1.
func Wave(x0, x1, y, amp float64, n int) *path.Data {
	n = max(n, 1)
	w := (x1 - x0) / float64(n)
	p := (&path.Data{}).MoveTo(pt(x0, y))
	for i := range n {
		a := x0 + float64(i)*w
		s := amp
		if i%2 == 1 {
			s = -amp
		}
		p = p.CubeTo(pt(a+w/3, y-s), pt(a+2*w/3, y-s), pt(a+w, y))
	}
	return p
}
