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
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics"
)

// All contains the rasterizer cases, grouped by category.
var All = map[string][]Case{
	"fill":   fillCases,
	"stroke": strokeCases,
	"curve":  curveCases,
	"ctm":    ctmCases,
	"large":  largeCases,
}

func thin(w float64, c graphics.LineCapStyle, j graphics.LineJoinStyle) Stroke {
	return Stroke{Width: w, Cap: c, Join: j, MiterLimit: 10}
}

var fillCases = []Case{
	{
		Name: "triangle", Width: 64, Height: 64,
		Path: Polygon(true, pt(10, 50), pt(32, 10), pt(54, 50)),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "rectangle", Width: 64, Height: 64,
		Path: Rectangle(10, 10, 44, 44),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "rectangle_subpixel", Width: 64, Height: 64,
		Path: Rectangle(20.25, 20.5, 44.75, 44.25),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "star_nonzero", Width: 64, Height: 64,
		Path: Star(32, 32, 25, 0, 5),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "star_evenodd", Width: 64, Height: 64,
		Path: Star(32, 32, 25, 0, 5),
		Op:   Fill{Rule: EvenOdd},
	},
	{
		Name: "rings_nonzero", Width: 64, Height: 64,
		Path: Rings(32, 32, 28, 4),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "rings_evenodd", Width: 64, Height: 64,
		Path: Rings(32, 32, 28, 4),
		Op:   Fill{Rule: EvenOdd},
	},
	{
		Name: "open_triangle", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 50), pt(32, 10), pt(54, 50)),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "clipped", Width: 64, Height: 64,
		Path: Rectangle(-20, -20, 40, 90),
		Op:   Fill{Rule: NonZero},
	},
}

var strokeCases = []Case{
	{
		Name: "line_butt", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 32), pt(54, 32)),
		Op:   thin(8, graphics.LineCapButt, graphics.LineJoinMiter),
	},
	{
		Name: "line_round", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 32), pt(54, 32)),
		Op:   thin(8, graphics.LineCapRound, graphics.LineJoinMiter),
	},
	{
		Name: "line_square", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 32), pt(54, 32)),
		Op:   thin(8, graphics.LineCapSquare, graphics.LineJoinMiter),
	},
	{
		Name: "corner_miter", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 50), pt(32, 14), pt(54, 50)),
		Op:   thin(6, graphics.LineCapButt, graphics.LineJoinMiter),
	},
	{
		Name: "corner_round", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 50), pt(32, 14), pt(54, 50)),
		Op:   thin(6, graphics.LineCapButt, graphics.LineJoinRound),
	},
	{
		Name: "corner_bevel", Width: 64, Height: 64,
		Path: Polygon(false, pt(10, 50), pt(32, 14), pt(54, 50)),
		Op:   thin(6, graphics.LineCapButt, graphics.LineJoinBevel),
	},
	{
		Name: "closed_square", Width: 64, Height: 64,
		Path: Rectangle(12, 12, 52, 52),
		Op:   thin(4, graphics.LineCapButt, graphics.LineJoinMiter),
	},
	{
		Name: "dot_round", Width: 64, Height: 64,
		Path: Polygon(false, pt(32, 32), pt(32, 32)),
		Op:   thin(20, graphics.LineCapRound, graphics.LineJoinRound),
	},
	{
		Name: "spiral", Width: 64, Height: 64,
		Path: Spiral(32, 32, 4, 26, 3),
		Op:   thin(3, graphics.LineCapRound, graphics.LineJoinRound),
	},
}

var curveCases = []Case{
	{
		Name: "circle", Width: 64, Height: 64,
		Path: Circle(32, 32, 24),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "ellipse", Width: 64, Height: 64,
		Path: Ellipse(32, 32, 28, 14),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "circle_stroked", Width: 64, Height: 64,
		Path: Circle(32, 32, 24),
		Op:   thin(5, graphics.LineCapButt, graphics.LineJoinRound),
	},
	{
		Name: "wave", Width: 64, Height: 64,
		Path: Wave(6, 58, 32, 12, 4),
		Op:   thin(3, graphics.LineCapRound, graphics.LineJoinRound),
	},
}

var ctmCases = []Case{
	{
		Name: "scale_2x", Width: 128, Height: 128,
		Path: Rectangle(0, 0, 20, 20),
		Op:   Fill{Rule: NonZero},
		CTM:  matrix.Scale(2, 2).Translate(24, 24),
	},
	{
		Name: "rotate_45deg", Width: 64, Height: 64,
		Path: Rectangle(-15, -15, 15, 15),
		Op:   Fill{Rule: NonZero},
		CTM:  matrix.RotateDeg(45).Translate(32, 32),
	},
	{
		Name: "circle_to_ellipse", Width: 128, Height: 64,
		Path: Circle(0, 0, 20),
		Op:   thin(2, graphics.LineCapButt, graphics.LineJoinMiter),
		CTM:  matrix.Scale(2.5, 1).Translate(64, 32),
	},
}

var largeCases = []Case{
	{
		Name: "large_rectangle", Width: 512, Height: 512,
		Path: Rectangle(50, 50, 462, 462),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "large_rings", Width: 512, Height: 512,
		Path: Rings(256, 256, 220, 5),
		Op:   Fill{Rule: EvenOdd},
	},
	{
		Name: "large_grid", Width: 512, Height: 512,
		Path: Grid(0, 0, 512, 512, 16, 16, 2.5),
		Op:   Fill{Rule: NonZero},
	},
	{
		Name: "large_circle_stroked", Width: 512, Height: 512,
		Path: Circle(256, 256, 200),
		Op:   thin(12, graphics.LineCapButt, graphics.LineJoinRound),
	},
}
