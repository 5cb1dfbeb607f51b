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

package tiling

import (
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/geom/rect"
)

// roundingSlack absorbs floating-point noise when page coordinates are
// mapped to the pixel grid. An edge which lies within roundingSlack of a
// pixel boundary is snapped to that boundary.
const roundingSlack = 0.001

// Rect is an axis-aligned rectangle in page space.
// The y axis points down, so (X0, Y0) is the top-left corner.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// FromPDF converts a rectangle from the geom package.
// The lower-left corner becomes (X0, Y0).
func FromPDF(r rect.Rect) Rect {
	return Rect{X0: r.LLx, Y0: r.LLy, X1: r.URx, Y1: r.URy}
}

// PDF converts r to a rectangle of the geom package.
func (r Rect) PDF() rect.Rect {
	return rect.Rect{LLx: r.X0, LLy: r.Y0, URx: r.X1, URy: r.Y1}
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.X1 - r.X0 }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Y1 - r.Y0 }

// Area returns the area of r.
func (r Rect) Area() float64 { return r.Dx() * r.Dy() }

// IsEmpty reports whether r has no interior.
func (r Rect) IsEmpty() bool {
	return !(r.X1 > r.X0 && r.Y1 > r.Y0)
}

// Contains reports whether s lies completely inside r.
func (r Rect) Contains(s Rect) bool {
	return s.X0 >= r.X0 && s.Y0 >= r.Y0 && s.X1 <= r.X1 && s.Y1 <= r.Y1
}

// Intersect returns the largest rectangle contained in both r and s.
// If the two do not overlap, the result is empty.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		X0: max(r.X0, s.X0),
		Y0: max(r.Y0, s.Y0),
		X1: min(r.X1, s.X1),
		Y1: min(r.Y1, s.Y1),
	}
	if out.IsEmpty() {
		return Rect{}
	}
	return out
}

// Scale multiplies the x coordinates by sx and the y coordinates by sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X0: r.X0 * sx, Y0: r.Y0 * sy, X1: r.X1 * sx, Y1: r.Y1 * sy}
}

// Round maps r onto the pixel grid at the given zoom factor.
// Low edges are rounded down and high edges up, after allowing for a
// small amount of floating-point noise.
func (r Rect) Round(zoom float64) PixelRect {
	return PixelRect{
		X0: int(math.Floor(r.X0*zoom + roundingSlack)),
		Y0: int(math.Floor(r.Y0*zoom + roundingSlack)),
		X1: int(math.Ceil(r.X1*zoom - roundingSlack)),
		Y1: int(math.Ceil(r.Y1*zoom - roundingSlack)),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// PixelRect is an axis-aligned rectangle on the pixel grid.
// The pixel (x, y) is inside the rectangle if X0 <= x < X1 and Y0 <= y < Y1.
type PixelRect struct {
	X0, Y0, X1, Y1 int
}

// Dx returns the width of r in pixels.
func (r PixelRect) Dx() int { return r.X1 - r.X0 }

// Dy returns the height of r in pixels.
func (r PixelRect) Dy() int { return r.Y1 - r.Y0 }

// Area returns the number of pixels in r.
func (r PixelRect) Area() int { return r.Dx() * r.Dy() }

// Translate moves r by dx pixels to the right and dy pixels down.
func (r PixelRect) Translate(dx, dy int) PixelRect {
	return PixelRect{X0: r.X0 + dx, Y0: r.Y0 + dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Size returns the dimensions of r.
func (r PixelRect) Size() Size { return Size{W: r.Dx(), H: r.Dy()} }

// Image converts r to an image.Rectangle.
func (r PixelRect) Image() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}

func (r PixelRect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X0, r.Y0, r.X1, r.Y1)
}

// Size is the pixel size of a render target.
type Size struct {
	W, H int
}

// Rect returns the pixel rectangle with origin (0, 0) and size s.
func (s Size) Rect() PixelRect {
	return PixelRect{X1: s.W, Y1: s.H}
}

// IsEmpty reports whether s contains no pixels.
func (s Size) IsEmpty() bool {
	return s.W <= 0 || s.H <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}
