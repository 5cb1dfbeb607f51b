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

// Package tiling partitions rectangles into tiles for parallel rendering.
//
// The number of tiles must be a product of the factors 2, 3, 5 and 7.
// Other values are replaced by the largest acceptable value below them,
// see [Normalize]. The same split pattern can be applied to page-space
// rectangles ([Split]), to pixel rectangles ([SplitPixels]), or to both at
// once ([SplitPair]).
package tiling

// factors lists the acceptable prime factors, in the order in which
// composite tile counts are decomposed.
var factors = [...]int{2, 3, 5, 7}

// Normalize returns the largest n' <= n such that n' has no prime factors
// other than 2, 3, 5 and 7. For n < 1 the result is 1.
func Normalize(n int) int {
	for ; n > 1; n-- {
		if isSmooth(n) {
			return n
		}
	}
	return 1
}

func isSmooth(n int) bool {
	for _, f := range factors {
		for n%f == 0 {
			n /= f
		}
	}
	return n == 1
}

// Split divides r into Normalize(n) rectangles which tile r without gaps or
// overlaps.
func Split(r Rect, n int) []Rect {
	return split(r, n)
}

// SplitPixels divides r into Normalize(n) pixel rectangles which tile r
// without gaps or overlaps.
func SplitPixels(r PixelRect, n int) []PixelRect {
	return split(r, n)
}

// Pair is a pixel rectangle together with the page-space rectangle which is
// to be rendered into it.
type Pair struct {
	Target PixelRect
	Source Rect
}

// SplitPair divides a render target and its page-space source with one
// common split pattern. All direction choices are made using the pixel
// rectangle and the same cut fractions are then applied to both
// rectangles, so that tile i of the target always corresponds to tile i of
// the source.
func SplitPair(target PixelRect, source Rect, n int) []Pair {
	return split(Pair{Target: target, Source: source}, n)
}

// splitter is implemented by the rectangle types which can be partitioned.
type splitter[R any] interface {
	// landscape reports whether the rectangle is at least as wide as it
	// is high.  Landscape rectangles are cut by vertical lines.
	landscape() bool

	// cut divides the rectangle into two parts.  The first part covers
	// the fraction num/den of the width (if vertical is set) or height of
	// the rectangle, the second part covers the rest.
	cut(vertical bool, num, den int) (R, R)
}

func split[R splitter[R]](r R, n int) []R {
	n = Normalize(n)
	return appendSplit(make([]R, 0, n), r, n)
}

// appendSplit appends the n tiles of r to out.  The value n must already be
// normalized.
func appendSplit[R splitter[R]](out []R, r R, n int) []R {
	switch n {
	case 1:
		return append(out, r)
	case 2, 3, 5, 7:
		// Cut along the long axis into groups of n/2 and n-n/2 tiles,
		// sized in proportion to their tile count.
		k := n / 2
		a, b := r.cut(r.landscape(), k, n)
		out = appendSplit(out, a, k)
		return appendSplit(out, b, n-k)
	}

	for _, d := range factors {
		if n%d != 0 {
			continue
		}
		groups := appendSplit(make([]R, 0, n/d), r, n/d)
		for _, g := range groups {
			out = appendSplit(out, g, d)
		}
		return out
	}
	panic("unreachable")
}

func (r Rect) landscape() bool {
	return r.Dx() >= r.Dy()
}

func (r Rect) cut(vertical bool, num, den int) (Rect, Rect) {
	a, b := r, r
	if vertical {
		x := r.X0 + r.Dx()*float64(num)/float64(den)
		a.X1, b.X0 = x, x
	} else {
		y := r.Y0 + r.Dy()*float64(num)/float64(den)
		a.Y1, b.Y0 = y, y
	}
	return a, b
}

func (r PixelRect) landscape() bool {
	return r.Dx() >= r.Dy()
}

func (r PixelRect) cut(vertical bool, num, den int) (PixelRect, PixelRect) {
	a, b := r, r
	if vertical {
		x := r.X0 + r.Dx()*num/den
		a.X1, b.X0 = x, x
	} else {
		y := r.Y0 + r.Dy()*num/den
		a.Y1, b.Y0 = y, y
	}
	return a, b
}

func (p Pair) landscape() bool {
	return p.Target.landscape()
}

func (p Pair) cut(vertical bool, num, den int) (Pair, Pair) {
	ta, tb := p.Target.cut(vertical, num, den)
	sa, sb := p.Source.cut(vertical, num, den)
	return Pair{Target: ta, Source: sa}, Pair{Target: tb, Source: sb}
}
