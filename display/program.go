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

// Package display implements a rendering engine for display programs.
//
// A display program is a list of painting operations (filled and stroked
// paths, and images) for one page. Programs are rendered by a [Context].
// The first context is created with [NewContext] and acts as the master:
// it owns the image resources and hands them to its clones. Clones may be
// used concurrently, one goroutine per clone.
package display

import (
	"image/color"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/tiling"
)

// Op is one painting operation of a [Program].
// The concrete types are [FillOp], [StrokeOp] and [ImageOp].
type Op interface {
	isOp()
}

// FillOp paints the inside of a path.
type FillOp struct {
	Path  path.Path
	Rule  raster.FillRule
	Color color.NRGBA
}

// StrokeOp paints along a path.
type StrokeOp struct {
	Path  path.Path
	Style StrokeStyle
	Color color.NRGBA
}

// ImageOp draws an image resource, scaled to fill Rect.
type ImageOp struct {
	Image ResourceID
	Rect  tiling.Rect
}

func (FillOp) isOp()   {}
func (StrokeOp) isOp() {}
func (ImageOp) isOp()  {}

// StrokeStyle describes the geometry of a stroked line.
// Widths are given in page units.
type StrokeStyle struct {
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
}

// Program is a display program for one page.
//
// Programs are built by calling the painting methods in order. Once a
// program has been passed to a rendering context it must not be changed
// any more; from then on it can be rendered by several goroutines at once.
type Program struct {
	bounds tiling.Rect
	ops    []Op
}

// NewProgram returns an empty program for a page with the given bounds.
func NewProgram(bounds tiling.Rect) *Program {
	return &Program{bounds: bounds}
}

// Bounds returns the page area of the program.
// This implements the [seehuhn.de/go/tilerender/engine.Program] interface.
func (p *Program) Bounds() tiling.Rect {
	return p.bounds
}

// Len returns the number of painting operations.
func (p *Program) Len() int {
	return len(p.ops)
}

// Ops returns the painting operations in order.
// The returned slice must not be modified.
func (p *Program) Ops() []Op {
	return p.ops
}

// Fill appends an operation which fills the inside of pth using the given
// fill rule.
func (p *Program) Fill(pth path.Path, rule raster.FillRule, paint color.Color) {
	p.ops = append(p.ops, FillOp{Path: pth, Rule: rule, Color: nrgba(paint)})
}

// Stroke appends an operation which strokes pth.
// A non-positive line width is replaced by 1.
func (p *Program) Stroke(pth path.Path, style StrokeStyle, paint color.Color) {
	if style.Width <= 0 {
		style.Width = 1
	}
	if style.MiterLimit < 1 {
		style.MiterLimit = 10
	}
	p.ops = append(p.ops, StrokeOp{Path: pth, Style: style, Color: nrgba(paint)})
}

// Image appends an operation which draws the image resource id into the
// page rectangle dst.  The id must have been obtained from the master
// context used to render the program.
func (p *Program) Image(id ResourceID, dst tiling.Rect) {
	p.ops = append(p.ops, ImageOp{Image: id, Rect: dst})
}

func nrgba(c color.Color) color.NRGBA {
	if c == nil {
		return color.NRGBA{A: 255}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
