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

// Package testcases holds reproducible geometry for tests, benchmarks and
// demonstrations.
//
// [All] lists single-path rasterizer cases on small canvases.
// [Pages] lists complete pages made of many painted paths, which are
// used to exercise tiled rendering.
package testcases

import (
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// Case is a single path together with the operation applied to it.
type Case struct {
	Name   string        // lowercase a-z, 0-9 and _ only
	Path   *path.Data    // geometry in user space
	Width  int           // canvas width in pixels
	Height int           // canvas height in pixels
	Op     Operation     // fill or stroke
	CTM    matrix.Matrix // zero value means identity
}

// Operation is either [Fill] or [Stroke].
type Operation interface {
	isOperation()
}

// FillRule specifies the rule for determining interior points.
type FillRule int

// These are the supported fill rules.
const (
	NonZero FillRule = iota
	EvenOdd
)

// Fill paints the inside of a path.
type Fill struct {
	Rule FillRule
}

func (Fill) isOperation() {}

// Stroke paints along a path.
type Stroke struct {
	Width      float64
	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64
}

func (Stroke) isOperation() {}

// Page is a page made of painted paths. Coordinates are page space with
// the y axis pointing down.
type Page struct {
	Name          string
	Width, Height float64
	Items         []Item
}

// Item is one painting operation on a page.
type Item struct {
	Path  *path.Data
	Op    Operation
	Color color.NRGBA
}

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}
