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

package job

import (
	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/testcases"
	"seehuhn.de/go/tilerender/tiling"
)

// Scene converts one of the built-in test pages into a display program.
func Scene(p testcases.Page) *display.Program {
	prog := display.NewProgram(tiling.Rect{X1: p.Width, Y1: p.Height})
	appendScene(prog, p)
	return prog
}

func appendScene(prog *display.Program, p testcases.Page) {
	for _, item := range p.Items {
		switch op := item.Op.(type) {
		case testcases.Fill:
			rule := raster.NonZero
			if op.Rule == testcases.EvenOdd {
				rule = raster.EvenOdd
			}
			prog.Fill(item.Path.Iter(), rule, item.Color)
		case testcases.Stroke:
			prog.Stroke(item.Path.Iter(), display.StrokeStyle{
				Width:      op.Width,
				Cap:        op.Cap,
				Join:       op.Join,
				MiterLimit: op.MiterLimit,
			}, item.Color)
		}
	}
}
