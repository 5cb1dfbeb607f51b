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

package main

import (
	"image/color"

	"github.com/urfave/cli/v2"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	pdfcolor "seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/job"
	"seehuhn.de/go/tilerender/raster"
)

func commandPDF(c *cli.Context) error {
	j, err := job.Load(c.Path("job"))
	if err != nil {
		return err
	}
	master := display.NewContext()
	defer master.Close()
	prog, err := j.Program(master)
	if err != nil {
		return err
	}
	return writeProof(c.Path("out"), prog)
}

// writeProof writes prog as a single page grayscale PDF file.  Images are
// shown as grey frames.
func writeProof(fileName string, prog *display.Program) error {
	b := prog.Bounds()
	paper := &pdf.Rectangle{URx: b.Dx(), URy: b.Dy()}
	page, err := document.CreateSinglePage(fileName, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// PDF has the origin at the bottom left.
	page.Transform(matrix.Matrix{1, 0, 0, -1, -b.X0, b.Y1})

	for _, op := range prog.Ops() {
		switch op := op.(type) {
		case display.FillOp:
			page.SetFillColor(gray(op.Color))
			addPath(page, op.Path)
			if op.Rule == raster.EvenOdd {
				page.FillEvenOdd()
			} else {
				page.Fill()
			}
		case display.StrokeOp:
			// stroke parameters must be set before the path
			page.SetStrokeColor(gray(op.Color))
			page.SetLineWidth(op.Style.Width)
			page.SetLineCap(op.Style.Cap)
			page.SetLineJoin(op.Style.Join)
			page.SetMiterLimit(op.Style.MiterLimit)
			addPath(page, op.Path)
			page.Stroke()
		case display.ImageOp:
			r := op.Rect
			page.SetStrokeColor(pdfcolor.DeviceGray(0.5))
			page.SetLineWidth(1)
			page.Rectangle(r.X0, r.Y0, r.Dx(), r.Dy())
			page.Stroke()
		}
	}
	tracer().Infof("%s: %d operations", fileName, prog.Len())
	return page.Close()
}

// addPath appends p to the current path.  Quadratic segments are
// converted to cubic ones, since PDF has no quadratic curves.
func addPath(page *document.Page, p path.Path) {
	for cmd, pts := range p.ToCubic() {
		switch cmd {
		case path.CmdMoveTo:
			page.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			page.LineTo(pts[0].X, pts[0].Y)
		case path.CmdCubeTo:
			page.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			page.ClosePath()
		}
	}
}

// gray converts c to a PDF gray level, using the Rec. 601 luma weights.
// The alpha channel is ignored.
func gray(c color.NRGBA) pdfcolor.Color {
	y := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	return pdfcolor.DeviceGray(y / 255)
}
