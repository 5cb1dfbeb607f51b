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
	"fmt"
	"image/color"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/tilerender/display"
	"seehuhn.de/go/tilerender/raster"
	"seehuhn.de/go/tilerender/testcases"
	"seehuhn.de/go/tilerender/tiling"
)

// Item is one painting operation of a job.
type Item struct {
	Kind string // rect, circle, ellipse, polygon, star or image

	Path   *path.Data
	Fill   *color.NRGBA
	Rule   raster.FillRule
	Stroke *color.NRGBA
	Style  display.StrokeStyle

	Image string // file name, for images only
	Rect  tiling.Rect
}

type itemBlock struct {
	Kind       string   `hcl:"kind,label"`
	Fill       *string  `hcl:"fill,optional"`
	FillRule   string   `hcl:"fill_rule,optional"`
	Stroke     *string  `hcl:"stroke,optional"`
	LineWidth  float64  `hcl:"line_width,optional"`
	Cap        string   `hcl:"cap,optional"`
	Join       string   `hcl:"join,optional"`
	MiterLimit float64  `hcl:"miter_limit,optional"`
	Opacity    *float64 `hcl:"opacity,optional"`
	Geometry   hcl.Body `hcl:",remain"`
}

type rectGeometry struct {
	X0 float64 `hcl:"x0"`
	Y0 float64 `hcl:"y0"`
	X1 float64 `hcl:"x1"`
	Y1 float64 `hcl:"y1"`
}

type circleGeometry struct {
	CX float64 `hcl:"cx"`
	CY float64 `hcl:"cy"`
	R  float64 `hcl:"r"`
}

type ellipseGeometry struct {
	CX float64 `hcl:"cx"`
	CY float64 `hcl:"cy"`
	RX float64 `hcl:"rx"`
	RY float64 `hcl:"ry"`
}

type polygonGeometry struct {
	Points [][]float64 `hcl:"points"`
	Closed *bool       `hcl:"closed,optional"`
}

type starGeometry struct {
	CX     float64 `hcl:"cx"`
	CY     float64 `hcl:"cy"`
	R      float64 `hcl:"r"`
	Inner  float64 `hcl:"inner,optional"`
	Points int     `hcl:"points"`
}

type imageGeometry struct {
	File string  `hcl:"file"`
	X0   float64 `hcl:"x0"`
	Y0   float64 `hcl:"y0"`
	X1   float64 `hcl:"x1"`
	Y1   float64 `hcl:"y1"`
}

func decodeItem(b *itemBlock, ctx *hcl.EvalContext) (Item, error) {
	item := Item{Kind: b.Kind}

	decode := func(val any) error {
		if diags := gohcl.DecodeBody(b.Geometry, ctx, val); diags.HasErrors() {
			return diags
		}
		return nil
	}

	switch b.Kind {
	case "rect":
		var g rectGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		item.Path = testcases.Rectangle(g.X0, g.Y0, g.X1, g.Y1)
	case "circle":
		var g circleGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		item.Path = testcases.Circle(g.CX, g.CY, g.R)
	case "ellipse":
		var g ellipseGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		item.Path = testcases.Ellipse(g.CX, g.CY, g.RX, g.RY)
	case "polygon":
		var g polygonGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		pts := make([]vec.Vec2, len(g.Points))
		for i, p := range g.Points {
			if len(p) != 2 {
				return item, fmt.Errorf("point %d has %d coordinates", i+1, len(p))
			}
			pts[i] = vec.Vec2{X: p[0], Y: p[1]}
		}
		if len(pts) < 2 {
			return item, fmt.Errorf("polygon needs at least 2 points")
		}
		item.Path = testcases.Polygon(g.Closed == nil || *g.Closed, pts...)
	case "star":
		var g starGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		item.Path = testcases.Star(g.CX, g.CY, g.R, g.Inner, g.Points)
	case "image":
		var g imageGeometry
		if err := decode(&g); err != nil {
			return item, err
		}
		item.Image = g.File
		item.Rect = tiling.Rect{X0: g.X0, Y0: g.Y0, X1: g.X1, Y1: g.Y1}
		if item.Rect.IsEmpty() {
			return item, fmt.Errorf("empty image rectangle %v", item.Rect)
		}
		return item, nil
	default:
		return item, fmt.Errorf("unknown item kind %q", b.Kind)
	}

	opacity := 1.0
	if b.Opacity != nil {
		opacity = *b.Opacity
	}
	if opacity < 0 || opacity > 1 {
		return item, fmt.Errorf("opacity %g outside 0-1", opacity)
	}
	if b.Fill != nil {
		c, err := parseColor(*b.Fill, opacity)
		if err != nil {
			return item, fmt.Errorf("fill: %w", err)
		}
		item.Fill = &c
	}
	if b.Stroke != nil {
		c, err := parseColor(*b.Stroke, opacity)
		if err != nil {
			return item, fmt.Errorf("stroke: %w", err)
		}
		item.Stroke = &c
	}
	if item.Fill == nil && item.Stroke == nil {
		item.Fill = &color.NRGBA{A: uint8(opacity*255 + 0.5)}
	}

	switch b.FillRule {
	case "", "nonzero":
		item.Rule = raster.NonZero
	case "evenodd":
		item.Rule = raster.EvenOdd
	default:
		return item, fmt.Errorf("unknown fill rule %q", b.FillRule)
	}

	item.Style.Width = b.LineWidth
	item.Style.MiterLimit = b.MiterLimit
	switch b.Cap {
	case "", "butt":
		item.Style.Cap = graphics.LineCapButt
	case "round":
		item.Style.Cap = graphics.LineCapRound
	case "square":
		item.Style.Cap = graphics.LineCapSquare
	default:
		return item, fmt.Errorf("unknown line cap %q", b.Cap)
	}
	switch b.Join {
	case "", "miter":
		item.Style.Join = graphics.LineJoinMiter
	case "round":
		item.Style.Join = graphics.LineJoinRound
	case "bevel":
		item.Style.Join = graphics.LineJoinBevel
	default:
		return item, fmt.Errorf("unknown line join %q", b.Join)
	}

	return item, nil
}
