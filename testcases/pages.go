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
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"seehuhn.de/go/pdf/graphics"
)

// Pages lists the built-in pages, in a fixed order.
var Pages = []Page{
	shapesPage(),
	ringsPage(),
	densePage(),
}

// PageByName returns the built-in page with the given name.
func PageByName(name string) (Page, bool) {
	for _, p := range Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// hue returns a saturated colour, for k out of n evenly spaced hues.
func hue(k, n int, alpha uint8) color.NRGBA {
	c := colorful.Hsv(360*float64(k)/float64(n), 0.7, 0.85)
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

var (
	black = color.NRGBA{A: 255}
	paper = color.NRGBA{R: 250, G: 246, B: 235, A: 255}
)

// shapesPage is a US-letter sized page with a mix of fills and strokes.
func shapesPage() Page {
	p := Page{Name: "shapes", Width: 612, Height: 792}
	add := func(item Item) { p.Items = append(p.Items, item) }

	add(Item{Path: Rectangle(36, 36, 576, 756), Op: Fill{}, Color: paper})

	for i := range 4 {
		for j := range 3 {
			k := 3*i + j
			cx := 126 + 180*float64(j)
			cy := 126 + 170*float64(i)
			var shape Item
			switch k % 3 {
			case 0:
				shape.Path = Circle(cx, cy, 60)
			case 1:
				shape.Path = Star(cx, cy, 70, 28, 5+k%4)
			default:
				shape.Path = Ellipse(cx, cy, 75, 40)
			}
			shape.Op = Fill{}
			shape.Color = hue(k, 12, 255)
			add(shape)
			add(Item{
				Path:  shape.Path,
				Op:    Stroke{Width: 3, Cap: graphics.LineCapRound, Join: graphics.LineJoinRound, MiterLimit: 10},
				Color: black,
			})
		}
	}

	add(Item{
		Path:  Wave(60, 552, 730, 20, 12),
		Op:    Stroke{Width: 6, Cap: graphics.LineCapSquare, Join: graphics.LineJoinMiter, MiterLimit: 10},
		Color: hue(7, 12, 200),
	})
	return p
}

// ringsPage uses the even-odd rule and overlapping translucent paint.
func ringsPage() Page {
	p := Page{Name: "rings", Width: 600, Height: 800}
	p.Items = append(p.Items,
		Item{Path: Rings(300, 300, 260, 8), Op: Fill{Rule: EvenOdd}, Color: hue(0, 3, 255)},
		Item{Path: Circle(300, 560, 200), Op: Fill{}, Color: hue(1, 3, 160)},
		Item{Path: Star(300, 560, 190, 0, 7), Op: Fill{Rule: EvenOdd}, Color: hue(2, 3, 160)},
		Item{
			Path:  Spiral(300, 300, 10, 250, 6),
			Op:    Stroke{Width: 4, Cap: graphics.LineCapRound, Join: graphics.LineJoinRound, MiterLimit: 10},
			Color: black,
		},
	)
	return p
}

// densePage has many small items, so that rendering it takes a while.
func densePage() Page {
	const rows, cols = 50, 40
	p := Page{Name: "dense", Width: 600, Height: 800}
	cw := p.Width / cols
	ch := p.Height / rows
	for i := range rows {
		for j := range cols {
			x := float64(j) * cw
			y := float64(i) * ch
			p.Items = append(p.Items, Item{
				Path:  Circle(x+cw/2, y+ch/2, min(cw, ch)/2-0.5),
				Op:    Fill{},
				Color: hue(i*cols+j, rows*cols, 255),
			})
		}
	}
	return p
}
