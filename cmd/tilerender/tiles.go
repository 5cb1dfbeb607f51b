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
	"fmt"
	"runtime"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"seehuhn.de/go/tilerender/tiling"
)

func commandTiles(c *cli.Context) error {
	size := tiling.Size{W: c.Int("width"), H: c.Int("height")}
	if size.IsEmpty() {
		return fmt.Errorf("invalid image size %v", size)
	}
	threads := c.Int("threads")
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	n := tiling.Normalize(threads)
	if n != threads {
		pterm.Warning.Printf("using %d instead of %d threads\n", n, threads)
	}

	data := [][]string{{"tile", "x0", "y0", "x1", "y1", "size"}}
	for i, t := range tiling.SplitPixels(size.Rect(), n) {
		data = append(data, []string{
			fmt.Sprint(i),
			fmt.Sprint(t.X0), fmt.Sprint(t.Y0),
			fmt.Sprint(t.X1), fmt.Sprint(t.Y1),
			t.Size().String(),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}
