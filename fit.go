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

package tilerender

import "seehuhn.de/go/tilerender/tiling"

// maxStaleIterations is the number of consecutive nudges without
// improvement after which fitTile gives up.
const maxStaleIterations = 100

// fitTile adjusts the page space rectangle src until it rounds to the
// pixel rectangle want at the given zoom factor.  Edges are moved in steps
// of half a pixel.  If both edges along an axis are out of place, an edge
// in the interior of full is moved in preference to an edge on its
// boundary, unless the interior edge is blocked by the opposite edge.
//
// The second return value is false if no matching rectangle was found.
func fitTile(src tiling.Rect, want, full tiling.PixelRect, zoom float64) (tiling.Rect, bool) {
	step := 0.5 / zoom

	misfit := func() int {
		got := src.Round(zoom)
		return abs(got.X0-want.X0) + abs(got.X1-want.X1) +
			abs(got.Y0-want.Y0) + abs(got.Y1-want.Y1)
	}

	best := misfit()
	stale := 0
	for best > 0 {
		got := src.Round(zoom)
		nudge(&src.X0, &src.X1, got.X0-want.X0, got.X1-want.X1,
			want.X0 > full.X0, want.X1 < full.X1, step)
		nudge(&src.Y0, &src.Y1, got.Y0-want.Y0, got.Y1-want.Y1,
			want.Y0 > full.Y0, want.Y1 < full.Y1, step)

		if d := misfit(); d < best {
			best = d
			stale = 0
		} else if stale++; stale >= maxStaleIterations {
			return src, false
		}
	}
	return src, true
}

// nudge moves one end of the interval [lo, hi] by step, against the
// rounding errors errLo and errHi of the two ends.
func nudge(lo, hi *float64, errLo, errHi int, loInterior, hiInterior bool, step float64) {
	if errLo == 0 && errHi == 0 {
		return
	}
	moveLo := errHi == 0 || errLo != 0 && loInterior && !hiInterior

	// An edge which would have to pass the opposite edge is stuck; move
	// the other one instead.
	switch {
	case moveLo && errHi != 0 && errLo < 0 && *lo+step > *hi:
		moveLo = false
	case !moveLo && errLo != 0 && errHi > 0 && *hi-step < *lo:
		moveLo = true
	}

	if moveLo {
		*lo -= float64(sign(errLo)) * step
		*lo = min(*lo, *hi)
	} else {
		*hi -= float64(sign(errHi)) * step
		*hi = max(*hi, *lo)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
