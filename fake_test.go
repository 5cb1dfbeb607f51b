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

import (
	"errors"
	"sync/atomic"
	"time"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

var (
	errCloneFailed = errors.New("out of contexts")
	errBroken      = errors.New("broken tile")
)

// fakeEngine counts contexts and paints every pixel with its own global
// coordinates: channel 0 holds x, channel 1 holds y and channel 2 holds
// x+y, modulo 256.
type fakeEngine struct {
	limit int                         // maximal number of clones, 0 for no limit
	slow  bool                        // block until aborted
	fail  func(tiling.PixelRect) bool // tiles to fail

	created atomic.Int64
	closed  atomic.Int64
	started atomic.Int64
}

type fakeContext struct {
	e        *fakeEngine
	isMaster bool
	isClosed atomic.Bool
}

type fakeProgram struct {
	bounds tiling.Rect
}

func (p fakeProgram) Bounds() tiling.Rect { return p.bounds }

func newFake() (*fakeEngine, *fakeContext) {
	e := &fakeEngine{}
	return e, &fakeContext{e: e, isMaster: true}
}

func (c *fakeContext) Clone(n int) ([]engine.Context, error) {
	var out []engine.Context
	for range n {
		if c.e.limit > 0 && c.e.created.Load() >= int64(c.e.limit) {
			return out, errCloneFailed
		}
		c.e.created.Add(1)
		out = append(out, &fakeContext{e: c.e})
	}
	return out, nil
}

func (c *fakeContext) RenderRegion(_ engine.Program, region tiling.Rect, zoom float64,
	format engine.PixelFormat, dst []byte, cookie *engine.Cookie) error {

	if c.isClosed.Load() {
		return engine.ErrContextClosed
	}
	cookie.Begin(1)
	c.e.started.Add(1)

	if c.e.slow {
		for !cookie.Aborted() {
			time.Sleep(time.Millisecond)
		}
		cookie.SetIncomplete()
		return engine.ErrAborted
	}

	pix := region.Round(zoom)
	if c.e.fail != nil && c.e.fail(pix) {
		cookie.AddError()
		return errBroken
	}
	bpp := format.BytesPerPixel()
	if len(dst) < pix.Area()*bpp {
		return engine.ErrBufferTooSmall
	}
	k := 0
	for y := pix.Y0; y < pix.Y1; y++ {
		for x := pix.X0; x < pix.X1; x++ {
			px := dst[k : k+bpp]
			px[0], px[1], px[2] = byte(x), byte(y), byte(x+y)
			if bpp == 4 {
				px[3] = 255
			}
			k += bpp
		}
	}
	cookie.Advance()
	return nil
}

func (c *fakeContext) Close() error {
	if c.isClosed.CompareAndSwap(false, true) && !c.isMaster {
		c.e.closed.Add(1)
	}
	return nil
}

func (c *fakeContext) Closed() bool {
	return c.isClosed.Load()
}

// buffers allocates destination buffers for all tiles of coord.
func buffers(coord *Coordinator, size tiling.Size, format engine.PixelFormat) [][]byte {
	tiles := coord.Tiles(size)
	dst := make([][]byte, len(tiles))
	for i, t := range tiles {
		dst[i] = make([]byte, t.Area()*format.BytesPerPixel())
	}
	return dst
}
