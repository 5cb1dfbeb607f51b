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
	"sync"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

// assignment describes the work for one tile.
type assignment struct {
	tile   int
	target tiling.PixelRect // pixels of the tile within the target image
	source tiling.Rect      // page space area, adjusted to the size of target
	zoom   float64
	format engine.PixelFormat
	dst    []byte

	// misfit is set when source could not be adjusted to the size of
	// target.  The tile is then filled with the background colour.
	misfit bool

	clip     bool
	pageClip tiling.Rect
}

// worker renders tiles on a goroutine of its own, using a context which
// no other worker uses.
//
// The coordinator fills in params while holding mu and then sends a
// pointer to params on toWork. The worker holds mu while rendering, and
// reports the result on fromWork.
type worker struct {
	id     int
	ctx    engine.Context
	prog   engine.Program
	cookie engine.Cookie

	mu     sync.Mutex
	params assignment

	toWork   chan *assignment
	fromWork chan error
	quit     chan struct{}
}

func newWorker(id int, ctx engine.Context, prog engine.Program) *worker {
	return &worker{
		id:       id,
		ctx:      ctx,
		prog:     prog,
		toWork:   make(chan *assignment, 1),
		fromWork: make(chan error, 1),
		quit:     make(chan struct{}),
	}
}

// run is the body of the worker goroutine.
func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-w.quit:
			tracer().Debugf("worker %d: exit", w.id)
			// release a caller waiting for a result
			select {
			case w.fromWork <- ErrClosed:
			default:
			}
			return
		case a := <-w.toWork:
			w.mu.Lock()
			err := w.render(a)
			w.mu.Unlock()
			w.fromWork <- err
		}
	}
}

// dispatch hands a tile to the worker.  The worker must be idle.
func (w *worker) dispatch(a assignment) {
	w.mu.Lock()
	w.params = a
	w.mu.Unlock()
	w.toWork <- &w.params
}

func (w *worker) render(a *assignment) error {
	n := a.target.Area() * a.format.BytesPerPixel()
	if a.misfit {
		fill(a.dst[:n], a.format.Background())
		return &RenderError{Tile: a.tile, Err: ErrTileGeometry}
	}

	tracer().Debugf("worker %d: tile %d, %v at zoom %g", w.id, a.tile, a.source, a.zoom)
	err := w.ctx.RenderRegion(w.prog, a.source, a.zoom, a.format, a.dst, &w.cookie)
	if err != nil {
		return &RenderError{Tile: a.tile, Err: err}
	}

	pix := a.dst[:n]
	if a.format.HasAlpha() {
		unpremultiply(pix)
	}
	if a.clip && !a.pageClip.Contains(a.source) {
		clearOutside(pix, a.source.Round(a.zoom), a.pageClip.Round(a.zoom), a.format)
	}
	return nil
}
