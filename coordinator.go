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

// Package tilerender renders pages using several goroutines at once.
//
// A [Coordinator] splits the requested area of a page into tiles, one per
// worker, and renders all tiles in parallel.  Every worker owns a clone of
// the caller's master rendering context, so that the rendering engine
// never sees concurrent calls on the same context.  Workers are started
// once and reused for every call to [Coordinator.Render].
package tilerender

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/npillmayer/schuko/tracing"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/tiling"
)

// tracer traces with key 'render.tiles'.
func tracer() tracing.Trace {
	return tracing.Select("render.tiles")
}

// Options control the construction of a [Coordinator].
type Options struct {
	// Threads is the number of workers.  The value is reduced to a number
	// which has no prime factors larger than 7.  If Threads is zero or
	// negative, runtime.GOMAXPROCS(0) is used.
	Threads int

	// PageBounds is the visible area of the page.  If ResolutionX and
	// ResolutionY are zero or 72, this is in page space.  Otherwise the
	// rectangle is given in units of 1/ResolutionX and 1/ResolutionY
	// inch.  The zero value means the bounds of the program.
	PageBounds tiling.Rect

	// ClipToPageBounds causes pixels outside PageBounds to be painted in
	// the background colour.
	ClipToPageBounds bool

	ResolutionX, ResolutionY float64
}

// Coordinator renders a program using a fixed set of workers.
//
// Render, Abort, Progress and Close may be called from different
// goroutines.  Calls to Render are serialized.
type Coordinator struct {
	master  engine.Context
	prog    engine.Program
	workers []*worker
	wg      sync.WaitGroup

	clip     bool
	pageClip tiling.Rect

	renderMu sync.Mutex // held by Render and Close
	closed   atomic.Bool
}

// New creates a coordinator which renders prog.  The master context must
// stay open until Close has been called on the coordinator.
//
// If the worker contexts cannot be created, New returns a *CloneError.
func New(master engine.Context, prog engine.Program, opts Options) (*Coordinator, error) {
	if master.Closed() {
		return nil, &LifetimeError{Op: "new"}
	}

	n := opts.Threads
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	n = tiling.Normalize(n)

	clones, err := master.Clone(n)
	if err == nil && len(clones) != n {
		err = fmt.Errorf("got %d contexts instead of %d", len(clones), n)
	}
	if err != nil {
		for _, c := range clones {
			c.Close()
		}
		tracer().Errorf("cannot create %d workers: %v", n, err)
		return nil, &CloneError{Wanted: n, Released: len(clones), Err: err}
	}

	if opts.PageBounds.IsEmpty() {
		opts.PageBounds = prog.Bounds()
	}
	c := &Coordinator{
		master:   master,
		prog:     prog,
		workers:  make([]*worker, n),
		clip:     opts.ClipToPageBounds,
		pageClip: pageClip(&opts),
	}
	c.wg.Add(n)
	for i, ctx := range clones {
		w := newWorker(i, ctx, prog)
		c.workers[i] = w
		go w.run(&c.wg)
	}
	tracer().Infof("started %d workers", n)
	return c, nil
}

// Threads returns the number of workers.
func (c *Coordinator) Threads() int {
	return len(c.workers)
}

// Tiles returns the pixel rectangles of the tiles for an image of the
// given size.  Tile i is rendered by worker i into the i-th destination
// buffer passed to Render.
func (c *Coordinator) Tiles(size tiling.Size) []tiling.PixelRect {
	return tiling.SplitPixels(size.Rect(), len(c.workers))
}

// Render renders the page area region into an image of the given size.
// The image is split into the tiles returned by Tiles, and tile i is
// written to dst[i], row by row and without padding.  Formats with an
// alpha channel use straight, not premultiplied, alpha.
//
// Horizontal and vertical zoom factors are combined into one, so that the
// image is slightly distorted if size and region have different aspect
// ratios.
//
// Render waits for all tiles to finish.  If ctx is cancelled, rendering
// is aborted.  The errors of all failed tiles are joined; each one is a
// *RenderError.  The buffers of successful tiles are filled in even if
// other tiles fail.
func (c *Coordinator) Render(ctx context.Context, size tiling.Size, region tiling.Rect,
	dst [][]byte, format engine.PixelFormat) error {

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	if c.closed.Load() {
		return ErrClosed
	}
	if c.master.Closed() {
		return &LifetimeError{Op: "render"}
	}
	if !format.IsValid() {
		return fmt.Errorf("invalid pixel format %d", int(format))
	}
	if size.IsEmpty() || region.IsEmpty() {
		return fmt.Errorf("cannot render %v of %v", size, region)
	}
	if len(dst) != len(c.workers) {
		return fmt.Errorf("got %d buffers for %d tiles", len(dst), len(c.workers))
	}

	zoom := math.Sqrt(float64(size.W) / region.Dx() * float64(size.H) / region.Dy())
	origin := region.Round(zoom)
	full := size.Rect().Translate(origin.X0, origin.Y0)
	pairs := tiling.SplitPair(size.Rect(), region, len(c.workers))
	for i, p := range pairs {
		if need := p.Target.Area() * format.BytesPerPixel(); len(dst[i]) < need {
			return &RenderError{Tile: i,
				Err: fmt.Errorf("%d < %d bytes: %w", len(dst[i]), need, engine.ErrBufferTooSmall)}
		}
	}

	for _, w := range c.workers {
		w.cookie.Reset()
	}
	// An abort triggered by ctx must be finished before the next call
	// resets the cookies.
	aborted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.Abort()
		close(aborted)
	})
	defer func() {
		if !stop() {
			<-aborted
		}
	}()

	for i, p := range pairs {
		want := p.Target.Translate(origin.X0, origin.Y0)
		src, ok := fitTile(p.Source, want, full, zoom)
		if !ok {
			tracer().Errorf("tile %d: cannot fit %v to %v", i, p.Source, want)
		}
		c.workers[i].dispatch(assignment{
			tile:     i,
			target:   p.Target,
			source:   src,
			zoom:     zoom,
			format:   format,
			dst:      dst[i],
			misfit:   !ok,
			clip:     c.clip,
			pageClip: c.pageClip,
		})
	}

	var errs []error
	for _, w := range c.workers {
		if err := <-w.fromWork; err != nil {
			tracer().Errorf("%v", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Abort asks all workers to stop rendering as soon as possible.  Abort
// does not wait; the running Render call returns once all workers have
// stopped.  Abort only affects the current call to Render.
func (c *Coordinator) Abort() {
	for _, w := range c.workers {
		w.cookie.Abort()
	}
}

// Progress describes the state of one worker.
type Progress struct {
	Current, Max int64
	Incomplete   bool
	Errors       int64
}

// Progress returns the progress of all workers in the current or last
// call to Render.  Progress does not block, and the values of different
// workers may be from slightly different times.
func (c *Coordinator) Progress() []Progress {
	res := make([]Progress, len(c.workers))
	for i, w := range c.workers {
		cur, max := w.cookie.Progress()
		res[i] = Progress{
			Current:    cur,
			Max:        max,
			Incomplete: w.cookie.Incomplete(),
			Errors:     w.cookie.Errors(),
		}
	}
	return res
}

// Close stops all workers and closes their contexts.  A Render call in
// progress is aborted first.  Calling Close more than once has no effect.
//
// Close panics with a *LifetimeError if the master context has been
// closed before the coordinator.
func (c *Coordinator) Close() error {
	if c.closed.Load() {
		return nil
	}
	c.Abort()

	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if c.closed.Load() {
		return nil
	}
	if c.master.Closed() {
		panic(&LifetimeError{Op: "close"})
	}

	for _, w := range c.workers {
		close(w.quit)
	}
	c.wg.Wait()

	var errs []error
	for _, w := range c.workers {
		if err := w.ctx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("worker %d: %w", w.id, err))
		}
	}
	c.closed.Store(true)
	tracer().Infof("stopped %d workers", len(c.workers))
	return errors.Join(errs...)
}
