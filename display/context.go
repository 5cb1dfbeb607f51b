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

package display

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/npillmayer/schuko/tracing"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/tilerender/engine"
	"seehuhn.de/go/tilerender/raster"
)

// tracer traces with key 'render.display'.
func tracer() tracing.Trace {
	return tracing.Select("render.display")
}

// ErrCloneLimit is returned by Clone if the master context does not allow
// any more clones.
var ErrCloneLimit = errors.New("clone limit reached")

// ErrNotMaster is returned when a method which is reserved for the master
// context is called on a clone.
var ErrNotMaster = errors.New("operation requires the master context")

// Context is a rendering context for display programs.
// It implements [engine.Context].
//
// A context must only be used by one goroutine at a time, with the
// exception of Clone, Closed and Stats, which may be called concurrently
// on the master.
type Context struct {
	master *Context // nil for the master itself
	res    *resourceTable
	closed atomic.Bool

	// master only
	limit    int
	live     atomic.Int64
	created  atomic.Int64
	released atomic.Int64

	ras    *raster.Rasterizer
	canvas *image.RGBA
}

var _ engine.Context = (*Context)(nil)

// Option configures a master context.
type Option func(*Context)

// WithCloneLimit limits the number of clones which may be open at the
// same time. A limit of zero or less means no limit.
func WithCloneLimit(n int) Option {
	return func(c *Context) {
		c.limit = n
	}
}

// NewContext returns a new master context.
func NewContext(opts ...Option) *Context {
	c := &Context{
		res: newResourceTable(),
		ras: raster.NewRasterizer(rect.Rect{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsMaster reports whether c was created by NewContext.
func (c *Context) IsMaster() bool {
	return c.master == nil
}

func (c *Context) root() *Context {
	if c.master != nil {
		return c.master
	}
	return c
}

// AddImage stores an image in the resource table of the master context.
// The returned ID can be used in [Program.Image] for programs rendered by
// the master or any of its clones.
func (c *Context) AddImage(img image.Image) (ResourceID, error) {
	if c.master != nil {
		return 0, ErrNotMaster
	}
	if c.closed.Load() {
		return 0, engine.ErrContextClosed
	}
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("empty image")
	}
	id := c.res.add(img)
	tracer().Debugf("image %d: %dx%d", id, img.Bounds().Dx(), img.Bounds().Dy())
	return id, nil
}

// Clone creates n new contexts which share the resources of the master.
// Cloning a clone is the same as cloning its master.
//
// If the clone limit of the master is reached, Clone returns the clones
// which could be created together with an error wrapping ErrCloneLimit.
func (c *Context) Clone(n int) ([]engine.Context, error) {
	m := c.root()
	if c.closed.Load() || m.closed.Load() {
		return nil, engine.ErrContextClosed
	}

	out := make([]engine.Context, 0, n)
	for range n {
		if m.limit > 0 {
			if m.live.Add(1) > int64(m.limit) {
				m.live.Add(-1)
				return out, fmt.Errorf("clone %d of %d: %w", len(out)+1, n, ErrCloneLimit)
			}
		} else {
			m.live.Add(1)
		}
		m.res.retain()
		m.created.Add(1)
		out = append(out, &Context{
			master: m,
			res:    m.res,
			ras:    raster.NewRasterizer(rect.Rect{}),
		})
	}
	return out, nil
}

// Close releases the context. Clones must be closed before their master.
// Calling Close more than once has no effect.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.master != nil {
		c.master.live.Add(-1)
		c.master.released.Add(1)
	} else if live := c.live.Load(); live > 0 {
		tracer().Errorf("master context closed while %d clones are open", live)
	}
	c.canvas = nil
	if c.res.release() {
		tracer().Debugf("resource table released")
	}
	return nil
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.closed.Load()
}

// Stats describes the clones of a master context.
type Stats struct {
	ClonesCreated int64 // number of clones created so far
	ClonesClosed  int64 // number of these which have been closed
	Images        int   // number of image resources
}

// Stats returns statistics about the clones of the master of c.
func (c *Context) Stats() Stats {
	m := c.root()
	return Stats{
		ClonesCreated: m.created.Load(),
		ClonesClosed:  m.released.Load(),
		Images:        m.res.len(),
	}
}
