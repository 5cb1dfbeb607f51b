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

// Package engine describes the contract between the tile coordinator and a
// rendering engine.
//
// A rendering engine executes a [Program] (a prepared, read-only
// description of one page) inside an execution [Context]. Each context
// may be used by one goroutine at a time. Additional contexts for other
// goroutines are obtained by cloning a master context; clones share the
// master's read-only resources and must be closed before the master.
package engine

import (
	"errors"

	"seehuhn.de/go/tilerender/tiling"
)

// Context is an execution context of a rendering engine.
type Context interface {
	// Clone creates n new contexts which share the resources of the
	// receiver. If not all clones can be created, Clone returns the
	// clones created so far together with a non-nil error. The caller
	// owns the returned contexts and must close them.
	Clone(n int) ([]Context, error)

	// RenderRegion renders the part region of prog, given in page space,
	// at the given zoom factor. The pixel rectangle region.Round(zoom) is
	// written to dst in the given format, row by row without padding.
	//
	// The engine polls cookie during rendering. If the abort flag is
	// set, RenderRegion returns ErrAborted as soon as possible. The
	// cookie may be nil.
	RenderRegion(prog Program, region tiling.Rect, zoom float64,
		format PixelFormat, dst []byte, cookie *Cookie) error

	// Close releases the context. Closing a context twice is not an
	// error.
	Close() error

	// Closed reports whether Close has been called.
	Closed() bool
}

// Program is a prepared page description which can be rendered many times
// and from several goroutines at once.
type Program interface {
	// Bounds returns the page area covered by the program.
	Bounds() tiling.Rect
}

// Errors returned by rendering engines.
var (
	ErrAborted            = errors.New("rendering aborted")
	ErrContextClosed      = errors.New("rendering context is closed")
	ErrBufferTooSmall     = errors.New("destination buffer too small")
	ErrUnsupportedProgram = errors.New("program not supported by this engine")
)
