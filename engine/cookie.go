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

package engine

import "sync/atomic"

// Cookie is the communication channel between a running render call and
// the rest of the program. The engine reports progress through the cookie
// and polls the abort flag, which may be set from any goroutine.
//
// All methods are safe for concurrent use, and all methods accept a nil
// receiver. Values read while a render is running may come from different
// moments in time.
type Cookie struct {
	abort      atomic.Bool
	incomplete atomic.Bool
	progress   atomic.Int64
	max        atomic.Int64
	errors     atomic.Int64
}

// Abort asks the render call using the cookie to stop.
func (c *Cookie) Abort() {
	if c == nil {
		return
	}
	c.abort.Store(true)
}

// Aborted reports whether Abort has been called since the last Reset.
func (c *Cookie) Aborted() bool {
	return c != nil && c.abort.Load()
}

// Reset clears all fields of the cookie.
func (c *Cookie) Reset() {
	if c == nil {
		return
	}
	c.abort.Store(false)
	c.incomplete.Store(false)
	c.progress.Store(0)
	c.max.Store(0)
	c.errors.Store(0)
}

// Begin records the total amount of work for the current call.
func (c *Cookie) Begin(total int64) {
	if c == nil {
		return
	}
	c.progress.Store(0)
	c.max.Store(total)
}

// Advance records that one more unit of work has been done.
func (c *Cookie) Advance() {
	if c == nil {
		return
	}
	c.progress.Add(1)
}

// SetIncomplete marks the output as partial.
func (c *Cookie) SetIncomplete() {
	if c == nil {
		return
	}
	c.incomplete.Store(true)
}

// AddError counts a non-fatal error which occurred during rendering.
func (c *Cookie) AddError() {
	if c == nil {
		return
	}
	c.errors.Add(1)
}

// Progress returns the work done so far and the total amount of work.
func (c *Cookie) Progress() (current, max int64) {
	if c == nil {
		return 0, 0
	}
	return c.progress.Load(), c.max.Load()
}

// Incomplete reports whether the output of the last call is partial.
func (c *Cookie) Incomplete() bool {
	return c != nil && c.incomplete.Load()
}

// Errors returns the number of non-fatal errors seen since the last Reset.
func (c *Cookie) Errors() int64 {
	if c == nil {
		return 0
	}
	return c.errors.Load()
}
