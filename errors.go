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
	"fmt"

	"seehuhn.de/go/tilerender/engine"
)

var (
	// ErrClosed is returned by methods called after [Coordinator.Close].
	ErrClosed = errors.New("coordinator is closed")

	// ErrTileGeometry indicates that the source region of a tile could
	// not be adjusted to the pixel size of the tile.
	ErrTileGeometry = errors.New("tile size correction failed")
)

// CloneError is returned by [New] if the rendering contexts for the
// workers could not be created.  All contexts which had been created
// before the failure are closed again.
type CloneError struct {
	Wanted   int   // number of contexts requested
	Released int   // number of contexts created and closed again
	Err      error // error from the engine
}

func (err *CloneError) Error() string {
	return fmt.Sprintf("cloning %d contexts (%d released): %v",
		err.Wanted, err.Released, err.Err)
}

func (err *CloneError) Unwrap() error {
	return err.Err
}

// RenderError reports the failure of a single tile.
type RenderError struct {
	Tile int // index of the tile, as returned by Coordinator.Tiles
	Err  error
}

func (err *RenderError) Error() string {
	return fmt.Sprintf("tile %d: %v", err.Tile, err.Err)
}

func (err *RenderError) Unwrap() error {
	return err.Err
}

// Aborted reports whether the tile failed because rendering was aborted.
func (err *RenderError) Aborted() bool {
	return errors.Is(err.Err, engine.ErrAborted)
}

// LifetimeError indicates that the master context was closed while the
// coordinator still used clones of it.  This is a programming error:
// Close panics with a LifetimeError and Render returns one.
type LifetimeError struct {
	Op string
}

func (err *LifetimeError) Error() string {
	return "tilerender: " + err.Op + ": master context closed before the coordinator"
}
