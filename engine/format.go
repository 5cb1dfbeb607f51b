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

import (
	"fmt"
	"strings"
)

// PixelFormat describes the memory layout of one pixel.
// All formats use 8 bits per channel. Formats with alpha store
// premultiplied values when they are produced by an engine; the tile
// coordinator converts them to straight alpha.
type PixelFormat int

// These are the supported pixel formats.
const (
	RGB PixelFormat = iota + 1
	RGBA
	BGR
	BGRA
)

// BytesPerPixel returns the number of bytes used to store one pixel.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case RGB, BGR:
		return 3
	case RGBA, BGRA:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether the format has an alpha channel.
// The alpha channel is always the last byte of a pixel.
func (f PixelFormat) HasAlpha() bool {
	return f == RGBA || f == BGRA
}

// IsValid reports whether f is one of the supported formats.
func (f PixelFormat) IsValid() bool {
	return f >= RGB && f <= BGRA
}

// Background returns the channel value of unpainted pixels:
// white for opaque formats and transparent for formats with alpha.
func (f PixelFormat) Background() byte {
	if f.HasAlpha() {
		return 0
	}
	return 255
}

func (f PixelFormat) String() string {
	switch f {
	case RGB:
		return "rgb"
	case RGBA:
		return "rgba"
	case BGR:
		return "bgr"
	case BGRA:
		return "bgra"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// ParsePixelFormat converts a format name like "rgba" into a PixelFormat.
// Case is ignored.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for f := RGB; f <= BGRA; f++ {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", s)
}
